package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/batch-scheduler/internal/auth"
)

func newHashKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-key <key|->",
		Short: "Print the argon2id hash to configure as api_key_hash",
		Long:  "Hashes the given API key. Pass - to read the key from standard input.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if key == "-" {
				read, err := readKey(cmd.InOrStdin())
				if err != nil {
					return err
				}
				key = read
			}

			hash, err := auth.HashKey(key, auth.DefaultParams)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
}

func readKey(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read key: %w", err)
	}
	return strings.TrimSpace(line), nil
}
