package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/example/batch-scheduler/internal/recurrence"
)

type outputFormat string

const (
	outputText outputFormat = "text"
	outputJSON outputFormat = "json"
	outputYAML outputFormat = "yaml"
)

func parseOutputFormat(raw string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(strings.TrimSpace(raw))); f {
	case outputText, outputJSON, outputYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", raw)
	}
}

type expandOptions struct {
	start    string
	end      string
	pattern  string
	dates    []string
	count    int
	timezone string
	output   string
}

type expansionResult struct {
	Pattern string   `json:"pattern" yaml:"pattern"`
	Start   string   `json:"start_date" yaml:"start_date"`
	End     string   `json:"end_date" yaml:"end_date"`
	Count   int      `json:"count" yaml:"count"`
	Dates   []string `json:"dates" yaml:"dates"`
}

func newExpandCommand() *cobra.Command {
	opts := expandOptions{}

	cmd := &cobra.Command{
		Use:   "expand",
		Short: "Print the session dates a schedule pattern produces",
		Example: `  scheduler expand --start 2025-04-01 --end 2025-04-30 --pattern MWF
  scheduler expand --start 2025-04-01 --end 2025-04-30 --pattern manual --dates 2025-04-03,2025-04-10 --count 2 -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExpand(cmd.OutOrStdout(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.start, "start", "", "first date of the batch (YYYY-MM-DD)")
	flags.StringVar(&opts.end, "end", "", "last date of the batch (YYYY-MM-DD)")
	flags.StringVar(&opts.pattern, "pattern", "", "MWF, TTS, weekend or manual")
	flags.StringSliceVar(&opts.dates, "dates", nil, "manual dates, comma separated")
	flags.IntVar(&opts.count, "count", 0, "session count for manual schedules")
	flags.StringVar(&opts.timezone, "timezone", "UTC", "IANA time zone the dates belong to")
	flags.StringVarP(&opts.output, "output", "o", string(outputText), "output format: text, json or yaml")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	_ = cmd.MarkFlagRequired("pattern")
	return cmd
}

func runExpand(w io.Writer, opts expandOptions) error {
	format, err := parseOutputFormat(opts.output)
	if err != nil {
		return err
	}
	loc, err := time.LoadLocation(opts.timezone)
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	pattern, err := recurrence.ParsePattern(opts.pattern)
	if err != nil {
		return err
	}

	start, err := time.ParseInLocation(time.DateOnly, opts.start, loc)
	if err != nil {
		return fmt.Errorf("--start: %w", err)
	}
	end, err := time.ParseInLocation(time.DateOnly, opts.end, loc)
	if err != nil {
		return fmt.Errorf("--end: %w", err)
	}

	manual := make([]time.Time, 0, len(opts.dates))
	for _, raw := range opts.dates {
		d, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(raw), loc)
		if err != nil {
			return fmt.Errorf("--dates: %w", err)
		}
		manual = append(manual, d)
	}

	engine := recurrence.NewEngine(loc)
	dates, err := engine.Expand(recurrence.Config{
		StartDate:    start,
		EndDate:      end,
		Pattern:      pattern,
		SessionCount: opts.count,
		ManualDates:  manual,
	})
	if err != nil {
		return err
	}
	if pattern == recurrence.PatternManual && opts.count > 0 && len(dates) > opts.count {
		return fmt.Errorf("%w: %d dates for %d sessions", recurrence.ErrSessionLimitExceeded, len(dates), opts.count)
	}

	result := expansionResult{
		Pattern: string(pattern),
		Start:   start.Format(time.DateOnly),
		End:     end.Format(time.DateOnly),
		Count:   len(dates),
		Dates:   make([]string, 0, len(dates)),
	}
	for _, d := range dates {
		result.Dates = append(result.Dates, d.Format(time.DateOnly))
	}

	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	default:
		for _, d := range dates {
			if _, err := fmt.Fprintf(w, "%s %s\n", d.Format(time.DateOnly), d.Weekday().String()[:3]); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "%d sessions\n", len(dates))
		return err
	}
}
