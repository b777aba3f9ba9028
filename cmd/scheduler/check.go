package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/example/batch-scheduler/internal/scheduler"
)

// sessionFile is the YAML document read by the check command:
//
//	sessions:
//	  - id: s-1
//	    date: 2025-04-02
//	    start: "09:00"
//	    end: "10:30"
//	    status: scheduled
type sessionFile struct {
	Sessions []sessionEntry `yaml:"sessions"`
}

type sessionEntry struct {
	ID     string `yaml:"id"`
	Date   string `yaml:"date"`
	Start  string `yaml:"start"`
	End    string `yaml:"end"`
	Status string `yaml:"status"`
}

type checkOptions struct {
	sessions string
	date     string
	start    string
	end      string
	exclude  string
}

func newCheckCommand() *cobra.Command {
	opts := checkOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check a proposed session slot against a session list",
		Long: "Reports the first session that overlaps the proposed slot on the same date.\n" +
			"Exits with status 1 when a conflict is found. Cancelled sessions never conflict.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(opts.sessions)
			if err != nil {
				return err
			}
			defer f.Close()
			return runCheck(f, cmd.OutOrStdout(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.sessions, "sessions", "", "YAML file listing the batch sessions")
	flags.StringVar(&opts.date, "date", "", "proposed date (YYYY-MM-DD)")
	flags.StringVar(&opts.start, "start", "", "proposed start time (HH:MM)")
	flags.StringVar(&opts.end, "end", "", "proposed end time (HH:MM)")
	flags.StringVar(&opts.exclude, "exclude", "", "ID of the session being moved")
	for _, name := range []string{"sessions", "date", "start", "end"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func runCheck(r io.Reader, w io.Writer, opts checkOptions) error {
	var doc sessionFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return fmt.Errorf("decode sessions: %w", err)
	}

	existing, err := loadSessionEntries(doc.Sessions)
	if err != nil {
		return err
	}

	date, err := time.Parse(time.DateOnly, strings.TrimSpace(opts.date))
	if err != nil {
		return fmt.Errorf("--date: %w", err)
	}
	start, err := scheduler.ParseTimeOfDay(opts.start)
	if err != nil {
		return fmt.Errorf("--start: %w", err)
	}
	end, err := scheduler.ParseTimeOfDay(opts.end)
	if err != nil {
		return fmt.Errorf("--end: %w", err)
	}
	if err := scheduler.ValidateTimeRange(start, end); err != nil {
		return err
	}

	candidate := scheduler.Candidate{Date: date, StartTime: start, EndTime: end}
	conflict, found := scheduler.FindConflict(existing, candidate, opts.exclude)
	if !found {
		_, err := fmt.Fprintf(w, "no conflict: %s %s-%s is free\n", date.Format(time.DateOnly), start, end)
		return err
	}

	fmt.Fprintf(w, "conflict: overlaps session %s on %s %s-%s\n",
		conflict.ID, conflict.Date.Format(time.DateOnly), conflict.StartTime, conflict.EndTime)
	return &exitError{code: 1, msg: "conflict detected"}
}

func loadSessionEntries(entries []sessionEntry) ([]scheduler.Session, error) {
	sessions := make([]scheduler.Session, 0, len(entries))
	for i, entry := range entries {
		date, err := time.Parse(time.DateOnly, strings.TrimSpace(entry.Date))
		if err != nil {
			return nil, fmt.Errorf("sessions[%d].date: %w", i, err)
		}
		start, err := scheduler.ParseTimeOfDay(entry.Start)
		if err != nil {
			return nil, fmt.Errorf("sessions[%d].start: %w", i, err)
		}
		end, err := scheduler.ParseTimeOfDay(entry.End)
		if err != nil {
			return nil, fmt.Errorf("sessions[%d].end: %w", i, err)
		}
		status := scheduler.StatusScheduled
		if strings.TrimSpace(entry.Status) != "" {
			if status, err = scheduler.ParseStatus(entry.Status); err != nil {
				return nil, fmt.Errorf("sessions[%d].status: %w", i, err)
			}
		}
		if status == scheduler.StatusCancelled {
			continue
		}
		sessions = append(sessions, scheduler.Session{
			ID:        entry.ID,
			Date:      date,
			StartTime: start,
			EndTime:   end,
			Status:    status,
		})
	}
	return sessions, nil
}
