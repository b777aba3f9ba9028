package recurrence

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Pattern names the rule that decides which calendar dates become sessions.
type Pattern string

const (
	// PatternMWF schedules Monday, Wednesday and Friday.
	PatternMWF Pattern = "MWF"
	// PatternTTS schedules Tuesday, Thursday and Saturday.
	PatternTTS Pattern = "TTS"
	// PatternWeekend schedules Saturday and Sunday.
	PatternWeekend Pattern = "weekend"
	// PatternManual uses an explicit list of dates.
	PatternManual Pattern = "manual"
)

var patternWeekdays = map[Pattern][]time.Weekday{
	PatternMWF:     {time.Monday, time.Wednesday, time.Friday},
	PatternTTS:     {time.Tuesday, time.Thursday, time.Saturday},
	PatternWeekend: {time.Saturday, time.Sunday},
}

var (
	// ErrInvalidRange indicates the end date precedes the start date.
	ErrInvalidRange = errors.New("recurrence: end date precedes start date")
	// ErrInvalidPattern indicates an unrecognized schedule pattern token.
	ErrInvalidPattern = errors.New("recurrence: invalid schedule pattern")
	// ErrSessionLimitExceeded indicates a manual selection would exceed the session count.
	ErrSessionLimitExceeded = errors.New("recurrence: session limit exceeded")
)

// ParsePattern converts a raw token into a Pattern.
func ParsePattern(raw string) (Pattern, error) {
	p := Pattern(strings.TrimSpace(raw))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPattern, raw)
	}
	return p, nil
}

// Valid reports whether the pattern is one of the supported tokens.
func (p Pattern) Valid() bool {
	if p == PatternManual {
		return true
	}
	_, ok := patternWeekdays[p]
	return ok
}

// Weekdays returns the weekday set of a recurring pattern. Manual and unknown
// patterns return nil.
func (p Pattern) Weekdays() []time.Weekday {
	days := patternWeekdays[p]
	if len(days) == 0 {
		return nil
	}
	out := make([]time.Weekday, len(days))
	copy(out, days)
	return out
}

// Config describes how to generate the session dates of a batch.
type Config struct {
	StartDate    time.Time
	EndDate      time.Time
	Pattern      Pattern
	SessionCount int
	ManualDates  []time.Time
}

// Engine expands schedule configurations into session dates.
type Engine struct {
	location *time.Location
}

// NewEngine constructs an Engine that interprets dates in the provided location.
// If loc is nil, UTC is used.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{location: loc}
}

// Location returns the location dates are normalized to.
func (e *Engine) Location() *time.Location {
	if e == nil || e.location == nil {
		return time.UTC
	}
	return e.location
}

// Date truncates t to midnight of its calendar day in the engine's location.
func (e *Engine) Date(t time.Time) time.Time {
	loc := e.Location()
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Expand produces the ordered, duplicate free session dates for cfg.
//
//   - Recurring patterns visit every calendar day from StartDate to EndDate
//     inclusive and keep the days whose weekday belongs to the pattern.
//   - Manual patterns return ManualDates sorted and deduplicated. Whether the
//     number of dates matches SessionCount is left to the caller.
func (e *Engine) Expand(cfg Config) ([]time.Time, error) {
	if !cfg.Pattern.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, string(cfg.Pattern))
	}

	start := e.Date(cfg.StartDate)
	end := e.Date(cfg.EndDate)
	if end.Before(start) {
		return nil, ErrInvalidRange
	}

	if cfg.Pattern == PatternManual {
		return e.normalizeDates(cfg.ManualDates), nil
	}

	weekdaySet := make(map[time.Weekday]struct{}, 3)
	for _, day := range patternWeekdays[cfg.Pattern] {
		weekdaySet[day] = struct{}{}
	}

	dates := make([]time.Time, 0)
	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		if _, ok := weekdaySet[current.Weekday()]; ok {
			dates = append(dates, current)
		}
	}

	return dates, nil
}

// SelectDate applies one interactive toggle to a manual selection. A date that
// is already selected is removed; a new date is added only while the selection
// holds fewer than limit dates. The returned slice is sorted and never aliases
// selected.
func (e *Engine) SelectDate(selected []time.Time, date time.Time, limit int) ([]time.Time, error) {
	current := e.normalizeDates(selected)
	target := e.Date(date)

	for i, existing := range current {
		if existing.Equal(target) {
			return append(current[:i:i], current[i+1:]...), nil
		}
	}

	if len(current) >= limit {
		return nil, fmt.Errorf("%w: at most %d dates may be selected", ErrSessionLimitExceeded, max(limit, 0))
	}

	current = append(current, target)
	sortDates(current)
	return current, nil
}

func (e *Engine) normalizeDates(dates []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(dates))
	out := make([]time.Time, 0, len(dates))
	for _, date := range dates {
		day := e.Date(date)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		out = append(out, day)
	}
	sortDates(out)
	return out
}

func sortDates(dates []time.Time) {
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
}
