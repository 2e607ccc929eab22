package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/qbiq/biq-go/pkg/log"
)

// EventOptions specifies filtering criteria for the events command.
type EventOptions struct {
	Direction    string
	Envelope     string
	Format       string
	FailuresOnly bool
	TimeStart    string
	TimeEnd      string
}

// ParseDirectionFlag parses "in" or "out".
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (valid: in, out)", s)
	}
}

func (o EventOptions) filter() (log.Filter, error) {
	f := log.Filter{
		Envelope:     o.Envelope,
		Format:       o.Format,
		FailuresOnly: o.FailuresOnly,
	}
	if o.Direction != "" {
		d, err := ParseDirectionFlag(o.Direction)
		if err != nil {
			return f, err
		}
		f.Direction = &d
	}
	if o.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, o.TimeStart)
		if err != nil {
			return f, fmt.Errorf("invalid time-start format: %w", err)
		}
		f.TimeStart = &t
	}
	if o.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, o.TimeEnd)
		if err != nil {
			return f, fmt.Errorf("invalid time-end format: %w", err)
		}
		f.TimeEnd = &t
	}
	return f, nil
}

// RunEvents prints the matching events of a codec event file.
func RunEvents(path string, opts EventOptions, w io.Writer) error {
	filter, err := opts.filter()
	if err != nil {
		return err
	}
	reader, err := log.NewSegmentReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(w, event)
	}
}

// formatEvent writes one event as a line plus optional detail lines.
func formatEvent(w io.Writer, e log.Event) {
	ts := e.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	status := "ok"
	if e.Failed() {
		status = "FAILED"
	}
	fmt.Fprintf(w, "%s %-3s %-4s %s %d bytes %s", ts, e.Direction, e.Format, e.Envelope, e.Size, status)
	if e.Source != "" {
		fmt.Fprintf(w, " [%s]", e.Source)
	}
	fmt.Fprintln(w)

	if len(e.Deprecated) > 0 {
		fmt.Fprintf(w, "  Deprecated: %s\n", strings.Join(e.Deprecated, ", "))
	}
	if e.Error != nil {
		fmt.Fprintf(w, "  Error: %s\n", e.Error.Message)
		if e.Error.Path != "" {
			fmt.Fprintf(w, "  Path: %s\n", e.Error.Path)
		}
	}
}

// Stats holds aggregate statistics about an event file.
type Stats struct {
	TotalEvents       int
	EventsByDirection map[log.Direction]int
	EventsByFormat    map[string]int
	EventsByEnvelope  map[string]int
	Failures          int
	Deprecated        map[string]int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// RunStats analyzes an event file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewSegmentReader(path, log.Filter{})
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByDirection: make(map[log.Direction]int),
		EventsByFormat:    make(map[string]int),
		EventsByEnvelope:  make(map[string]int),
		Deprecated:        make(map[string]int),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByDirection[event.Direction]++
		stats.EventsByFormat[event.Format]++
		stats.EventsByEnvelope[event.Envelope]++
		for _, k := range event.Deprecated {
			stats.Deprecated[k]++
		}
		if event.Failed() {
			stats.Failures++
		}

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== BIQ Codec Event Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Direction:")
	for _, dir := range []log.Direction{log.DirectionIn, log.DirectionOut} {
		if count := stats.EventsByDirection[dir]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", dir.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Format:")
	for _, name := range sortedKeys(stats.EventsByFormat) {
		fmt.Fprintf(w, "  %-12s %d\n", name+":", stats.EventsByFormat[name])
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Envelope:")
	for _, name := range sortedKeys(stats.EventsByEnvelope) {
		fmt.Fprintf(w, "  %-28s %d\n", name+":", stats.EventsByEnvelope[name])
	}

	if len(stats.Deprecated) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Deprecated Keys:")
		for _, key := range sortedKeys(stats.Deprecated) {
			fmt.Fprintf(w, "  %-40s %d\n", key+":", stats.Deprecated[key])
		}
	}

	if stats.Failures > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Failures: %d\n", stats.Failures)
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
