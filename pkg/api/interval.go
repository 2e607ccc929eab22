package api

import (
	"fmt"
	"time"
)

// Interval bounds an observation query.
type Interval uint8

const (
	// IntervalAll selects every observation.
	IntervalAll Interval = 0
	// IntervalLive selects the last 12 hours.
	IntervalLive Interval = 1
	// IntervalDay selects the last day.
	IntervalDay Interval = 2
	// IntervalMonth selects the last calendar month.
	IntervalMonth Interval = 3
	// IntervalYear selects the last calendar year.
	IntervalYear Interval = 4
)

// LiveWindow is the span of IntervalLive.
const LiveWindow = 12 * time.Hour

// IsValid returns true for the named intervals. Other raw values decode
// without error and are kept as is.
func (i Interval) IsValid() bool {
	return i <= IntervalYear
}

// String returns the interval name.
func (i Interval) String() string {
	switch i {
	case IntervalAll:
		return "all"
	case IntervalLive:
		return "live"
	case IntervalDay:
		return "day"
	case IntervalMonth:
		return "month"
	case IntervalYear:
		return "year"
	default:
		return fmt.Sprintf("Interval(%d)", uint8(i))
	}
}

// Window returns the nominal span of the interval. Month and year use 30 and
// 365 days; Since applies calendar arithmetic. IntervalAll and unrecognized
// intervals return 0.
func (i Interval) Window() time.Duration {
	switch i {
	case IntervalLive:
		return LiveWindow
	case IntervalDay:
		return 24 * time.Hour
	case IntervalMonth:
		return 30 * 24 * time.Hour
	case IntervalYear:
		return 365 * 24 * time.Hour
	default:
		return 0
	}
}

// Since returns the start of the interval ending at now. ok is false for
// IntervalAll and unrecognized intervals, which are unbounded.
func (i Interval) Since(now time.Time) (start time.Time, ok bool) {
	switch i {
	case IntervalLive:
		return now.Add(-LiveWindow), true
	case IntervalDay:
		return now.AddDate(0, 0, -1), true
	case IntervalMonth:
		return now.AddDate(0, -1, 0), true
	case IntervalYear:
		return now.AddDate(-1, 0, 0), true
	default:
		return time.Time{}, false
	}
}
