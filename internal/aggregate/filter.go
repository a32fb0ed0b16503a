// Package aggregate groups annotated sessions by calendar date, rolling
// 5-hour block, or not at all, and folds any of those shapes into a
// Summary.
package aggregate

import (
	"time"

	"github.com/blackwell-systems/droidusage/internal/session"
)

// Range is an inclusive, day-granularity date filter. A zero Since or
// Until leaves that side open.
type Range struct {
	Since time.Time
	Until time.Time
}

// IsZero reports whether neither bound is set.
func (r Range) IsZero() bool {
	return r.Since.IsZero() && r.Until.IsZero()
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// FilterByDate returns the sessions whose start date falls inside r.
// Comparison is at day granularity: since filters start-of-day(session) >=
// start-of-day(since), until filters <= until's calendar day. Sessions
// without a date always pass; a date filter never excludes them.
func FilterByDate(sessions []session.Session, r Range) []session.Session {
	if r.IsZero() {
		return sessions
	}

	var out []session.Session
	for _, s := range sessions {
		if !s.HasDate() {
			out = append(out, s)
			continue
		}
		day := startOfDay(s.Date)
		if !r.Since.IsZero() && day.Before(startOfDay(r.Since)) {
			continue
		}
		if !r.Until.IsZero() && day.After(startOfDay(r.Until)) {
			continue
		}
		out = append(out, s)
	}
	return out
}
