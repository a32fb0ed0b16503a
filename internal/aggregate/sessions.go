package aggregate

import (
	"sort"

	"github.com/blackwell-systems/droidusage/internal/session"
)

// SortSessions orders sessions newest first. Undated sessions sort after
// every dated one; ties fall back to the session ID for stable output.
func SortSessions(sessions []session.Session) []session.Session {
	sorted := make([]session.Session, len(sessions))
	copy(sorted, sessions)

	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		switch {
		case a.HasDate() && !b.HasDate():
			return true
		case !a.HasDate() && b.HasDate():
			return false
		case a.HasDate() && b.HasDate() && !a.Date.Equal(b.Date):
			return a.Date.After(b.Date)
		default:
			return a.ID < b.ID
		}
	})

	return sorted
}
