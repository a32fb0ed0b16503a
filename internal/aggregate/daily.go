package aggregate

import (
	"sort"

	"github.com/blackwell-systems/droidusage/internal/session"
)

// UnknownDate is the group key for sessions whose start time could not be
// resolved. It sorts after every real date.
const UnknownDate = "Unknown Date"

// DailyGroup is one (calendar date, model) aggregation bucket.
type DailyGroup struct {
	Date     string `json:"date"`
	Model    string `json:"model"`
	Provider string `json:"provider"`

	InputTokens         int64 `json:"inputTokens"`
	OutputTokens        int64 `json:"outputTokens"`
	CacheCreationTokens int64 `json:"cacheCreationTokens"`
	CacheReadTokens     int64 `json:"cacheReadTokens"`
	TotalTokens         int64 `json:"totalTokens"`

	UserInteractions int     `json:"userInteractions"`
	Cost             float64 `json:"cost"`

	Sessions []session.Session `json:"sessions"`
}

// GroupByDate buckets sessions by (start date, model), summing token
// fields, prompts, and per-session costs. Cost is summed per session, not
// recomputed from the summed tokens. The result is sorted by date
// ascending with Unknown Date last, then by model name within a date.
func GroupByDate(sessions []session.Session) []DailyGroup {
	type key struct{ date, model string }
	grouped := make(map[key]*DailyGroup)

	for _, s := range sessions {
		dateKey := UnknownDate
		if s.HasDate() {
			dateKey = s.Date.Format("2006-01-02")
		}

		k := key{dateKey, s.Model}
		g, ok := grouped[k]
		if !ok {
			g = &DailyGroup{Date: dateKey, Model: s.Model, Provider: s.Provider}
			grouped[k] = g
		}

		g.InputTokens += s.InputTokens
		g.OutputTokens += s.OutputTokens
		g.CacheCreationTokens += s.CacheCreationTokens
		g.CacheReadTokens += s.CacheReadTokens
		g.TotalTokens += s.SumTokens()
		g.UserInteractions += s.UserInteractions
		g.Cost += s.Cost
		g.Sessions = append(g.Sessions, s)
	}

	groups := make([]DailyGroup, 0, len(grouped))
	for _, g := range grouped {
		groups = append(groups, *g)
	}

	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.Date != b.Date {
			if a.Date == UnknownDate {
				return false
			}
			if b.Date == UnknownDate {
				return true
			}
			return a.Date < b.Date
		}
		return a.Model < b.Model
	})

	return groups
}
