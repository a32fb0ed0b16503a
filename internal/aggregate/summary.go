package aggregate

import "github.com/blackwell-systems/droidusage/internal/session"

// Summary holds the totals row rendered under every report view.
type Summary struct {
	TotalSessions   int     `json:"totalSessions"`
	TotalTokens     int64   `json:"totalTokens"`
	TotalCost       float64 `json:"totalCost"`
	TotalActiveTime int64   `json:"totalActiveTimeMs"`
	TotalPrompts    int     `json:"totalPrompts"`
}

// SummarizeDaily folds daily groups into a Summary. Session counts come
// from the per-group session slices so split (date, model) buckets do not
// double count.
func SummarizeDaily(groups []DailyGroup) Summary {
	var sum Summary
	for _, g := range groups {
		sum.TotalSessions += len(g.Sessions)
		sum.TotalTokens += g.TotalTokens
		sum.TotalCost += g.Cost
		sum.TotalPrompts += g.UserInteractions
		for _, s := range g.Sessions {
			sum.TotalActiveTime += s.ActiveTimeMs
		}
	}
	return sum
}

// SummarizeBlocks folds usage blocks into a Summary.
func SummarizeBlocks(blocks []Block) Summary {
	var sum Summary
	for _, b := range blocks {
		sum.TotalSessions += len(b.Sessions)
		sum.TotalTokens += b.TotalTokens
		sum.TotalCost += b.Cost
		sum.TotalPrompts += b.UserPrompts
		for _, s := range b.Sessions {
			sum.TotalActiveTime += s.ActiveTimeMs
		}
	}
	return sum
}

// SummarizeSessions folds a flat session list into a Summary.
func SummarizeSessions(sessions []session.Session) Summary {
	var sum Summary
	sum.TotalSessions = len(sessions)
	for _, s := range sessions {
		sum.TotalTokens += s.SumTokens()
		sum.TotalCost += s.Cost
		sum.TotalActiveTime += s.ActiveTimeMs
		sum.TotalPrompts += s.UserInteractions
	}
	return sum
}
