package analyzer

import (
	"sort"

	"github.com/blackwell-systems/droidusage/internal/session"
)

// expectedCostBand is the expected cost-per-million-tokens range for a
// model. Sessions priced well above their band lose efficiency score.
type expectedCostBand struct {
	Min float64
	Max float64
}

var expectedCosts = map[string]expectedCostBand{
	"claude-3-5-sonnet-20241022": {Min: 3, Max: 15},
	"glm-4":                      {Min: 0.5, Max: 2.5},
	"gpt-4o":                     {Min: 2.5, Max: 10},
}

var defaultCostBand = expectedCostBand{Min: 0, Max: 20}

// SessionEfficiency grades a single session against its model's expected
// cost band and cache behavior.
type SessionEfficiency struct {
	Score                float64  `json:"score"`
	Status               string   `json:"status"`
	Issues               []string `json:"issues"`
	CostPerMillionTokens float64  `json:"costPerMillionTokens"`
	CacheHitRate         float64  `json:"cacheHitRate"`
}

// RankedSession is one entry in a top-sessions report.
type RankedSession struct {
	session.Session
	AnalysisType      string            `json:"analysisType"`
	Efficiency        SessionEfficiency `json:"efficiency"`
	Warnings          []string          `json:"warnings"`
	Recommendations   []string          `json:"recommendations"`
	DeviationMultiple float64           `json:"deviationMultiple,omitempty"`
}

// RankSummary aggregates the ranked subset.
type RankSummary struct {
	TotalCost     float64 `json:"totalCost"`
	TotalTokens   int64   `json:"totalTokens"`
	AvgCost       float64 `json:"avgCost"`
	AvgTokens     float64 `json:"avgTokens"`
	AvgEfficiency float64 `json:"avgEfficiency"`
	CostStats     Stats   `json:"costStats"`
	TokenStats    Stats   `json:"tokenStats"`
}

// TopByCost returns the most expensive sessions, costliest first. Zero
// cost sessions are excluded.
func TopByCost(sessions []session.Session, limit int) []RankedSession {
	filtered := filterSessions(sessions, func(s session.Session) bool { return s.Cost > 0 })
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Cost > filtered[j].Cost })
	return enrichAll(limitTo(filtered, limit), "cost")
}

// TopByTokens returns the largest sessions by total token count.
func TopByTokens(sessions []session.Session, limit int) []RankedSession {
	filtered := filterSessions(sessions, func(s session.Session) bool { return s.TotalTokens > 0 })
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].TotalTokens > filtered[j].TotalTokens })
	return enrichAll(limitTo(filtered, limit), "tokens")
}

// TopByDuration returns the longest sessions by active time.
func TopByDuration(sessions []session.Session, limit int) []RankedSession {
	filtered := filterSessions(sessions, func(s session.Session) bool { return s.ActiveTimeMs > 0 })
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ActiveTimeMs > filtered[j].ActiveTimeMs })
	return enrichAll(limitTo(filtered, limit), "duration")
}

// TopInefficient returns the sessions with the highest cost per million
// tokens among those with both tokens and cost.
func TopInefficient(sessions []session.Session, limit int) []RankedSession {
	filtered := filterSessions(sessions, func(s session.Session) bool {
		return s.TotalTokens > 0 && s.Cost > 0
	})
	sort.Slice(filtered, func(i, j int) bool {
		return costPerMillion(filtered[i]) > costPerMillion(filtered[j])
	})
	return enrichAll(limitTo(filtered, limit), "efficiency")
}

// Outliers returns sessions whose cost exceeds the population mean by
// more than two standard deviations. No limit applies.
func Outliers(sessions []session.Session) []RankedSession {
	var costs []float64
	for _, s := range sessions {
		if s.Cost > 0 {
			costs = append(costs, s.Cost)
		}
	}
	stats := ComputeStats(costs)
	if stats.StdDev == 0 {
		return nil
	}
	threshold := stats.Mean + 2*stats.StdDev

	var out []RankedSession
	for _, s := range sessions {
		if s.Cost <= threshold {
			continue
		}
		r := enrich(s, "outlier")
		r.DeviationMultiple = (s.Cost - stats.Mean) / stats.StdDev
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cost > out[j].Cost })
	return out
}

func filterSessions(sessions []session.Session, keep func(session.Session) bool) []session.Session {
	var out []session.Session
	for _, s := range sessions {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

func limitTo(sessions []session.Session, limit int) []session.Session {
	if limit > 0 && len(sessions) > limit {
		return sessions[:limit]
	}
	return sessions
}

func enrichAll(sessions []session.Session, analysisType string) []RankedSession {
	out := make([]RankedSession, len(sessions))
	for i, s := range sessions {
		out[i] = enrich(s, analysisType)
	}
	return out
}

func enrich(s session.Session, analysisType string) RankedSession {
	eff := GradeSession(s)
	return RankedSession{
		Session:         s,
		AnalysisType:    analysisType,
		Efficiency:      eff,
		Warnings:        sessionWarnings(s, eff),
		Recommendations: sessionRecommendations(s, eff),
	}
}

// GradeSession scores a session starting from 100 and deducting for a
// cost per token above the model's expected band, low cache utilization
// on large inputs, and extremely large sessions.
func GradeSession(s session.Session) SessionEfficiency {
	eff := SessionEfficiency{Score: 100, Status: "good"}

	if s.TotalTokens > 0 {
		eff.CostPerMillionTokens = s.Cost / float64(s.TotalTokens) * 1_000_000
	}
	if potential := s.InputTokens + s.CacheReadTokens; potential > 0 {
		eff.CacheHitRate = float64(s.CacheReadTokens) / float64(potential)
	}

	band, ok := expectedCosts[s.Model]
	if !ok {
		band = defaultCostBand
	}

	switch {
	case eff.CostPerMillionTokens > band.Max*1.5:
		eff.Score -= 30
		eff.Issues = append(eff.Issues, "Very high cost per token")
		eff.Status = "poor"
	case eff.CostPerMillionTokens > band.Max:
		eff.Score -= 15
		eff.Issues = append(eff.Issues, "High cost per token")
		eff.Status = "fair"
	}

	if s.InputTokens > 10_000 && eff.CacheHitRate < 0.1 {
		eff.Score -= 20
		eff.Issues = append(eff.Issues, "Low cache utilization")
		if eff.Status == "good" {
			eff.Status = "fair"
		}
	}

	if s.TotalTokens > 50_000_000 {
		eff.Score -= 15
		eff.Issues = append(eff.Issues, "Very large session (consider splitting)")
		if eff.Status == "good" {
			eff.Status = "fair"
		}
	}

	if eff.Score < 0 {
		eff.Score = 0
	}
	return eff
}

func sessionWarnings(s session.Session, eff SessionEfficiency) []string {
	var warnings []string
	if s.Cost > 50 {
		warnings = append(warnings, "Very expensive session")
	}
	if s.TotalTokens > 50_000_000 {
		warnings = append(warnings, "Very high token usage")
	}
	if s.ActiveTimeMs > 3_600_000 {
		warnings = append(warnings, "Very long duration (possibly stuck)")
	}
	if eff.Status == "poor" {
		warnings = append(warnings, "Poor efficiency")
	}
	return warnings
}

func sessionRecommendations(s session.Session, eff SessionEfficiency) []string {
	var recs []string
	if s.Cost > 50 {
		recs = append(recs, "Consider breaking this into smaller sessions")
	}
	if s.InputTokens > 10_000 && eff.CacheHitRate < 0.1 {
		recs = append(recs, "Enable prompt caching to reduce costs")
	}
	if s.Model == "claude-3-5-sonnet-20241022" && s.OutputTokens < 1000 {
		recs = append(recs, "Consider using Haiku for simple tasks (5x cheaper)")
	}
	if s.TotalTokens > 50_000_000 {
		recs = append(recs, "Review prompting strategy to reduce token usage")
	}
	return recs
}

// SummaryStats aggregates the ranked subset's cost and token
// distributions.
func SummaryStats(ranked []RankedSession) RankSummary {
	if len(ranked) == 0 {
		return RankSummary{}
	}

	costs := make([]float64, len(ranked))
	tokens := make([]float64, len(ranked))
	scores := make([]float64, len(ranked))
	var sum RankSummary
	for i, r := range ranked {
		costs[i] = r.Cost
		tokens[i] = float64(r.TotalTokens)
		scores[i] = r.Efficiency.Score
		sum.TotalCost += r.Cost
		sum.TotalTokens += r.TotalTokens
	}

	n := float64(len(ranked))
	sum.AvgCost = sum.TotalCost / n
	sum.AvgTokens = float64(sum.TotalTokens) / n
	sum.AvgEfficiency = meanOf(scores)
	sum.CostStats = ComputeStats(costs)
	sum.TokenStats = ComputeStats(tokens)
	return sum
}
