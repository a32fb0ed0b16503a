package analyzer

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/blackwell-systems/droidusage/internal/session"
)

// ModelCostGroup sums spend and token fields across one model's sessions.
type ModelCostGroup struct {
	Model               string  `json:"model"`
	Sessions            int     `json:"sessions"`
	TotalCost           float64 `json:"totalCost"`
	TotalTokens         int64   `json:"totalTokens"`
	InputTokens         int64   `json:"inputTokens"`
	OutputTokens        int64   `json:"outputTokens"`
	CacheReadTokens     int64   `json:"cacheReadTokens"`
	CacheCreationTokens int64   `json:"cacheCreationTokens"`
}

// ProviderCostGroup sums spend across one provider's sessions.
type ProviderCostGroup struct {
	Provider    string   `json:"provider"`
	Models      []string `json:"models"`
	Sessions    int      `json:"sessions"`
	TotalCost   float64  `json:"totalCost"`
	TotalTokens int64    `json:"totalTokens"`
}

// CostAverages holds per-session averages across the population.
type CostAverages struct {
	CostPerSession   float64 `json:"avgCostPerSession"`
	TokensPerSession float64 `json:"avgTokensPerSession"`
	CostPerMillion   float64 `json:"avgCostPerToken"`
	CostPerPrompt    float64 `json:"avgCostPerPrompt"`
	Duration         float64 `json:"avgDuration"`
}

// BurnRate projects the observed daily average spend forward.
type BurnRate struct {
	DailyAverage      float64 `json:"dailyAverage"`
	WeeklyProjection  float64 `json:"weeklyProjection"`
	MonthlyProjection float64 `json:"monthlyProjection"`
	AnnualProjection  float64 `json:"annualProjection"`
	DaysAnalyzed      int     `json:"daysAnalyzed"`
	PeriodStart       string  `json:"periodStart,omitempty"`
	PeriodEnd         string  `json:"periodEnd,omitempty"`
}

// CostBreakdown allocates each session's cost proportionally across its
// token-type mix. It is an approximation since per-type rates differ.
type CostBreakdown struct {
	InputCost      float64 `json:"inputCost"`
	OutputCost     float64 `json:"outputCost"`
	CacheReadCost  float64 `json:"cacheReadCost"`
	CacheWriteCost float64 `json:"cacheWriteCost"`
	Total          float64 `json:"total"`
}

// DailyCost is one point on the spend timeline.
type DailyCost struct {
	Date string  `json:"date"`
	Cost float64 `json:"cost"`
}

// CostTimeline is the per-day spend series with its statistics.
type CostTimeline struct {
	Timeline []DailyCost `json:"timeline"`
	Stats    Stats       `json:"stats"`
}

// CostResult is the full output of the cost analyzer.
type CostResult struct {
	ByModel    []ModelCostGroup    `json:"byModel"`
	ByProvider []ProviderCostGroup `json:"byProvider"`
	Averages   CostAverages        `json:"averages"`
	BurnRate   BurnRate            `json:"burnRate"`
	Breakdown  CostBreakdown       `json:"breakdown"`
	Trends     CostTimeline        `json:"trends"`
}

// CostAnalyzer analyzes spending patterns and burn rate. Thresholds
// control when Insights fires its warnings.
type CostAnalyzer struct {
	Thresholds Thresholds
}

func (CostAnalyzer) Name() string { return "cost" }

func (a CostAnalyzer) Analyze(sessions []session.Session) (any, error) {
	if err := validateSessions(sessions); err != nil {
		return nil, err
	}
	return CostResult{
		ByModel:    groupCostByModel(sessions),
		ByProvider: groupCostByProvider(sessions),
		Averages:   costAverages(sessions),
		BurnRate:   ComputeBurnRate(sessions),
		Breakdown:  costBreakdown(sessions),
		Trends:     costTimeline(sessions),
	}, nil
}

func groupCostByModel(sessions []session.Session) []ModelCostGroup {
	grouped := make(map[string]*ModelCostGroup)
	for _, s := range sessions {
		model := s.Model
		if model == "" {
			model = "unknown"
		}
		g, ok := grouped[model]
		if !ok {
			g = &ModelCostGroup{Model: model}
			grouped[model] = g
		}
		g.Sessions++
		g.TotalCost += s.Cost
		g.TotalTokens += s.TotalTokens
		g.InputTokens += s.InputTokens
		g.OutputTokens += s.OutputTokens
		g.CacheReadTokens += s.CacheReadTokens
		g.CacheCreationTokens += s.CacheCreationTokens
	}

	groups := make([]ModelCostGroup, 0, len(grouped))
	for _, g := range grouped {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].TotalCost > groups[j].TotalCost })
	return groups
}

func groupCostByProvider(sessions []session.Session) []ProviderCostGroup {
	type acc struct {
		group  ProviderCostGroup
		models map[string]struct{}
	}
	grouped := make(map[string]*acc)
	for _, s := range sessions {
		provider := s.Provider
		if provider == "" {
			provider = "unknown"
		}
		g, ok := grouped[provider]
		if !ok {
			g = &acc{group: ProviderCostGroup{Provider: provider}, models: make(map[string]struct{})}
			grouped[provider] = g
		}
		if s.Model != "" {
			g.models[s.Model] = struct{}{}
		}
		g.group.Sessions++
		g.group.TotalCost += s.Cost
		g.group.TotalTokens += s.TotalTokens
	}

	groups := make([]ProviderCostGroup, 0, len(grouped))
	for _, g := range grouped {
		for m := range g.models {
			g.group.Models = append(g.group.Models, m)
		}
		sort.Strings(g.group.Models)
		groups = append(groups, g.group)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].TotalCost > groups[j].TotalCost })
	return groups
}

func costAverages(sessions []session.Session) CostAverages {
	var totalCost float64
	var totalTokens, totalDuration int64
	var totalPrompts int
	for _, s := range sessions {
		totalCost += s.Cost
		totalTokens += s.TotalTokens
		totalPrompts += s.UserInteractions
		totalDuration += s.ActiveTimeMs
	}

	n := float64(len(sessions))
	avg := CostAverages{
		CostPerSession:   totalCost / n,
		TokensPerSession: float64(totalTokens) / n,
		Duration:         float64(totalDuration) / n,
	}
	if totalTokens > 0 {
		avg.CostPerMillion = totalCost / float64(totalTokens) * 1_000_000
	}
	if totalPrompts > 0 {
		avg.CostPerPrompt = totalCost / float64(totalPrompts)
	}
	return avg
}

// ComputeBurnRate derives the daily spend average over the inclusive day
// span between the earliest and latest dated session, projected forward.
// A population without any dated session yields the zero BurnRate.
func ComputeBurnRate(sessions []session.Session) BurnRate {
	var earliest, latest time.Time
	var totalCost float64
	for _, s := range sessions {
		totalCost += s.Cost
		if !s.HasDate() {
			continue
		}
		if earliest.IsZero() || s.Date.Before(earliest) {
			earliest = s.Date
		}
		if latest.IsZero() || s.Date.After(latest) {
			latest = s.Date
		}
	}
	if earliest.IsZero() {
		return BurnRate{}
	}

	days := int(math.Ceil(latest.Sub(earliest).Hours()/24)) + 1
	daily := totalCost / float64(days)
	return BurnRate{
		DailyAverage:      daily,
		WeeklyProjection:  daily * 7,
		MonthlyProjection: daily * 30,
		AnnualProjection:  daily * 365,
		DaysAnalyzed:      days,
		PeriodStart:       earliest.Format("2006-01-02"),
		PeriodEnd:         latest.Format("2006-01-02"),
	}
}

func costBreakdown(sessions []session.Session) CostBreakdown {
	var b CostBreakdown
	for _, s := range sessions {
		total := float64(s.TotalTokens)
		if total == 0 {
			total = 1
		}
		b.InputCost += s.Cost * float64(s.InputTokens) / total
		b.OutputCost += s.Cost * float64(s.OutputTokens) / total
		b.CacheReadCost += s.Cost * float64(s.CacheReadTokens) / total
		b.CacheWriteCost += s.Cost * float64(s.CacheCreationTokens) / total
	}
	b.Total = b.InputCost + b.OutputCost + b.CacheReadCost + b.CacheWriteCost
	return b
}

func costTimeline(sessions []session.Session) CostTimeline {
	daily := make(map[string]float64)
	for _, s := range sessions {
		if !s.HasDate() {
			continue
		}
		daily[s.Date.Format("2006-01-02")] += s.Cost
	}

	dates := make([]string, 0, len(daily))
	for d := range daily {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	timeline := make([]DailyCost, 0, len(dates))
	costs := make([]float64, 0, len(dates))
	for _, d := range dates {
		timeline = append(timeline, DailyCost{Date: d, Cost: daily[d]})
		costs = append(costs, daily[d])
	}
	return CostTimeline{Timeline: timeline, Stats: ComputeStats(costs)}
}

func (a CostAnalyzer) Insights(result any) []Insight {
	res, ok := result.(CostResult)
	if !ok {
		return nil
	}

	var insights []Insight

	if res.BurnRate.MonthlyProjection > a.Thresholds.MonthlyBurnWarning {
		insights = append(insights, Insight{
			Type:           "warning",
			Category:       "burn_rate",
			Message:        fmt.Sprintf("High monthly burn rate: $%.2f", res.BurnRate.MonthlyProjection),
			Severity:       "high",
			Recommendation: "Consider optimizing model usage or switching to cheaper models for routine tasks",
		})
	}

	if len(res.ByModel) > 0 {
		top := res.ByModel[0]
		avgPerSession := top.TotalCost / float64(top.Sessions)
		if avgPerSession > a.Thresholds.SessionCostWarning {
			insights = append(insights, Insight{
				Type:           "info",
				Category:       "model_efficiency",
				Message:        fmt.Sprintf("%s has high average cost per session: $%.2f", top.Model, avgPerSession),
				Severity:       "medium",
				Recommendation: "Review if all sessions require this model or if cheaper alternatives could be used",
			})
		}
	}

	var totalCache, totalInput int64
	for _, m := range res.ByModel {
		totalCache += m.CacheReadTokens
		totalInput += m.InputTokens
	}
	if totalInput > 1_000_000 {
		cacheRate := float64(totalCache) / float64(totalInput) * 100
		if cacheRate < a.Thresholds.CacheRatePercentFloor {
			insights = append(insights, Insight{
				Type:           "opportunity",
				Category:       "cache_utilization",
				Message:        fmt.Sprintf("Low cache utilization: %.1f%%", cacheRate),
				Severity:       "medium",
				Recommendation: "Enable prompt caching to reduce costs by up to 90% on repeated inputs",
			})
		}
	}

	if len(res.ByProvider) > 1 {
		var totalCost float64
		for _, p := range res.ByProvider {
			totalCost += p.TotalCost
		}
		if totalCost > 0 {
			concentration := res.ByProvider[0].TotalCost / totalCost * 100
			if concentration > a.Thresholds.ProviderConcentration {
				insights = append(insights, Insight{
					Type:           "info",
					Category:       "provider_concentration",
					Message:        fmt.Sprintf("%.0f%% of costs from %s", concentration, res.ByProvider[0].Provider),
					Severity:       "low",
					Recommendation: "Consider diversifying providers for cost optimization and resilience",
				})
			}
		}
	}

	return insights
}
