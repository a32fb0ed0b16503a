package analyzer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/droidusage/internal/session"
)

// Selection picks which analyzers the orchestrator runs. The zero value
// and All both run everything.
type Selection struct {
	Cost       bool
	Patterns   bool
	Efficiency bool
	All        bool
}

func (s Selection) names() []string {
	if s.All || (!s.Cost && !s.Patterns && !s.Efficiency) {
		return []string{"cost", "patterns", "efficiency"}
	}
	var names []string
	if s.Cost {
		names = append(names, "cost")
	}
	if s.Patterns {
		names = append(names, "patterns")
	}
	if s.Efficiency {
		names = append(names, "efficiency")
	}
	return names
}

// Outcome is one analyzer's result or its failure.
type Outcome struct {
	Result   any       `json:"result,omitempty"`
	Insights []Insight `json:"insights,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// KeyMetrics are the headline numbers pulled from each analyzer.
type KeyMetrics struct {
	BurnRate           *BurnRate `json:"burnRate,omitempty"`
	TotalCost          float64   `json:"totalCost"`
	PeakHour           int       `json:"peakHour"`
	BusiestDay         string    `json:"busiestDay"`
	AvgEfficiencyScore float64   `json:"avgEfficiencyScore"`
}

// Synthesis folds all analyzer outputs into one overall picture.
type Synthesis struct {
	OverallHealth   string           `json:"overallHealth"`
	KeyMetrics      KeyMetrics       `json:"keyMetrics"`
	Recommendations []Recommendation `json:"recommendations"`
	Alerts          []Insight        `json:"alerts"`
}

// RunResult is the orchestrator's combined output.
type RunResult struct {
	Timestamp     time.Time          `json:"timestamp"`
	SessionCount  int                `json:"sessionCount"`
	AnalyzersRun  []string           `json:"analyzersRun"`
	Results       map[string]Outcome `json:"results"`
	Synthesized   Synthesis          `json:"synthesized"`
	CrossInsights []Insight          `json:"crossInsights"`
}

// Orchestrator runs a selection of analyzers concurrently and synthesizes
// their outputs. One analyzer failing does not abort the others.
type Orchestrator struct {
	analyzers  map[string]Analyzer
	thresholds Thresholds
}

// NewOrchestrator builds an orchestrator whose analyzers warn at the
// given thresholds.
func NewOrchestrator(thresholds Thresholds) *Orchestrator {
	return &Orchestrator{
		analyzers: map[string]Analyzer{
			"cost":       CostAnalyzer{Thresholds: thresholds},
			"patterns":   PatternAnalyzer{},
			"efficiency": EfficiencyAnalyzer{Thresholds: thresholds},
		},
		thresholds: thresholds,
	}
}

// Run executes the selected analyzers over the session population.
func (o *Orchestrator) Run(ctx context.Context, sessions []session.Session, sel Selection) (*RunResult, error) {
	names := sel.names()

	var mu sync.Mutex
	results := make(map[string]Outcome, len(names))

	g, _ := errgroup.WithContext(ctx)
	for _, name := range names {
		a := o.analyzers[name]
		g.Go(func() error {
			result, err := a.Analyze(sessions)
			outcome := Outcome{}
			if err != nil {
				outcome.Error = err.Error()
			} else {
				outcome.Result = result
				outcome.Insights = a.Insights(result)
			}
			mu.Lock()
			results[a.Name()] = outcome
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &RunResult{
		Timestamp:     time.Now().UTC(),
		SessionCount:  len(sessions),
		AnalyzersRun:  names,
		Results:       results,
		Synthesized:   synthesize(results, o.thresholds),
		CrossInsights: crossInsights(results),
	}, nil
}

func synthesize(results map[string]Outcome, thresholds Thresholds) Synthesis {
	syn := Synthesis{OverallHealth: "unknown"}

	if out, ok := results["cost"]; ok {
		if res, ok := out.Result.(CostResult); ok {
			br := res.BurnRate
			syn.KeyMetrics.BurnRate = &br
			for _, m := range res.ByModel {
				syn.KeyMetrics.TotalCost += m.TotalCost
			}
			syn.Recommendations = append(syn.Recommendations, burnRateRecommendations(res, thresholds)...)
		}
	}

	if out, ok := results["patterns"]; ok {
		if res, ok := out.Result.(PatternResult); ok {
			syn.KeyMetrics.PeakHour = res.PeakHours.PeakHour
			syn.KeyMetrics.BusiestDay = res.BusiestDays.BusiestDay
		}
	}

	if out, ok := results["efficiency"]; ok {
		if res, ok := out.Result.(EfficiencyResult); ok {
			avg := res.EfficiencyScores.Stats.Mean
			syn.KeyMetrics.AvgEfficiencyScore = avg
			syn.OverallHealth = healthFor(avg)
			syn.Recommendations = append(syn.Recommendations, res.Recommendations...)
		}
	}

	for _, out := range results {
		syn.Alerts = append(syn.Alerts, out.Insights...)
	}

	return syn
}

// burnRateRecommendations promotes high-severity cost insights into the
// flat recommendation list.
func burnRateRecommendations(res CostResult, thresholds Thresholds) []Recommendation {
	if res.BurnRate.MonthlyProjection <= thresholds.MonthlyBurnWarning {
		return nil
	}
	return []Recommendation{{
		Category:         "burn_rate",
		Priority:         "high",
		Message:          fmt.Sprintf("Monthly projection $%.2f exceeds budget threshold", res.BurnRate.MonthlyProjection),
		Action:           "Audit the most expensive model's sessions for avoidable usage",
		EstimatedSavings: "High",
	}}
}

func healthFor(avgEfficiency float64) string {
	switch {
	case avgEfficiency >= 70:
		return "excellent"
	case avgEfficiency >= 50:
		return "good"
	case avgEfficiency >= 30:
		return "fair"
	default:
		return "poor"
	}
}

func crossInsights(results map[string]Outcome) []Insight {
	var insights []Insight

	costRes, hasCost := results["cost"].Result.(CostResult)
	patternRes, hasPatterns := results["patterns"].Result.(PatternResult)
	effRes, hasEff := results["efficiency"].Result.(EfficiencyResult)

	if hasCost && hasPatterns {
		insights = append(insights, Insight{
			Type:           "correlation",
			Category:       "cost_timing",
			Message:        fmt.Sprintf("Peak usage at %s with $%.2f daily burn rate", patternRes.PeakHours.PeakHourRange, costRes.BurnRate.DailyAverage),
			Recommendation: "Consider load balancing to distribute usage more evenly",
		})
	}

	if hasEff && hasCost {
		avg := effRes.EfficiencyScores.Stats.Mean
		monthly := costRes.BurnRate.MonthlyProjection
		if avg < 40 && monthly > 500 {
			insights = append(insights, Insight{
				Type:           "warning",
				Category:       "efficiency_cost",
				Message:        fmt.Sprintf("Low efficiency (%.0f/100) with high monthly costs ($%.2f)", avg, monthly),
				Recommendation: "Prioritize efficiency improvements for significant cost savings",
			})
		}
	}

	if hasPatterns && hasEff {
		long := len(patternRes.SessionDuration.Anomalies)
		low := len(effRes.EfficiencyScores.Bottom10)
		if long > 0 && low > 0 {
			insights = append(insights, Insight{
				Type:           "info",
				Category:       "duration_efficiency",
				Message:        fmt.Sprintf("%d long-duration sessions detected, %d low-efficiency sessions", long, low),
				Recommendation: "Review if long sessions correlate with low efficiency",
			})
		}
	}

	return insights
}
