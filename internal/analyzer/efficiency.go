package analyzer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/blackwell-systems/droidusage/internal/session"
)

// ModelTokenCost ranks one model by total cost per million tokens.
type ModelTokenCost struct {
	Model                string  `json:"model"`
	Sessions             int     `json:"sessions"`
	TotalCost            float64 `json:"totalCost"`
	TotalTokens          int64   `json:"totalTokens"`
	CostPerMillionTokens float64 `json:"costPerMillionTokens"`
}

// CostPerTokenAnalysis ranks models by cost per million tokens ascending.
type CostPerTokenAnalysis struct {
	ByModel       []ModelTokenCost `json:"byModel"`
	Cheapest      *ModelTokenCost  `json:"cheapest,omitempty"`
	MostExpensive *ModelTokenCost  `json:"mostExpensive,omitempty"`
	Average       float64          `json:"average"`
}

// ModelPromptCost ranks one model by cost per user prompt.
type ModelPromptCost struct {
	Model         string  `json:"model"`
	Sessions      int     `json:"sessions"`
	TotalCost     float64 `json:"totalCost"`
	TotalPrompts  int     `json:"totalPrompts"`
	CostPerPrompt float64 `json:"costPerPrompt"`
}

// CostPerPromptAnalysis ranks models by cost per prompt ascending.
type CostPerPromptAnalysis struct {
	ByModel       []ModelPromptCost `json:"byModel"`
	Cheapest      *ModelPromptCost  `json:"cheapest,omitempty"`
	MostExpensive *ModelPromptCost  `json:"mostExpensive,omitempty"`
	Average       float64           `json:"average"`
}

// ModelCacheUse holds one model's cache hit rate.
type ModelCacheUse struct {
	Model              string  `json:"model"`
	Sessions           int     `json:"sessions"`
	TotalInput         int64   `json:"totalInput"`
	TotalCacheRead     int64   `json:"totalCacheRead"`
	TotalCacheCreation int64   `json:"totalCacheCreation"`
	CacheHitRate       float64 `json:"cacheHitRate"`
}

// CacheUtilization summarizes cache reuse per model and overall.
type CacheUtilization struct {
	ByModel        []ModelCacheUse `json:"byModel"`
	OverallHitRate float64         `json:"overallHitRate"`
	TotalCacheRead int64           `json:"totalCacheRead"`
	TotalInput     int64           `json:"totalInput"`
}

// ScoredSession pairs a session with its efficiency score.
type ScoredSession struct {
	session.Session
	EfficiencyScore float64 `json:"efficiencyScore"`
}

// EfficiencyScores holds all sessions scored and ranked.
type EfficiencyScores struct {
	Sessions []ScoredSession `json:"sessions"`
	Stats    Stats           `json:"stats"`
	Top10    []ScoredSession `json:"top10"`
	Bottom10 []ScoredSession `json:"bottom10"`
}

// ValueLeaders lists the best performing sessions per dimension.
type ValueLeaders struct {
	BestCostPerToken     []session.Session `json:"bestCostPerToken"`
	BestCacheUtilization []session.Session `json:"bestCacheUtilization"`
	MostEfficient        []ScoredSession   `json:"mostEfficient"`
}

// EfficiencyResult is the full output of the efficiency analyzer.
type EfficiencyResult struct {
	CostPerToken     CostPerTokenAnalysis  `json:"costPerToken"`
	CostPerPrompt    CostPerPromptAnalysis `json:"costPerPrompt"`
	CacheUtilization CacheUtilization      `json:"cacheUtilization"`
	EfficiencyScores EfficiencyScores      `json:"efficiencyScores"`
	ValueLeaders     ValueLeaders          `json:"valueLeaders"`
	Recommendations  []Recommendation      `json:"recommendations"`
}

// EfficiencyAnalyzer analyzes cost efficiency and cache value. The cache
// floor in Thresholds drives the cache recommendations and insights.
type EfficiencyAnalyzer struct {
	Thresholds Thresholds
}

func (EfficiencyAnalyzer) Name() string { return "efficiency" }

func (a EfficiencyAnalyzer) Analyze(sessions []session.Session) (any, error) {
	if err := validateSessions(sessions); err != nil {
		return nil, err
	}
	return EfficiencyResult{
		CostPerToken:     costPerToken(sessions),
		CostPerPrompt:    costPerPrompt(sessions),
		CacheUtilization: cacheUtilization(sessions),
		EfficiencyScores: scoreSessions(sessions),
		ValueLeaders:     valueLeaders(sessions),
		Recommendations:  efficiencyRecommendations(sessions, a.Thresholds),
	}, nil
}

// SessionScore computes a 0-100 efficiency score for one session. Base
// efficiency is output tokens per dollar with a small cost floor, boosted
// up to 50% by the cache hit rate, then log-normalized and clamped.
func SessionScore(s session.Session) float64 {
	cost := s.Cost
	if cost <= 0 {
		cost = 0.0001
	}
	input := s.InputTokens
	if input <= 0 {
		input = 1
	}

	base := float64(s.OutputTokens) / cost
	hitRate := float64(s.CacheReadTokens) / float64(input+s.CacheReadTokens)
	raw := base * (1 + hitRate*0.5)

	return clamp((math.Log10(raw+1)-2)*25, 0, 100)
}

func costPerToken(sessions []session.Session) CostPerTokenAnalysis {
	grouped := make(map[string]*ModelTokenCost)
	for _, s := range sessions {
		model := s.Model
		if model == "" {
			model = "unknown"
		}
		g, ok := grouped[model]
		if !ok {
			g = &ModelTokenCost{Model: model}
			grouped[model] = g
		}
		g.Sessions++
		g.TotalCost += s.Cost
		g.TotalTokens += s.TotalTokens
	}

	results := make([]ModelTokenCost, 0, len(grouped))
	rates := make([]float64, 0, len(grouped))
	for _, g := range grouped {
		if g.TotalTokens > 0 {
			g.CostPerMillionTokens = g.TotalCost / float64(g.TotalTokens) * 1_000_000
		}
		results = append(results, *g)
		rates = append(rates, g.CostPerMillionTokens)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CostPerMillionTokens < results[j].CostPerMillionTokens
	})

	out := CostPerTokenAnalysis{ByModel: results, Average: meanOf(rates)}
	if len(results) > 0 {
		out.Cheapest = &results[0]
		out.MostExpensive = &results[len(results)-1]
	}
	return out
}

func costPerPrompt(sessions []session.Session) CostPerPromptAnalysis {
	grouped := make(map[string]*ModelPromptCost)
	for _, s := range sessions {
		model := s.Model
		if model == "" {
			model = "unknown"
		}
		g, ok := grouped[model]
		if !ok {
			g = &ModelPromptCost{Model: model}
			grouped[model] = g
		}
		g.Sessions++
		g.TotalCost += s.Cost
		g.TotalPrompts += s.UserInteractions
	}

	results := make([]ModelPromptCost, 0, len(grouped))
	rates := make([]float64, 0, len(grouped))
	for _, g := range grouped {
		if g.TotalPrompts > 0 {
			g.CostPerPrompt = g.TotalCost / float64(g.TotalPrompts)
		}
		results = append(results, *g)
		rates = append(rates, g.CostPerPrompt)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].CostPerPrompt < results[j].CostPerPrompt })

	out := CostPerPromptAnalysis{ByModel: results, Average: meanOf(rates)}
	if len(results) > 0 {
		out.Cheapest = &results[0]
		out.MostExpensive = &results[len(results)-1]
	}
	return out
}

func cacheUtilization(sessions []session.Session) CacheUtilization {
	grouped := make(map[string]*ModelCacheUse)
	for _, s := range sessions {
		model := s.Model
		if model == "" {
			model = "unknown"
		}
		g, ok := grouped[model]
		if !ok {
			g = &ModelCacheUse{Model: model}
			grouped[model] = g
		}
		g.Sessions++
		g.TotalInput += s.InputTokens
		g.TotalCacheRead += s.CacheReadTokens
		g.TotalCacheCreation += s.CacheCreationTokens
	}

	var totalInput, totalCacheRead int64
	results := make([]ModelCacheUse, 0, len(grouped))
	for _, g := range grouped {
		if potential := g.TotalInput + g.TotalCacheRead; potential > 0 {
			g.CacheHitRate = float64(g.TotalCacheRead) / float64(potential) * 100
		}
		totalInput += g.TotalInput
		totalCacheRead += g.TotalCacheRead
		results = append(results, *g)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].CacheHitRate > results[j].CacheHitRate })

	out := CacheUtilization{ByModel: results, TotalCacheRead: totalCacheRead, TotalInput: totalInput}
	if potential := totalInput + totalCacheRead; potential > 0 {
		out.OverallHitRate = float64(totalCacheRead) / float64(potential) * 100
	}
	return out
}

func scoreSessions(sessions []session.Session) EfficiencyScores {
	scored := make([]ScoredSession, len(sessions))
	scores := make([]float64, len(sessions))
	for i, s := range sessions {
		score := SessionScore(s)
		scored[i] = ScoredSession{Session: s, EfficiencyScore: score}
		scores[i] = score
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].EfficiencyScore > scored[j].EfficiencyScore })

	top := scored
	if len(top) > 10 {
		top = top[:10]
	}
	bottom := make([]ScoredSession, 0, 10)
	for i := len(scored) - 1; i >= 0 && len(bottom) < 10; i-- {
		bottom = append(bottom, scored[i])
	}

	return EfficiencyScores{Sessions: scored, Stats: ComputeStats(scores), Top10: top, Bottom10: bottom}
}

func valueLeaders(sessions []session.Session) ValueLeaders {
	byCostPerToken := make([]session.Session, len(sessions))
	copy(byCostPerToken, sessions)
	sort.Slice(byCostPerToken, func(i, j int) bool {
		return costPerMillion(byCostPerToken[i]) < costPerMillion(byCostPerToken[j])
	})

	var byCacheRate []session.Session
	for _, s := range sessions {
		if s.InputTokens > 0 {
			byCacheRate = append(byCacheRate, s)
		}
	}
	sort.Slice(byCacheRate, func(i, j int) bool {
		return cacheRate(byCacheRate[i]) > cacheRate(byCacheRate[j])
	})

	scored := scoreSessions(sessions).Sessions

	return ValueLeaders{
		BestCostPerToken:     firstN(byCostPerToken, 5),
		BestCacheUtilization: firstN(byCacheRate, 5),
		MostEfficient:        scored[:min(5, len(scored))],
	}
}

func costPerMillion(s session.Session) float64 {
	if s.TotalTokens <= 0 {
		return math.Inf(1)
	}
	return s.Cost / float64(s.TotalTokens) * 1_000_000
}

func cacheRate(s session.Session) float64 {
	potential := s.InputTokens + s.CacheReadTokens
	if potential <= 0 {
		return 0
	}
	return float64(s.CacheReadTokens) / float64(potential)
}

func firstN(sessions []session.Session, n int) []session.Session {
	if len(sessions) > n {
		return sessions[:n]
	}
	return sessions
}

func efficiencyRecommendations(sessions []session.Session, thresholds Thresholds) []Recommendation {
	var recs []Recommendation

	var totalInput, totalCache int64
	for _, s := range sessions {
		totalInput += s.InputTokens
		totalCache += s.CacheReadTokens
	}
	if totalInput > 1_000_000 {
		rate := float64(totalCache) / float64(totalInput) * 100
		if rate < thresholds.CacheRatePercentFloor {
			recs = append(recs, Recommendation{
				Category:         "cache_optimization",
				Priority:         "high",
				Message:          fmt.Sprintf("Low cache utilization: %.1f%%", rate),
				Action:           "Enable prompt caching to reduce costs by up to 90%",
				EstimatedSavings: "High",
			})
		}
	}

	var premiumCost, totalCost float64
	for _, s := range sessions {
		totalCost += s.Cost
		if strings.Contains(s.Model, "sonnet") || strings.Contains(s.Model, "gpt-4") {
			premiumCost += s.Cost
		}
	}
	if totalCost > 0 && premiumCost/totalCost > 0.8 {
		recs = append(recs, Recommendation{
			Category:         "model_optimization",
			Priority:         "medium",
			Message:          "Heavy use of premium models",
			Action:           "Consider using faster, cheaper models for routine tasks",
			EstimatedSavings: "Medium",
		})
	}

	scores := make([]float64, len(sessions))
	for i, s := range sessions {
		scores[i] = SessionScore(s)
	}
	if avg := meanOf(scores); avg < 30 {
		recs = append(recs, Recommendation{
			Category:         "general_efficiency",
			Priority:         "medium",
			Message:          fmt.Sprintf("Low average efficiency score: %.0f/100", avg),
			Action:           "Review prompting strategies and optimize token usage",
			EstimatedSavings: "Medium",
		})
	}

	return recs
}

func (a EfficiencyAnalyzer) Insights(result any) []Insight {
	res, ok := result.(EfficiencyResult)
	if !ok {
		return nil
	}

	var insights []Insight

	if res.CacheUtilization.OverallHitRate < a.Thresholds.CacheRatePercentFloor {
		insights = append(insights, Insight{
			Type:           "opportunity",
			Category:       "cache",
			Message:        fmt.Sprintf("Low cache hit rate: %.1f%%", res.CacheUtilization.OverallHitRate),
			Severity:       "high",
			Recommendation: "Significant cost savings available through better cache utilization",
		})
	}

	if res.CostPerToken.Average > 50 {
		insights = append(insights, Insight{
			Type:           "warning",
			Category:       "cost_efficiency",
			Message:        fmt.Sprintf("High average cost per million tokens: $%.2f", res.CostPerToken.Average),
			Severity:       "medium",
			Recommendation: "Consider model mix optimization",
		})
	}

	if len(res.ValueLeaders.MostEfficient) > 0 {
		insights = append(insights, Insight{
			Type:           "success",
			Category:       "value_leaders",
			Message:        fmt.Sprintf("Top efficiency score: %.0f/100", res.ValueLeaders.MostEfficient[0].EfficiencyScore),
			Severity:       "low",
			Recommendation: "Study top-performing sessions to replicate success patterns",
		})
	}

	return insights
}
