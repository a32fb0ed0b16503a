package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/droidusage/internal/session"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestComputeStats(t *testing.T) {
	stats := ComputeStats([]float64{1, 2, 3, 4, 10})
	assert.Equal(t, 5, stats.Count)
	assert.InDelta(t, 4.0, stats.Mean, 1e-9)
	assert.InDelta(t, 3.0, stats.Median, 1e-9)
	assert.InDelta(t, 1.0, stats.Min, 1e-9)
	assert.InDelta(t, 10.0, stats.Max, 1e-9)
	assert.InDelta(t, 3.1623, stats.StdDev, 0.001)

	even := ComputeStats([]float64{1, 2, 3, 4})
	assert.InDelta(t, 2.5, even.Median, 1e-9)

	assert.Equal(t, Stats{}, ComputeStats(nil))
}

func TestAnalyzersRejectEmptyInput(t *testing.T) {
	for _, a := range []Analyzer{CostAnalyzer{Thresholds: DefaultThresholds()}, PatternAnalyzer{}, EfficiencyAnalyzer{Thresholds: DefaultThresholds()}} {
		_, err := a.Analyze(nil)
		assert.ErrorIs(t, err, ErrNoSessions, a.Name())
	}
}

func TestCostAnalyzerBurnRate(t *testing.T) {
	sessions := []session.Session{
		{ID: "a", Date: ts("2025-06-01T08:00:00Z"), Model: "glm-4.6", Provider: "zhipuai", Cost: 3, TotalTokens: 100},
		{ID: "b", Date: ts("2025-06-03T20:00:00Z"), Model: "glm-4.6", Provider: "zhipuai", Cost: 9, TotalTokens: 200},
	}

	br := ComputeBurnRate(sessions)
	// 2025-06-01 08:00 to 2025-06-03 20:00 is 2.5 days, ceil + 1 = 4.
	assert.Equal(t, 4, br.DaysAnalyzed)
	assert.InDelta(t, 3.0, br.DailyAverage, 1e-9)
	assert.InDelta(t, 21.0, br.WeeklyProjection, 1e-9)
	assert.InDelta(t, 90.0, br.MonthlyProjection, 1e-9)
	assert.Equal(t, "2025-06-01", br.PeriodStart)
	assert.Equal(t, "2025-06-03", br.PeriodEnd)

	assert.Equal(t, BurnRate{}, ComputeBurnRate([]session.Session{{ID: "undated", Cost: 5}}))
}

func TestCostAnalyzerGrouping(t *testing.T) {
	sessions := []session.Session{
		{ID: "a", Model: "glm-4.6", Provider: "zhipuai", Cost: 1, TotalTokens: 100, InputTokens: 60, OutputTokens: 40},
		{ID: "b", Model: "gpt-4o", Provider: "openai", Cost: 5, TotalTokens: 50, InputTokens: 30, OutputTokens: 20},
		{ID: "c", Model: "glm-4.6", Provider: "zhipuai", Cost: 2, TotalTokens: 100, InputTokens: 50, OutputTokens: 50},
	}

	result, err := CostAnalyzer{Thresholds: DefaultThresholds()}.Analyze(sessions)
	require.NoError(t, err)
	res := result.(CostResult)

	require.Len(t, res.ByModel, 2)
	assert.Equal(t, "gpt-4o", res.ByModel[0].Model)
	assert.InDelta(t, 3.0, res.ByModel[1].TotalCost, 1e-9)
	assert.Equal(t, 2, res.ByModel[1].Sessions)

	require.Len(t, res.ByProvider, 2)
	assert.Equal(t, "openai", res.ByProvider[0].Provider)
	assert.Equal(t, []string{"glm-4.6"}, res.ByProvider[1].Models)

	assert.InDelta(t, 8.0/3, res.Averages.CostPerSession, 1e-9)

	// Proportional breakdown conserves total cost.
	assert.InDelta(t, 8.0, res.Breakdown.Total, 1e-9)
}

func TestCostInsightThresholds(t *testing.T) {
	a := CostAnalyzer{Thresholds: DefaultThresholds()}

	res := CostResult{BurnRate: BurnRate{MonthlyProjection: 1500}}
	insights := a.Insights(res)
	require.Len(t, insights, 1)
	assert.Equal(t, "burn_rate", insights[0].Category)

	// Low cache with over a million input tokens.
	res = CostResult{ByModel: []ModelCostGroup{{Model: "glm-4.6", Sessions: 1, InputTokens: 2_000_000, CacheReadTokens: 50_000}}}
	insights = a.Insights(res)
	require.Len(t, insights, 1)
	assert.Equal(t, "cache_utilization", insights[0].Category)

	// Provider concentration above 80%.
	res = CostResult{ByProvider: []ProviderCostGroup{
		{Provider: "zhipuai", TotalCost: 90},
		{Provider: "openai", TotalCost: 10},
	}}
	insights = a.Insights(res)
	require.Len(t, insights, 1)
	assert.Equal(t, "provider_concentration", insights[0].Category)
}

func TestConfiguredThresholdsChangeInsights(t *testing.T) {
	// A $200 projection is quiet at the stock threshold but warns when
	// the configured budget is lower.
	res := CostResult{BurnRate: BurnRate{MonthlyProjection: 200}}
	assert.Empty(t, CostAnalyzer{Thresholds: DefaultThresholds()}.Insights(res))

	strict := DefaultThresholds()
	strict.MonthlyBurnWarning = 100
	insights := CostAnalyzer{Thresholds: strict}.Insights(res)
	require.Len(t, insights, 1)
	assert.Equal(t, "burn_rate", insights[0].Category)

	// The cache floor moves the efficiency cache insight the same way.
	effRes := EfficiencyResult{CacheUtilization: CacheUtilization{OverallHitRate: 25}}
	assert.Empty(t, EfficiencyAnalyzer{Thresholds: DefaultThresholds()}.Insights(effRes))

	floor := DefaultThresholds()
	floor.CacheRatePercentFloor = 30
	insights = EfficiencyAnalyzer{Thresholds: floor}.Insights(effRes)
	require.Len(t, insights, 1)
	assert.Equal(t, "cache", insights[0].Category)
}

func TestPatternAnalyzer(t *testing.T) {
	sessions := []session.Session{
		{ID: "a", Date: ts("2025-06-02T09:15:00Z"), Model: "glm-4.6", ActiveTimeMs: 30_000, Cost: 1},  // Monday morning
		{ID: "b", Date: ts("2025-06-02T09:45:00Z"), Model: "glm-4.6", ActiveTimeMs: 240_000, Cost: 2}, // Monday morning
		{ID: "c", Date: ts("2025-06-07T22:00:00Z"), Model: "gpt-4o", ActiveTimeMs: 600_000, Cost: 3},  // Saturday night
		{ID: "undated", Model: "glm-4.6", ActiveTimeMs: 1_000},
	}

	result, err := PatternAnalyzer{}.Analyze(sessions)
	require.NoError(t, err)
	res := result.(PatternResult)

	assert.Equal(t, 9, res.PeakHours.PeakHour)
	assert.Equal(t, 2, res.PeakHours.PeakCount)
	assert.Equal(t, 3, res.PeakHours.TotalSessions, "undated sessions stay out of the hourly totals")
	assert.Equal(t, "Monday", res.BusiestDays.BusiestDay)
	assert.InDelta(t, 2.0/3*100, res.BusiestDays.WeekdayVsWeekend.WeekdayPercentage, 1e-9)

	byLabel := make(map[string]int)
	for _, b := range res.SessionDuration.Distribution {
		byLabel[b.Label] = b.Count
	}
	assert.Equal(t, 2, byLabel["< 1 min"]) // undated sessions still count toward durations
	assert.Equal(t, 1, byLabel["1-5 min"])
	assert.Equal(t, 1, byLabel["5-15 min"])

	morning := res.ModelPreferences["morning"]
	assert.Equal(t, "glm-4.6", morning.MostPopular)
	assert.Equal(t, 2, morning.TotalSessions)
	night := res.ModelPreferences["night"]
	assert.Equal(t, "gpt-4o", night.MostPopular)
}

func TestPatternSpikes(t *testing.T) {
	var sessions []session.Session
	for i := 0; i < 10; i++ {
		sessions = append(sessions, session.Session{ID: "spike", Date: ts("2025-06-02T10:00:00Z"), Model: "glm-4.6"})
	}
	sessions = append(sessions,
		session.Session{ID: "q1", Date: ts("2025-06-03T10:00:00Z"), Model: "glm-4.6"},
		session.Session{ID: "q2", Date: ts("2025-06-04T10:00:00Z"), Model: "glm-4.6"},
	)

	result, err := PatternAnalyzer{}.Analyze(sessions)
	require.NoError(t, err)
	res := result.(PatternResult)

	require.Len(t, res.UsageSpikes.Spikes, 1)
	assert.Equal(t, "2025-06-02", res.UsageSpikes.Spikes[0].Date)
	assert.Equal(t, 10, res.UsageSpikes.Spikes[0].SessionCount)
	assert.InDelta(t, 4.0, res.UsageSpikes.AverageDailyCount, 1e-9)
}

func TestSessionScoreClamped(t *testing.T) {
	cases := []session.Session{
		{},
		{OutputTokens: 1, Cost: 1_000_000},
		{OutputTokens: 1_000_000_000, Cost: 0.0000001},
		{OutputTokens: -500, Cost: 1},
		{OutputTokens: 100_000, InputTokens: 1, CacheReadTokens: 1_000_000_000},
	}
	for i, s := range cases {
		score := SessionScore(s)
		assert.GreaterOrEqual(t, score, 0.0, "case %d", i)
		assert.LessOrEqual(t, score, 100.0, "case %d", i)
	}

	// Cache reuse raises the score for an otherwise identical session.
	base := session.Session{OutputTokens: 50_000, InputTokens: 100_000, Cost: 2}
	cached := base
	cached.CacheReadTokens = 900_000
	assert.Greater(t, SessionScore(cached), SessionScore(base))
}

func TestEfficiencyAnalyzer(t *testing.T) {
	sessions := []session.Session{
		{ID: "cheap", Model: "glm-4.6", Cost: 0.5, TotalTokens: 1_000_000, OutputTokens: 400_000, InputTokens: 500_000, CacheReadTokens: 500_000, UserInteractions: 10},
		{ID: "pricey", Model: "gpt-4o", Cost: 20, TotalTokens: 500_000, OutputTokens: 100_000, InputTokens: 400_000, UserInteractions: 2},
	}

	result, err := EfficiencyAnalyzer{Thresholds: DefaultThresholds()}.Analyze(sessions)
	require.NoError(t, err)
	res := result.(EfficiencyResult)

	require.Len(t, res.CostPerToken.ByModel, 2)
	assert.Equal(t, "glm-4.6", res.CostPerToken.Cheapest.Model)
	assert.Equal(t, "gpt-4o", res.CostPerToken.MostExpensive.Model)
	assert.InDelta(t, 0.5, res.CostPerToken.Cheapest.CostPerMillionTokens, 1e-9)

	assert.Equal(t, "glm-4.6", res.CostPerPrompt.Cheapest.Model)
	assert.InDelta(t, 0.05, res.CostPerPrompt.Cheapest.CostPerPrompt, 1e-9)

	// glm: 500k cache / (500k input + 500k cache) = 50% hit rate.
	assert.Equal(t, "glm-4.6", res.CacheUtilization.ByModel[0].Model)
	assert.InDelta(t, 50.0, res.CacheUtilization.ByModel[0].CacheHitRate, 1e-9)

	require.Len(t, res.EfficiencyScores.Sessions, 2)
	assert.Equal(t, "cheap", res.EfficiencyScores.Sessions[0].ID)
	assert.Len(t, res.ValueLeaders.MostEfficient, 2)
}

func TestOrchestratorRunsAll(t *testing.T) {
	sessions := []session.Session{
		{ID: "a", Date: ts("2025-06-01T10:00:00Z"), Model: "glm-4.6", Provider: "zhipuai", Cost: 1, TotalTokens: 1000, OutputTokens: 500},
	}

	result, err := NewOrchestrator(DefaultThresholds()).Run(t.Context(), sessions, Selection{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.SessionCount)
	assert.ElementsMatch(t, []string{"cost", "patterns", "efficiency"}, result.AnalyzersRun)
	for _, name := range result.AnalyzersRun {
		assert.Empty(t, result.Results[name].Error, name)
		assert.NotNil(t, result.Results[name].Result, name)
	}
	assert.Contains(t, []string{"excellent", "good", "fair", "poor"}, result.Synthesized.OverallHealth)
	// Cost and patterns both succeeded so the timing correlation fires.
	require.NotEmpty(t, result.CrossInsights)
	assert.Equal(t, "cost_timing", result.CrossInsights[0].Category)
}

func TestOrchestratorSelection(t *testing.T) {
	sessions := []session.Session{{ID: "a", Model: "glm-4.6", Cost: 1, TotalTokens: 100}}

	result, err := NewOrchestrator(DefaultThresholds()).Run(t.Context(), sessions, Selection{Cost: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"cost"}, result.AnalyzersRun)
	_, hasPatterns := result.Results["patterns"]
	assert.False(t, hasPatterns)
	// No efficiency analyzer ran, so health stays unknown.
	assert.Equal(t, "unknown", result.Synthesized.OverallHealth)
}

func TestHealthThresholds(t *testing.T) {
	assert.Equal(t, "excellent", healthFor(70))
	assert.Equal(t, "good", healthFor(50))
	assert.Equal(t, "fair", healthFor(30))
	assert.Equal(t, "poor", healthFor(29.9))
}
