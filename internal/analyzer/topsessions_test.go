package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/droidusage/internal/session"
)

func TestTopByCost(t *testing.T) {
	sessions := []session.Session{
		{ID: "free"},
		{ID: "mid", Cost: 5, TotalTokens: 1000},
		{ID: "big", Cost: 20, TotalTokens: 4000},
		{ID: "small", Cost: 1, TotalTokens: 100},
	}

	top := TopByCost(sessions, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "big", top[0].ID)
	assert.Equal(t, "mid", top[1].ID)
	assert.Equal(t, "cost", top[0].AnalysisType)
}

func TestTopByTokensAndDuration(t *testing.T) {
	sessions := []session.Session{
		{ID: "a", TotalTokens: 100, ActiveTimeMs: 500},
		{ID: "b", TotalTokens: 300, ActiveTimeMs: 100},
		{ID: "zero"},
	}

	byTokens := TopByTokens(sessions, 10)
	require.Len(t, byTokens, 2)
	assert.Equal(t, "b", byTokens[0].ID)

	byDuration := TopByDuration(sessions, 10)
	require.Len(t, byDuration, 2)
	assert.Equal(t, "a", byDuration[0].ID)
}

func TestTopInefficient(t *testing.T) {
	sessions := []session.Session{
		{ID: "efficient", Cost: 1, TotalTokens: 10_000_000},
		{ID: "wasteful", Cost: 10, TotalTokens: 100_000},
		{ID: "no-cost", TotalTokens: 100},
	}

	ranked := TopInefficient(sessions, 10)
	require.Len(t, ranked, 2)
	assert.Equal(t, "wasteful", ranked[0].ID)
	assert.InDelta(t, 100.0, ranked[0].Efficiency.CostPerMillionTokens, 1e-9)
}

func TestOutliers(t *testing.T) {
	sessions := []session.Session{
		{ID: "n1", Cost: 1}, {ID: "n2", Cost: 1}, {ID: "n3", Cost: 1},
		{ID: "n4", Cost: 1}, {ID: "n5", Cost: 1}, {ID: "n6", Cost: 1},
		{ID: "n7", Cost: 1}, {ID: "n8", Cost: 1}, {ID: "n9", Cost: 1},
		{ID: "huge", Cost: 100},
	}

	out := Outliers(sessions)
	require.Len(t, out, 1)
	assert.Equal(t, "huge", out[0].ID)
	assert.Greater(t, out[0].DeviationMultiple, 2.0)

	// Uniform costs have zero deviation and therefore no outliers.
	assert.Empty(t, Outliers(sessions[:9]))
}

func TestGradeSessionDeductions(t *testing.T) {
	// Within the expected band for glm-4: 2.0 per million.
	good := GradeSession(session.Session{Model: "glm-4", Cost: 2, TotalTokens: 1_000_000})
	assert.InDelta(t, 100.0, good.Score, 1e-9)
	assert.Equal(t, "good", good.Status)

	// Above the band but below 1.5x: 3.0 against max 2.5.
	fair := GradeSession(session.Session{Model: "glm-4", Cost: 3, TotalTokens: 1_000_000})
	assert.InDelta(t, 85.0, fair.Score, 1e-9)
	assert.Equal(t, "fair", fair.Status)

	// Far above the band: 10.0 against max 2.5.
	poor := GradeSession(session.Session{Model: "glm-4", Cost: 10, TotalTokens: 1_000_000})
	assert.InDelta(t, 70.0, poor.Score, 1e-9)
	assert.Equal(t, "poor", poor.Status)
	assert.Contains(t, poor.Issues, "Very high cost per token")

	// Large input with no cache reads loses another 20.
	uncached := GradeSession(session.Session{Model: "glm-4", Cost: 2, TotalTokens: 1_000_000, InputTokens: 50_000})
	assert.InDelta(t, 80.0, uncached.Score, 1e-9)
	assert.Equal(t, "fair", uncached.Status)

	// Unknown models fall back to the generic band.
	unknown := GradeSession(session.Session{Model: "mystery", Cost: 25, TotalTokens: 1_000_000})
	assert.Equal(t, "fair", unknown.Status)
}

func TestGradeSessionScoreFloor(t *testing.T) {
	s := session.Session{
		Model:       "glm-4",
		Cost:        1000,
		TotalTokens: 60_000_000,
		InputTokens: 40_000_000,
	}
	eff := GradeSession(s)
	assert.GreaterOrEqual(t, eff.Score, 0.0)
	assert.Equal(t, "poor", eff.Status)
}

func TestSessionWarningsAndRecommendations(t *testing.T) {
	s := session.Session{
		ID:           "heavy",
		Model:        "glm-4",
		Cost:         60,
		TotalTokens:  60_000_000,
		InputTokens:  40_000_000,
		ActiveTimeMs: 4_000_000,
	}

	ranked := TopByCost([]session.Session{s}, 1)
	require.Len(t, ranked, 1)

	assert.Contains(t, ranked[0].Warnings, "Very expensive session")
	assert.Contains(t, ranked[0].Warnings, "Very high token usage")
	assert.Contains(t, ranked[0].Warnings, "Very long duration (possibly stuck)")
	assert.Contains(t, ranked[0].Recommendations, "Consider breaking this into smaller sessions")
	assert.Contains(t, ranked[0].Recommendations, "Enable prompt caching to reduce costs")
}

func TestSummaryStats(t *testing.T) {
	ranked := TopByCost([]session.Session{
		{ID: "a", Cost: 10, TotalTokens: 1000},
		{ID: "b", Cost: 30, TotalTokens: 3000},
	}, 10)

	sum := SummaryStats(ranked)
	assert.InDelta(t, 40.0, sum.TotalCost, 1e-9)
	assert.EqualValues(t, 4000, sum.TotalTokens)
	assert.InDelta(t, 20.0, sum.AvgCost, 1e-9)
	assert.InDelta(t, 20.0, sum.CostStats.Mean, 1e-9)
	assert.InDelta(t, 30.0, sum.CostStats.Max, 1e-9)

	assert.Equal(t, RankSummary{}, SummaryStats(nil))
}
