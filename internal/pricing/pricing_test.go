package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blackwell-systems/droidusage/internal/session"
)

func TestSessionCost(t *testing.T) {
	calc := NewCalculator(Default())

	s := session.Session{
		Provider:            "zhipuai",
		Model:               "glm-4.6",
		InputTokens:         1_000_000,
		OutputTokens:        500_000,
		CacheReadTokens:     100_000,
		CacheCreationTokens: 50_000,
	}
	// 1.0*0.5 + 0.5*2.5 + 0.1*0.05 + 0.05*0.25
	assert.InDelta(t, 1.7675, calc.SessionCost(s), 1e-9)

	s = session.Session{
		Provider:            "openai",
		Model:               "gpt-5-codex",
		InputTokens:         2_000_000,
		OutputTokens:        1_000_000,
		CacheReadTokens:     200_000,
		CacheCreationTokens: 100_000,
	}
	// 2*5 + 1*15 + 0.2*0.25 + 0.1*2.5
	assert.InDelta(t, 25.30, calc.SessionCost(s), 1e-9)
}

func TestSessionCostLinearity(t *testing.T) {
	calc := NewCalculator(Default())

	s := session.Session{Provider: "zhipuai", Model: "glm-4.6", InputTokens: 100_000, OutputTokens: 40_000}
	double := s
	double.InputTokens *= 2
	double.OutputTokens *= 2

	assert.InDelta(t, 2*calc.SessionCost(s), calc.SessionCost(double), 1e-9)
}

func TestSessionCostUnknownIsZero(t *testing.T) {
	calc := NewCalculator(Default())

	unknownProvider := session.Session{Provider: "nobody", Model: "glm-4.6", InputTokens: 1_000_000}
	assert.Zero(t, calc.SessionCost(unknownProvider))

	unknownModel := session.Session{Provider: "zhipuai", Model: "glm-99", InputTokens: 1_000_000}
	assert.Zero(t, calc.SessionCost(unknownModel))
}

func TestProviderAliases(t *testing.T) {
	calc := NewCalculator(Default())

	s := session.Session{Model: "glm-4.6", InputTokens: 1_000_000, OutputTokens: 200_000}
	want := func(provider string) float64 {
		s.Provider = provider
		return calc.SessionCost(s)
	}

	// zhipuai and zai are the same backend; fireworks and the generic
	// OpenAI-compatible route carry the same GLM rates.
	zhipu := want("zhipuai")
	assert.Greater(t, zhipu, 0.0)
	assert.Equal(t, zhipu, want("zai"))
	assert.Equal(t, zhipu, want("fireworks"))
	assert.Equal(t, zhipu, want("generic-chat-completion-api"))
}

func TestAnnotate(t *testing.T) {
	calc := NewCalculator(Default())

	sessions := []session.Session{
		{Provider: "zhipuai", Model: "glm-4.6", InputTokens: 1_000_000, OutputTokens: 500_000},
		{Provider: "nobody", Model: "mystery", InputTokens: 100, CacheReadTokens: 50},
	}
	annotated := calc.Annotate(sessions)

	assert.InDelta(t, 1.75, annotated[0].Cost, 1e-9)
	assert.EqualValues(t, 1_500_000, annotated[0].TotalTokens)

	assert.Zero(t, annotated[1].Cost)
	assert.EqualValues(t, 150, annotated[1].TotalTokens, "totals attach even when cost is unknown")
}
