// Package pricing holds the static per-model rate table and the session
// cost calculator.
package pricing

import "github.com/blackwell-systems/droidusage/internal/session"

// Rates holds per-million-token USD pricing for one model.
type Rates struct {
	Input      float64
	Output     float64
	CacheRead  float64
	CacheWrite float64
}

// Table maps provider → normalized model id → rates. It is an immutable
// configuration value: build one with Default and inject it into a
// Calculator, never mutate it at runtime.
type Table map[string]map[string]Rates

// glmRates is shared by every provider that routes GLM models. The zhipuai
// and zai providers are the same backend under two account routes, so they
// reference this one map instead of carrying duplicate entries.
var glmRates = map[string]Rates{
	"glm-4":        {Input: 0.5, Output: 2.5, CacheRead: 0.05, CacheWrite: 0.25},
	"glm-4.6":      {Input: 0.5, Output: 2.5, CacheRead: 0.05, CacheWrite: 0.25},
	"glm-4-custom": {Input: 0.5, Output: 2.5, CacheRead: 0.05, CacheWrite: 0.25},
}

var openaiRates = map[string]Rates{
	"gpt-4o":          {Input: 2.5, Output: 10.0, CacheRead: 0.125, CacheWrite: 2.5},
	"gpt-4o-mini":     {Input: 0.15, Output: 0.6, CacheRead: 0.075, CacheWrite: 0.3},
	"gpt-5-codex":     {Input: 5.0, Output: 15.0, CacheRead: 0.25, CacheWrite: 2.5},
	"gpt-5-2025-08-07": {Input: 7.5, Output: 22.5, CacheRead: 0.375, CacheWrite: 3.75},
}

// Default returns the current pricing snapshot. Rates are maintained by
// hand from published provider price lists; there is no versioning by date.
func Default() Table {
	// Fireworks routes both GLM and a subset of the OpenAI models.
	fireworks := make(map[string]Rates, len(glmRates)+3)
	for model, r := range glmRates {
		fireworks[model] = r
	}
	for _, model := range []string{"gpt-4o", "gpt-5-codex", "gpt-5-2025-08-07"} {
		fireworks[model] = openaiRates[model]
	}

	return Table{
		"anthropic": {
			"claude-3-5-sonnet-20241022": {Input: 3.0, Output: 15.0, CacheRead: 0.3, CacheWrite: 3.75},
			"claude-3-5-haiku-20241022":  {Input: 0.8, Output: 4.0, CacheRead: 0.08, CacheWrite: 1.0},
		},
		"openai":                      openaiRates,
		"zhipuai":                     glmRates,
		"zai":                         glmRates,
		"fireworks":                   fireworks,
		"generic-chat-completion-api": glmRates,
	}
}

// Calculator computes session costs against an injected pricing table.
type Calculator struct {
	table Table
}

// NewCalculator returns a Calculator over the given table.
func NewCalculator(table Table) Calculator {
	return Calculator{table: table}
}

// SessionCost returns the USD cost of a session. An unknown provider or
// model yields exactly 0; that is the expected steady state for new or
// custom models, not an error. The formula is applied to token counts
// as-is, including negative ones, and never rounds: rounding is a
// presentation concern.
func (c Calculator) SessionCost(s session.Session) float64 {
	models, ok := c.table[s.Provider]
	if !ok {
		return 0
	}
	rates, ok := models[s.Model]
	if !ok {
		return 0
	}

	return float64(s.InputTokens)/1e6*rates.Input +
		float64(s.OutputTokens)/1e6*rates.Output +
		float64(s.CacheReadTokens)/1e6*rates.CacheRead +
		float64(s.CacheCreationTokens)/1e6*rates.CacheWrite
}

// Annotate attaches the derived Cost and TotalTokens views to each session
// in place and returns the same slice for chaining.
func (c Calculator) Annotate(sessions []session.Session) []session.Session {
	for i := range sessions {
		sessions[i].Cost = c.SessionCost(sessions[i])
		sessions[i].TotalTokens = sessions[i].SumTokens()
	}
	return sessions
}
