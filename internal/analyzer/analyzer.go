package analyzer

import (
	"errors"

	"github.com/blackwell-systems/droidusage/internal/session"
)

// ErrNoSessions is returned by every analyzer when the input population
// is empty.
var ErrNoSessions = errors.New("no sessions to analyze")

// Insight is a single observation an analyzer derives from its result.
type Insight struct {
	Type           string `json:"type"`
	Category       string `json:"category"`
	Message        string `json:"message"`
	Severity       string `json:"severity"`
	Recommendation string `json:"recommendation"`
}

// Recommendation is an actionable suggestion with an estimated payoff.
type Recommendation struct {
	Category         string `json:"category"`
	Priority         string `json:"priority"`
	Message          string `json:"message"`
	Action           string `json:"action"`
	EstimatedSavings string `json:"estimatedSavings"`
}

// Thresholds are the levels at which the cost and efficiency analyzers
// emit warnings and recommendations. Values come from configuration;
// DefaultThresholds supplies the stock levels.
type Thresholds struct {
	MonthlyBurnWarning    float64
	SessionCostWarning    float64
	CacheRatePercentFloor float64
	ProviderConcentration float64
}

// DefaultThresholds returns the stock warning levels.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MonthlyBurnWarning:    1000,
		SessionCostWarning:    10,
		CacheRatePercentFloor: 10,
		ProviderConcentration: 80,
	}
}

// Analyzer is the contract shared by the cost, pattern, and efficiency
// analyzers. Analyze expects cost-annotated sessions and rejects an empty
// population with ErrNoSessions. Insights derives observations from the
// result Analyze produced.
type Analyzer interface {
	Name() string
	Analyze(sessions []session.Session) (any, error)
	Insights(result any) []Insight
}

func validateSessions(sessions []session.Session) error {
	if len(sessions) == 0 {
		return ErrNoSessions
	}
	return nil
}
