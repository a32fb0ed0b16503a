package session

import "strings"

// Providers recognized in settings snapshots. Anything else is "unknown".
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderZhipuAI   = "zhipuai"
	ProviderUnknown   = "unknown"
)

// defaultModels maps a provider to the model assumed when neither the
// shared log nor the transcript announces one.
var defaultModels = map[string]string{
	ProviderAnthropic: "claude-3-5-sonnet-20241022",
	ProviderOpenAI:    "gpt-4o",
	ProviderZhipuAI:   "glm-4",
	"zai":             "glm-4",
	"fireworks":       "glm-4",
}

// NormalizeModelName lowercases a model id and strips the "custom:"
// deployment prefix, including when it appears nested before a GLM name.
// Normalization is idempotent.
func NormalizeModelName(modelID string) string {
	name := strings.ToLower(modelID)
	name = strings.TrimPrefix(name, "custom:")
	name = strings.ReplaceAll(name, "custom:glm-", "glm-")
	return name
}

// DefaultModelFor returns the fallback model for a provider, or "unknown"
// when the provider has no configured default.
func DefaultModelFor(provider string) string {
	if m, ok := defaultModels[provider]; ok {
		return m
	}
	return ProviderUnknown
}

// InferProvider guesses a provider from a normalized model name. It is only
// consulted when the settings snapshot carries no explicit provider; an
// explicitly set provider is never overridden.
func InferProvider(model string) string {
	switch {
	case strings.Contains(model, "glm"):
		return ProviderZhipuAI
	case strings.Contains(model, "gpt"):
		return ProviderOpenAI
	case strings.Contains(model, "claude"):
		return ProviderAnthropic
	}
	return ""
}
