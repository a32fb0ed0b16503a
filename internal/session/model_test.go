package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeModelName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"glm-4.6", "glm-4.6"},
		{"GLM-4.6", "glm-4.6"},
		{"custom:glm-4.6", "glm-4.6"},
		{"Custom:GLM-4.6", "glm-4.6"},
		{"custom:custom:glm-4.6", "glm-4.6"},
		{"custom:gpt-5-codex", "gpt-5-codex"},
		{"claude-3-5-sonnet-20241022", "claude-3-5-sonnet-20241022"},
	}
	for _, c := range cases {
		got := NormalizeModelName(c.in)
		assert.Equal(t, c.want, got, "input %q", c.in)
		assert.Equal(t, got, NormalizeModelName(got), "normalization is idempotent")
	}
}

func TestDefaultModelFor(t *testing.T) {
	assert.Equal(t, "claude-3-5-sonnet-20241022", DefaultModelFor(ProviderAnthropic))
	assert.Equal(t, "gpt-4o", DefaultModelFor(ProviderOpenAI))
	assert.Equal(t, "glm-4", DefaultModelFor(ProviderZhipuAI))
	assert.Equal(t, "glm-4", DefaultModelFor("zai"))
	assert.Equal(t, "glm-4", DefaultModelFor("fireworks"))
	assert.Equal(t, ProviderUnknown, DefaultModelFor("somebody-else"))
}

func TestInferProvider(t *testing.T) {
	assert.Equal(t, ProviderZhipuAI, InferProvider("glm-4.6"))
	assert.Equal(t, ProviderOpenAI, InferProvider("gpt-5-codex"))
	assert.Equal(t, ProviderAnthropic, InferProvider("claude-3-5-sonnet-20241022"))
	assert.Equal(t, "", InferProvider("mystery-model"))
}
