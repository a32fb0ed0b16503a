package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDir builds a Dir over a fresh sessions/logs layout.
func testDir(t *testing.T) (*Dir, string, string) {
	t.Helper()
	root := t.TempDir()
	sessionsDir := filepath.Join(root, "sessions")
	logsDir := filepath.Join(root, "logs")
	require.NoError(t, os.MkdirAll(sessionsDir, 0o755))
	require.NoError(t, os.MkdirAll(logsDir, 0o755))
	return NewDirWithLogs(sessionsDir, logsDir), sessionsDir, logsDir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestReadMergesLogAndSettings(t *testing.T) {
	dir, sessionsDir, _ := testDir(t)

	writeFile(t, filepath.Join(sessionsDir, "abc.settings.json"), `{
		"providerLock": "zhipuai",
		"providerLockTimestamp": "2025-06-01T10:00:00Z",
		"assistantActiveTimeMs": 45000,
		"tokenUsage": {
			"inputTokens": 100,
			"outputTokens": 50,
			"cacheCreationTokens": 10,
			"cacheReadTokens": 5,
			"thinkingTokens": 7
		}
	}`)

	index := LogIndex{
		"abc": {
			InputTokens:     150,
			OutputTokens:    40,
			CacheReadTokens: 20,
			ModelID:         "custom:GLM-4.6",
			FirstSeen:       time.Date(2025, 6, 1, 10, 5, 0, 0, time.UTC),
		},
	}

	sess, err := dir.Read("abc", index, false)
	require.NoError(t, err)
	require.NotNil(t, sess)

	// Per-field max of log and settings for the logged counters.
	assert.EqualValues(t, 150, sess.InputTokens)
	assert.EqualValues(t, 50, sess.OutputTokens)
	assert.EqualValues(t, 20, sess.CacheReadTokens)

	// Never logged; settings are the only source.
	assert.EqualValues(t, 10, sess.CacheCreationTokens)
	assert.EqualValues(t, 7, sess.ThinkingTokens)

	assert.EqualValues(t, 45000, sess.ActiveTimeMs)
	assert.Equal(t, "glm-4.6", sess.Model)
	assert.Equal(t, "zhipuai", sess.Provider)
	assert.Equal(t, index["abc"].FirstSeen, sess.Date)
	assert.EqualValues(t, 150+50+10+20, sess.SumTokens())
}

func TestReadWithoutLogFallsBackToSettings(t *testing.T) {
	dir, sessionsDir, _ := testDir(t)

	writeFile(t, filepath.Join(sessionsDir, "solo.settings.json"), `{
		"providerLock": "openai",
		"providerLockTimestamp": "2025-06-02T08:00:00Z",
		"tokenUsage": {"inputTokens": 200, "outputTokens": 80}
	}`)

	sess, err := dir.Read("solo", LogIndex{}, false)
	require.NoError(t, err)
	require.NotNil(t, sess)

	assert.EqualValues(t, 200, sess.InputTokens)
	assert.EqualValues(t, 80, sess.OutputTokens)
	assert.Equal(t, "gpt-4o", sess.Model, "provider default when nothing announces a model")
	assert.Equal(t, "openai", sess.Provider)
	assert.Equal(t, time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC), sess.Date)
}

func TestReadModelFromTranscript(t *testing.T) {
	dir, sessionsDir, _ := testDir(t)

	writeFile(t, filepath.Join(sessionsDir, "tr.settings.json"),
		`{"providerLock": "zhipuai", "tokenUsage": {"inputTokens": 1}}`)
	writeFile(t, filepath.Join(sessionsDir, "tr.jsonl"),
		`{"type":"message","timestamp":"2025-06-03T12:00:00Z","model":"glm-4.6","message":{"role":"assistant","content":[{"type":"text","text":"hi"}]}}`+"\n")

	sess, err := dir.Read("tr", LogIndex{}, false)
	require.NoError(t, err)
	require.NotNil(t, sess)

	assert.Equal(t, "glm-4.6", sess.Model)
	assert.Equal(t, time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC), sess.Date,
		"transcript timestamp used when the log has none")
}

func TestReadProviderInferredFromLogModel(t *testing.T) {
	dir, sessionsDir, _ := testDir(t)

	writeFile(t, filepath.Join(sessionsDir, "inf.settings.json"),
		`{"providerLock": "unknown", "tokenUsage": {"inputTokens": 1}}`)

	index := LogIndex{"inf": {ModelID: "gpt-5-codex"}}
	sess, err := dir.Read("inf", index, false)
	require.NoError(t, err)
	require.NotNil(t, sess)

	assert.Equal(t, "gpt-5-codex", sess.Model)
	assert.Equal(t, "openai", sess.Provider)
}

func TestReadMissingOrCorruptSettings(t *testing.T) {
	dir, sessionsDir, _ := testDir(t)

	sess, err := dir.Read("nope", LogIndex{}, false)
	assert.NoError(t, err)
	assert.Nil(t, sess)

	writeFile(t, filepath.Join(sessionsDir, "bad.settings.json"), "{not json")
	sess, err = dir.Read("bad", LogIndex{}, false)
	assert.NoError(t, err)
	assert.Nil(t, sess)
}

func TestCountUserPrompts(t *testing.T) {
	dir, sessionsDir, _ := testDir(t)

	writeFile(t, filepath.Join(sessionsDir, "p.settings.json"),
		`{"providerLock": "zhipuai", "tokenUsage": {"inputTokens": 1}}`)

	transcript := `{"type":"message","message":{"role":"user","content":[{"type":"text","text":"first question"}]}}
{"type":"message","message":{"role":"assistant","content":[{"type":"text","text":"answer"}]}}
{"type":"message","message":{"role":"user","content":[{"type":"text","text":"<system-reminder>injected</system-reminder>"}]}}
{"type":"message","message":{"role":"user","content":[{"type":"tool_result","text":""}]}}
not even json
{"type":"message","message":{"role":"user","content":[{"type":"text","text":"second question"}]}}
`
	writeFile(t, filepath.Join(sessionsDir, "p.jsonl"), transcript)

	sess, err := dir.Read("p", LogIndex{}, true)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, 2, sess.UserInteractions)

	// Skipped entirely when the view does not need prompt counts.
	sess, err = dir.Read("p", LogIndex{}, false)
	require.NoError(t, err)
	assert.Equal(t, 0, sess.UserInteractions)
}

func TestParseTimestamp(t *testing.T) {
	assert.True(t, ParseTimestamp("").IsZero())
	assert.True(t, ParseTimestamp("garbage").IsZero())
	assert.False(t, ParseTimestamp("2025-06-01T10:00:00Z").IsZero())
	assert.False(t, ParseTimestamp("2025-06-01T10:00:00.123456Z").IsZero())
	assert.False(t, ParseTimestamp("2025-06-01T10:00:00").IsZero())
}
