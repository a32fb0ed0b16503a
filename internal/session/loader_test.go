package session

import (
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAll(t *testing.T) {
	dir, sessionsDir, logsDir := testDir(t)

	for _, id := range []string{"s1", "s2", "s3"} {
		writeFile(t, filepath.Join(sessionsDir, id+".settings.json"),
			`{"providerLock": "zhipuai", "tokenUsage": {"inputTokens": 10, "outputTokens": 5}}`)
	}
	writeFile(t, filepath.Join(sessionsDir, "broken.settings.json"), "{not json")
	writeFile(t, filepath.Join(logsDir, "droid-log-single.log"),
		`[2025-06-01T10:00:00Z] {"sessionId":"s1","modelId":"glm-4.6","inputTokens":90}`+"\n")

	// Batch size 1 forces multiple batches.
	loader := NewLoader(dir, 1)
	sessions, err := loader.LoadAll(t.Context(), false)
	require.NoError(t, err)
	require.Len(t, sessions, 3, "corrupted settings drop the session, not the batch")

	ids := make([]string, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.ID)
	}
	sort.Strings(ids)
	assert.Equal(t, []string{"s1", "s2", "s3"}, ids)

	for _, s := range sessions {
		if s.ID == "s1" {
			assert.EqualValues(t, 90, s.InputTokens, "log index shared across batches")
			assert.Equal(t, "glm-4.6", s.Model)
		} else {
			assert.EqualValues(t, 10, s.InputTokens)
		}
	}
}

func TestLoadAllUnreadableDirectory(t *testing.T) {
	dir := NewDir(filepath.Join(t.TempDir(), "missing", "sessions"))
	loader := NewLoader(dir, DefaultBatchSize)

	_, err := loader.LoadAll(t.Context(), false)
	assert.Error(t, err)
}

func TestLoadNoIDs(t *testing.T) {
	dir, _, _ := testDir(t)
	loader := NewLoader(dir, DefaultBatchSize)

	sessions, err := loader.Load(t.Context(), nil, false)
	require.NoError(t, err)
	assert.Nil(t, sessions)
}

func TestNewLoaderBatchSizeFloor(t *testing.T) {
	dir, _, _ := testDir(t)
	loader := NewLoader(dir, 0)
	assert.Equal(t, DefaultBatchSize, loader.batchSize)
}
