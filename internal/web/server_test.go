package web

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/droidusage/internal/analyzer"
	"github.com/blackwell-systems/droidusage/internal/pricing"
	"github.com/blackwell-systems/droidusage/internal/report"
	"github.com/blackwell-systems/droidusage/internal/session"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	root := t.TempDir()
	sessionsDir := filepath.Join(root, "sessions")
	logsDir := filepath.Join(root, "logs")
	require.NoError(t, os.MkdirAll(sessionsDir, 0o755))
	require.NoError(t, os.MkdirAll(logsDir, 0o755))

	for i, ts := range []string{"2025-06-01T10:00:00Z", "2025-06-02T15:00:00Z"} {
		id := fmt.Sprintf("s%d", i+1)
		settings := fmt.Sprintf(`{
			"providerLock": "zhipuai",
			"providerLockTimestamp": "%s",
			"tokenUsage": {"inputTokens": 1000000, "outputTokens": 500000}
		}`, ts)
		require.NoError(t, os.WriteFile(filepath.Join(sessionsDir, id+".settings.json"), []byte(settings), 0o644))
	}
	log := `[2025-06-01T10:00:00Z] {"sessionId":"s1","modelId":"glm-4.6"}` + "\n" +
		`[2025-06-02T15:00:00Z] {"sessionId":"s2","modelId":"glm-4.6"}` + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(logsDir, "droid-log-single.log"), []byte(log), 0o644))

	dir := session.NewDir(sessionsDir)
	loader := session.NewLoader(dir, session.DefaultBatchSize)
	svc := report.NewService(loader, pricing.NewCalculator(pricing.Default()), analyzer.DefaultThresholds())
	return NewServer(svc, loader)
}

func get(t *testing.T, srv *Server, path string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "body: %s", rec.Body.String())
	return rec.Code, body
}

func TestHealth(t *testing.T) {
	code, body := get(t, newTestServer(t), "/api/health")
	assert.Equal(t, 200, code)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestDailyEndpoint(t *testing.T) {
	code, body := get(t, newTestServer(t), "/api/daily")
	assert.Equal(t, 200, code)
	assert.Equal(t, "daily", body["type"])

	data := body["data"].([]any)
	assert.Len(t, data, 2)

	summary := body["summary"].(map[string]any)
	assert.EqualValues(t, 2, summary["totalSessions"])
}

func TestDailyEndpointDateFilter(t *testing.T) {
	code, body := get(t, newTestServer(t), "/api/daily?since=2025-06-02&until=2025-06-02")
	assert.Equal(t, 200, code)
	data := body["data"].([]any)
	require.Len(t, data, 1)
	group := data[0].(map[string]any)
	assert.Equal(t, "2025-06-02", group["date"])
}

func TestTopEndpoint(t *testing.T) {
	code, body := get(t, newTestServer(t), "/api/top?by=tokens&limit=1")
	assert.Equal(t, 200, code)
	assert.Equal(t, "tokens", body["by"])
	assert.Len(t, body["data"].([]any), 1)
}

func TestTopEndpointBadCriterion(t *testing.T) {
	code, body := get(t, newTestServer(t), "/api/top?by=nope")
	assert.Equal(t, 500, code)
	assert.Contains(t, body["error"], "unknown ranking criterion")
}

func TestAnalyzeEndpointSelection(t *testing.T) {
	srv := newTestServer(t)

	code, body := get(t, srv, "/api/analyze/cost")
	assert.Equal(t, 200, code)
	ran := body["analyzersRun"].([]any)
	assert.Equal(t, []any{"cost"}, ran)

	code, body = get(t, srv, "/api/analyze")
	assert.Equal(t, 200, code)
	assert.Len(t, body["analyzersRun"].([]any), 3)
}

func TestModelAndProviderCatalog(t *testing.T) {
	srv := newTestServer(t)

	code, body := get(t, srv, "/api/models")
	assert.Equal(t, 200, code)
	assert.Equal(t, []any{"glm-4.6"}, body["models"].([]any))

	code, body = get(t, srv, "/api/providers")
	assert.Equal(t, 200, code)
	assert.Equal(t, []any{"zhipuai"}, body["providers"].([]any))
}
