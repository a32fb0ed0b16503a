package session

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"time"
)

// LogTotals accumulates the log-derived facts for one session: token sums
// across all of its log lines, the first model id announced, and the first
// timestamp seen.
type LogTotals struct {
	InputTokens     int64
	OutputTokens    int64
	CacheReadTokens int64
	ModelID         string
	FirstSeen       time.Time
}

// LogIndex maps session id to its accumulated log-derived facts. It is
// built once per batch-load invocation and shared read-only afterwards.
type LogIndex map[string]*LogTotals

// logLine is the JSON payload of a shared-log line. Lines carry arbitrary
// other fields; only these participate in session reconstruction.
type logLine struct {
	SessionID            string `json:"sessionId"`
	ModelID              string `json:"modelId"`
	InputTokens          int64  `json:"inputTokens"`
	OutputTokens         int64  `json:"outputTokens"`
	CacheReadInputTokens int64  `json:"cacheReadInputTokens"`
}

// BuildLogIndex parses the shared streaming log in a single pass and
// indexes its per-session token facts. Each line is independently attempted
// as `[timestamp] {json}`; lines that fail to parse, or that carry no
// session id, are skipped. A missing or unreadable log file yields an empty
// index, never an error: the log is an enrichment source, not a requirement.
//
// Numeric fields sum across all lines for a session id; the first non-empty
// modelId and the first bracket timestamp win.
func BuildLogIndex(path string) LogIndex {
	index := make(LogIndex)

	f, err := os.Open(path)
	if err != nil {
		return index
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		ts, payload := splitLogLine(line)
		if payload == nil {
			continue
		}

		var entry logLine
		if err := json.Unmarshal(payload, &entry); err != nil {
			continue
		}
		if entry.SessionID == "" {
			continue
		}

		totals, ok := index[entry.SessionID]
		if !ok {
			totals = &LogTotals{}
			index[entry.SessionID] = totals
		}

		totals.InputTokens += entry.InputTokens
		totals.OutputTokens += entry.OutputTokens
		totals.CacheReadTokens += entry.CacheReadInputTokens
		if totals.ModelID == "" && entry.ModelID != "" {
			totals.ModelID = entry.ModelID
		}
		if totals.FirstSeen.IsZero() && !ts.IsZero() {
			totals.FirstSeen = ts
		}
	}

	return index
}

// splitLogLine separates the optional `[timestamp]` prefix from the JSON
// payload of a shared-log line. Lines without a JSON object are skipped.
func splitLogLine(line []byte) (time.Time, []byte) {
	var ts time.Time

	if len(line) > 0 && line[0] == '[' {
		end := bytes.IndexByte(line, ']')
		if end > 0 {
			ts = ParseTimestamp(string(line[1:end]))
			line = bytes.TrimSpace(line[end+1:])
		}
	}

	start := bytes.IndexByte(line, '{')
	if start < 0 {
		return ts, nil
	}
	return ts, line[start:]
}
