// Package session reconstructs canonical Droid usage sessions from the
// on-disk sources: per-session settings snapshots, per-session conversation
// transcripts, and the shared streaming log.
package session

import "time"

// Session is the canonical, post-merge record for one interaction episode.
// It is constructed once by the reader and treated as immutable afterwards;
// Cost and TotalTokens are derived views attached by downstream consumers.
type Session struct {
	ID       string    `json:"id"`
	Date     time.Time `json:"date"`
	Model    string    `json:"model"`
	Provider string    `json:"provider"`

	InputTokens         int64 `json:"inputTokens"`
	OutputTokens        int64 `json:"outputTokens"`
	CacheCreationTokens int64 `json:"cacheCreationTokens"`
	CacheReadTokens     int64 `json:"cacheReadTokens"`
	ThinkingTokens      int64 `json:"thinkingTokens"`

	ActiveTimeMs     int64 `json:"activeTimeMs"`
	UserInteractions int   `json:"userInteractions"`

	// Derived fields, attached after construction.
	TotalTokens int64   `json:"totalTokens"`
	Cost        float64 `json:"cost"`
}

// HasDate reports whether a start time could be resolved for the session.
// Undated sessions are still aggregable under the "Unknown Date" bucket.
func (s *Session) HasDate() bool {
	return !s.Date.IsZero()
}

// SumTokens returns input+output+cacheCreation+cacheRead. Thinking tokens
// are tracked but not part of the billed total.
func (s *Session) SumTokens() int64 {
	return s.InputTokens + s.OutputTokens + s.CacheCreationTokens + s.CacheReadTokens
}

// Settings is the per-session settings snapshot (<id>.settings.json).
type Settings struct {
	ProviderLock          string     `json:"providerLock"`
	ProviderLockTimestamp string     `json:"providerLockTimestamp"`
	AssistantActiveTimeMs int64      `json:"assistantActiveTimeMs"`
	TokenUsage            TokenUsage `json:"tokenUsage"`
}

// TokenUsage holds the token counters recorded in a settings snapshot.
// Absent fields unmarshal to zero, which is the documented default.
type TokenUsage struct {
	InputTokens         int64 `json:"inputTokens"`
	OutputTokens        int64 `json:"outputTokens"`
	CacheCreationTokens int64 `json:"cacheCreationTokens"`
	CacheReadTokens     int64 `json:"cacheReadTokens"`
	ThinkingTokens      int64 `json:"thinkingTokens"`
}

// TranscriptEntry is the top-level structure of one transcript JSONL line.
type TranscriptEntry struct {
	Type      string             `json:"type"`
	Timestamp string             `json:"timestamp"`
	Model     string             `json:"model"`
	Message   *TranscriptMessage `json:"message"`
}

// TranscriptMessage is the message payload of a transcript entry.
type TranscriptMessage struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// ContentBlock is a single content block inside a transcript message.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ParseTimestamp parses an ISO 8601 timestamp string. It tries RFC3339Nano,
// RFC3339, and a plain datetime format without timezone. Returns the zero
// time if the string is empty or cannot be parsed by any supported format.
func ParseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			t, err = time.Parse("2006-01-02T15:04:05", s)
			if err != nil {
				return time.Time{}
			}
		}
	}
	return t
}
