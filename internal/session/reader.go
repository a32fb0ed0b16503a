package session

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
	"time"
)

// systemReminderMarker flags injected system text inside user messages.
// Messages containing it are not genuine user prompts.
const systemReminderMarker = "<system-reminder>"

// Read reconstructs the canonical Session for one id by merging the
// settings snapshot with the shared-log facts in index. A nil result with
// a nil error means the settings file is missing or unparsable and the
// session should be dropped; the batch never aborts for one bad session.
//
// Precedence rules:
//   - input/output/cacheRead tokens: max(log, settings) per field. The log
//     captures streaming deltas and is the more granular source, but its
//     coverage can be partial, so a plain override would lose data.
//   - cacheCreation/thinking tokens: settings only (never logged).
//   - model: first log announcement, else transcript, else provider default.
//   - start time: first log timestamp, else transcript, else settings.
func (d *Dir) Read(id string, index LogIndex, countPrompts bool) (*Session, error) {
	settings, err := d.ReadSettings(id)
	if err != nil || settings == nil {
		return nil, err
	}

	usage := settings.TokenUsage
	sess := &Session{
		ID:                  id,
		InputTokens:         usage.InputTokens,
		OutputTokens:        usage.OutputTokens,
		CacheCreationTokens: usage.CacheCreationTokens,
		CacheReadTokens:     usage.CacheReadTokens,
		ThinkingTokens:      usage.ThinkingTokens,
		ActiveTimeMs:        settings.AssistantActiveTimeMs,
	}

	totals := index[id]
	if totals != nil {
		sess.InputTokens = max(totals.InputTokens, usage.InputTokens)
		sess.OutputTokens = max(totals.OutputTokens, usage.OutputTokens)
		sess.CacheReadTokens = max(totals.CacheReadTokens, usage.CacheReadTokens)
	}

	sess.Model = d.resolveModel(id, totals, settings.ProviderLock)
	sess.Provider = resolveProvider(settings.ProviderLock, totals, sess.Model)
	sess.Date = d.resolveStartTime(id, totals, settings.ProviderLockTimestamp)

	if countPrompts {
		sess.UserInteractions = d.countUserPrompts(id)
	}

	return sess, nil
}

// resolveModel picks the session model: the first model announced in the
// shared log wins, then the first model named in the transcript, then the
// provider's default model, then "unknown".
func (d *Dir) resolveModel(id string, totals *LogTotals, provider string) string {
	if totals != nil && totals.ModelID != "" {
		return NormalizeModelName(totals.ModelID)
	}
	if m := d.transcriptModel(id); m != "" {
		return NormalizeModelName(m)
	}
	return DefaultModelFor(provider)
}

// resolveProvider returns the provider for the session. The settings value
// is authoritative; inference from the log-resolved model name only fills
// an absent or "unknown" provider.
func resolveProvider(providerLock string, totals *LogTotals, model string) string {
	if providerLock != "" && providerLock != ProviderUnknown {
		return providerLock
	}
	if totals != nil && totals.ModelID != "" {
		if inferred := InferProvider(model); inferred != "" {
			return inferred
		}
	}
	if providerLock != "" {
		return providerLock
	}
	return ProviderUnknown
}

// resolveStartTime picks the session start: first log timestamp, else the
// first transcript timestamp, else the settings lock timestamp. Anything
// unparsable yields the zero time; undated sessions stay aggregable.
func (d *Dir) resolveStartTime(id string, totals *LogTotals, lockTimestamp string) time.Time {
	if totals != nil && !totals.FirstSeen.IsZero() {
		return totals.FirstSeen
	}
	if ts := d.transcriptStartTime(id); !ts.IsZero() {
		return ts
	}
	return ParseTimestamp(lockTimestamp)
}

// transcriptModel scans the transcript for the first entry that names a
// model. Invalid lines are skipped.
func (d *Dir) transcriptModel(id string) string {
	model := ""
	d.scanTranscript(id, func(entry *TranscriptEntry) bool {
		if entry.Model != "" {
			model = entry.Model
			return false
		}
		return true
	})
	return model
}

// transcriptStartTime returns the first parsable timestamp in the transcript.
func (d *Dir) transcriptStartTime(id string) time.Time {
	var ts time.Time
	d.scanTranscript(id, func(entry *TranscriptEntry) bool {
		if t := ParseTimestamp(entry.Timestamp); !t.IsZero() {
			ts = t
			return false
		}
		return true
	})
	return ts
}

// countUserPrompts counts genuine user text turns in the transcript:
// user-role messages with at least one text block that is not an injected
// system reminder. Tool results and reminder-only messages do not count.
// This is the most expensive part of a read and is skipped by views that
// do not report prompt counts.
func (d *Dir) countUserPrompts(id string) int {
	count := 0
	d.scanTranscript(id, func(entry *TranscriptEntry) bool {
		if entry.Type != "message" || entry.Message == nil || entry.Message.Role != "user" {
			return true
		}
		for _, block := range entry.Message.Content {
			if block.Type == "text" && block.Text != "" &&
				!strings.Contains(block.Text, systemReminderMarker) {
				count++
				break
			}
		}
		return true
	})
	return count
}

// scanTranscript streams the transcript line by line, invoking fn for each
// parsable entry until fn returns false. A missing or unreadable transcript
// is treated as "no additional data".
func (d *Dir) scanTranscript(id string, fn func(*TranscriptEntry) bool) {
	f, err := os.Open(d.TranscriptPath(id))
	if err != nil {
		return
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	for scanner.Scan() {
		var entry TranscriptEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		if !fn(&entry) {
			return
		}
	}
}
