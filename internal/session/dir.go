package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	settingsSuffix   = ".settings.json"
	transcriptSuffix = ".jsonl"

	// sharedLogName is the append-only streaming log shared by all sessions.
	sharedLogName = "droid-log-single.log"
)

// Dir provides access to a Droid sessions directory and its sibling logs
// directory. All reads are plain file reads; Dir holds no state.
type Dir struct {
	sessionsDir string
	logsDir     string
}

// NewDir returns a Dir rooted at the given sessions directory. The shared
// log is expected in a "logs" directory next to it, matching the Droid
// data layout (~/.factory/sessions and ~/.factory/logs).
func NewDir(sessionsDir string) *Dir {
	return &Dir{
		sessionsDir: sessionsDir,
		logsDir:     filepath.Join(filepath.Dir(sessionsDir), "logs"),
	}
}

// NewDirWithLogs returns a Dir with an explicit logs directory, used when
// the config overrides the default layout.
func NewDirWithLogs(sessionsDir, logsDir string) *Dir {
	return &Dir{sessionsDir: sessionsDir, logsDir: logsDir}
}

// SessionsDir returns the sessions directory path.
func (d *Dir) SessionsDir() string { return d.sessionsDir }

// SharedLogPath returns the path of the shared streaming log.
func (d *Dir) SharedLogPath() string {
	return filepath.Join(d.logsDir, sharedLogName)
}

// ListSessionIDs enumerates session ids by stripping the settings suffix
// from matching filenames. An unreadable directory is a fatal error for
// the whole operation and is propagated to the caller.
func (d *Dir) ListSessionIDs() ([]string, error) {
	entries, err := os.ReadDir(d.sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("cannot read sessions directory %s: %w", d.sessionsDir, err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, settingsSuffix) {
			ids = append(ids, strings.TrimSuffix(name, settingsSuffix))
		}
	}
	return ids, nil
}

// ReadSettings loads and parses one session's settings snapshot.
// A missing, unreadable, or syntactically invalid file yields (nil, nil):
// the session is simply dropped from the result set by callers.
func (d *Dir) ReadSettings(id string) (*Settings, error) {
	path := filepath.Join(d.sessionsDir, id+settingsSuffix)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, nil
	}
	return &settings, nil
}

// TranscriptPath returns the path of a session's conversation transcript.
func (d *Dir) TranscriptPath(id string) string {
	return filepath.Join(d.sessionsDir, id+transcriptSuffix)
}
