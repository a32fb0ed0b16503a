package session

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchSize bounds how many session reads are in flight at once,
// which caps simultaneously open transcript handles.
const DefaultBatchSize = 50

// Loader drives Session reads across many ids in bounded concurrent
// batches, sharing one shared-log index across the whole invocation.
type Loader struct {
	dir       *Dir
	batchSize int
	verbose   bool
}

// NewLoader returns a Loader over dir. A batchSize of zero or less selects
// DefaultBatchSize.
func NewLoader(dir *Dir, batchSize int) *Loader {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Loader{dir: dir, batchSize: batchSize}
}

// SetVerbose enables per-session warning output for dropped sessions.
func (l *Loader) SetVerbose(v bool) { l.verbose = v }

// LoadAll lists every session id in the directory and loads them.
// An unreadable sessions directory is fatal and propagates.
func (l *Loader) LoadAll(ctx context.Context, countPrompts bool) ([]Session, error) {
	ids, err := l.dir.ListSessionIDs()
	if err != nil {
		return nil, err
	}
	return l.Load(ctx, ids, countPrompts)
}

// Load reads the given session ids in batches. The shared-log index is
// built exactly once and shared read-only by all batch workers; it goes
// out of scope when Load returns, so its memory is call-scoped. Sessions
// whose settings fail to parse are dropped. Result order is unspecified.
func (l *Loader) Load(ctx context.Context, ids []string, countPrompts bool) ([]Session, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	index := BuildLogIndex(l.dir.SharedLogPath())

	sessions := make([]Session, 0, len(ids))
	var mu sync.Mutex

	for start := 0; start < len(ids); start += l.batchSize {
		end := min(start+l.batchSize, len(ids))

		g, gctx := errgroup.WithContext(ctx)
		for _, id := range ids[start:end] {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}

				sess, err := l.dir.Read(id, index, countPrompts)
				if err != nil || sess == nil {
					l.warnf("could not parse session %s", id)
					return nil
				}

				mu.Lock()
				sessions = append(sessions, *sess)
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("loading sessions: %w", err)
		}
	}

	return sessions, nil
}

func (l *Loader) warnf(format string, args ...any) {
	if l.verbose {
		fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
	}
}
