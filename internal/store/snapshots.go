package store

import (
	"database/sql"
	"time"

	"github.com/blackwell-systems/droidusage/internal/aggregate"
)

// Snapshot is one recorded usage summary.
type Snapshot struct {
	ID      int64             `json:"id"`
	TakenAt time.Time         `json:"takenAt"`
	Summary aggregate.Summary `json:"summary"`
}

// SnapshotDelta is the change between two snapshots.
type SnapshotDelta struct {
	Latest   Snapshot `json:"latest"`
	Previous Snapshot `json:"previous"`

	Sessions int     `json:"sessions"`
	Tokens   int64   `json:"tokens"`
	Cost     float64 `json:"cost"`
	Prompts  int     `json:"prompts"`
}

// SaveSnapshot records a usage summary and returns its ID.
func (db *DB) SaveSnapshot(sum aggregate.Summary) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO usage_snapshots
		(taken_at, total_sessions, total_tokens, total_cost, total_active_ms, total_prompts)
		VALUES (?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339),
		sum.TotalSessions, sum.TotalTokens, sum.TotalCost, sum.TotalActiveTime, sum.TotalPrompts,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// LatestSnapshot returns the most recent snapshot, or nil if none exist.
func (db *DB) LatestSnapshot() (*Snapshot, error) {
	return db.snapshotN(1)
}

// snapshotN returns the Nth most recent snapshot (1 = latest).
func (db *DB) snapshotN(n int) (*Snapshot, error) {
	row := db.conn.QueryRow(
		`SELECT id, taken_at, total_sessions, total_tokens, total_cost, total_active_ms, total_prompts
		FROM usage_snapshots ORDER BY id DESC LIMIT 1 OFFSET ?`,
		n-1,
	)
	return scanSnapshot(row)
}

func scanSnapshot(row *sql.Row) (*Snapshot, error) {
	var s Snapshot
	var takenAt string
	err := row.Scan(&s.ID, &takenAt,
		&s.Summary.TotalSessions, &s.Summary.TotalTokens, &s.Summary.TotalCost,
		&s.Summary.TotalActiveTime, &s.Summary.TotalPrompts)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.TakenAt, _ = time.Parse(time.RFC3339, takenAt)
	return &s, nil
}

// Delta compares the two most recent snapshots. It returns nil when fewer
// than two snapshots exist.
func (db *DB) Delta() (*SnapshotDelta, error) {
	latest, err := db.snapshotN(1)
	if err != nil {
		return nil, err
	}
	previous, err := db.snapshotN(2)
	if err != nil {
		return nil, err
	}
	if latest == nil || previous == nil {
		return nil, nil
	}

	return &SnapshotDelta{
		Latest:   *latest,
		Previous: *previous,
		Sessions: latest.Summary.TotalSessions - previous.Summary.TotalSessions,
		Tokens:   latest.Summary.TotalTokens - previous.Summary.TotalTokens,
		Cost:     latest.Summary.TotalCost - previous.Summary.TotalCost,
		Prompts:  latest.Summary.TotalPrompts - previous.Summary.TotalPrompts,
	}, nil
}
