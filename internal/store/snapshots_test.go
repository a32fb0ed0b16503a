package store

import (
	"path/filepath"
	"testing"

	"github.com/blackwell-systems/droidusage/internal/aggregate"
)

func TestSaveAndLoadSnapshot(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	defer db.Close()

	sum := aggregate.Summary{
		TotalSessions:   3,
		TotalTokens:     1500,
		TotalCost:       2.5,
		TotalActiveTime: 60000,
		TotalPrompts:    7,
	}

	id, err := db.SaveSnapshot(sum)
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero snapshot id")
	}

	latest, err := db.LatestSnapshot()
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if latest == nil {
		t.Fatal("expected a snapshot")
	}
	if latest.Summary != sum {
		t.Errorf("round trip mismatch: got %+v, want %+v", latest.Summary, sum)
	}
	if latest.TakenAt.IsZero() {
		t.Error("taken_at not recorded")
	}
}

func TestLatestSnapshotEmpty(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	defer db.Close()

	latest, err := db.LatestSnapshot()
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if latest != nil {
		t.Errorf("expected nil for empty database, got %+v", latest)
	}
}

func TestDelta(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	defer db.Close()

	// Fewer than two snapshots means no delta.
	delta, err := db.Delta()
	if err != nil {
		t.Fatalf("Delta: %v", err)
	}
	if delta != nil {
		t.Error("expected nil delta with no snapshots")
	}

	if _, err := db.SaveSnapshot(aggregate.Summary{TotalSessions: 10, TotalTokens: 1000, TotalCost: 5}); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if _, err := db.SaveSnapshot(aggregate.Summary{TotalSessions: 15, TotalTokens: 1800, TotalCost: 8, TotalPrompts: 4}); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	delta, err = db.Delta()
	if err != nil {
		t.Fatalf("Delta: %v", err)
	}
	if delta == nil {
		t.Fatal("expected a delta")
	}
	if delta.Sessions != 5 {
		t.Errorf("Sessions delta = %d, want 5", delta.Sessions)
	}
	if delta.Tokens != 800 {
		t.Errorf("Tokens delta = %d, want 800", delta.Tokens)
	}
	if diff := delta.Cost - 3.0; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Cost delta = %f, want 3", delta.Cost)
	}
}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "usage.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if _, err := db.SaveSnapshot(aggregate.Summary{TotalSessions: 1}); err != nil {
		t.Errorf("SaveSnapshot on fresh file db: %v", err)
	}
}
