package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 1

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means version 0 (fresh database).
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return nil
}

// migrateV1 creates the snapshot history tables.
func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS usage_snapshots (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			taken_at          TEXT NOT NULL,
			total_sessions    INTEGER NOT NULL,
			total_tokens      INTEGER NOT NULL,
			total_cost        REAL NOT NULL,
			total_active_ms   INTEGER NOT NULL,
			total_prompts     INTEGER NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_usage_snapshots_taken_at
			ON usage_snapshots(taken_at)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return err
		}
	}

	if _, err := db.conn.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err := db.conn.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion)
	return err
}
