package store

import (
	"fmt"

	"go.uber.org/zap"
)

// Schema versions:
// v1: search_history, reports, analytics tables
const currentSchemaVersion = 1

// migrations holds the SQL for each schema version, applied in order.
// Index i upgrades a database at version i to version i+1.
var migrations = []string{
	// v0 -> v1
	`CREATE TABLE IF NOT EXISTS search_history (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		text       TEXT NOT NULL,
		filters    TEXT NOT NULL DEFAULT '{}',
		category   TEXT NOT NULL DEFAULT '',
		priority   TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS reports (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		payload    TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reports_updated ON reports(updated_at);
	CREATE TABLE IF NOT EXISTS analytics (
		id      INTEGER PRIMARY KEY CHECK (id = 1),
		payload TEXT NOT NULL
	);`,
}

// migrate upgrades the schema to currentSchemaVersion using PRAGMA
// user_version as the version marker.
func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version >= currentSchemaVersion {
		return nil
	}

	for v := version; v < currentSchemaVersion; v++ {
		if _, err := s.db.Exec(migrations[v]); err != nil {
			return fmt.Errorf("failed to apply migration v%d: %w", v+1, err)
		}
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", v+1)); err != nil {
			return fmt.Errorf("failed to set schema version: %w", err)
		}
		s.log.Debug("applied schema migration", zap.Int("version", v+1))
	}
	return nil
}
