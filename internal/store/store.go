// Package store persists search history, reports, and analytics counters
// in SQLite. Writes from the service layer are fire-and-forget through a
// single background worker: last write wins, and there is no transactional
// guarantee across the three slices.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"scout/internal/logging"
	"scout/internal/types"
)

// HistoryCap bounds the persisted query history, most-recent-first.
const HistoryCap = 100

// Store owns the SQLite database and the async write worker.
type Store struct {
	db     *sql.DB
	mu     sync.Mutex
	log    *zap.Logger
	dbPath string

	jobs chan func()
	wg   sync.WaitGroup
	once sync.Once
}

// Open initializes the database at path, applying pragmas and migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			logging.Named("store").Debug("pragma failed", zap.String("pragma", pragma), zap.Error(err))
		}
	}

	s := &Store{
		db:     db,
		log:    logging.Named("store"),
		dbPath: path,
		jobs:   make(chan func(), 64),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	s.wg.Add(1)
	go s.worker()
	return s, nil
}

// worker drains fire-and-forget writes until Close.
func (s *Store) worker() {
	defer s.wg.Done()
	for job := range s.jobs {
		job()
	}
}

// Async queues a write to run on the background worker. If the store is
// saturated the write runs inline rather than blocking the UI path.
func (s *Store) Async(job func()) {
	select {
	case s.jobs <- job:
	default:
		job()
	}
}

// Close drains pending writes and closes the database.
func (s *Store) Close() error {
	s.once.Do(func() {
		close(s.jobs)
	})
	s.wg.Wait()
	return s.db.Close()
}

// AppendQuery records a query at the head of history and trims to the cap.
func (s *Store) AppendQuery(q types.SearchQuery) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	filters, err := json.Marshal(q.Filters)
	if err != nil {
		return fmt.Errorf("failed to marshal filters: %w", err)
	}
	if _, err := s.db.Exec(
		`INSERT INTO search_history (text, filters, category, priority, created_at) VALUES (?, ?, ?, ?, ?)`,
		q.Text, string(filters), q.Category, q.Priority, q.Timestamp.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("failed to insert query: %w", err)
	}
	_, err = s.db.Exec(
		`DELETE FROM search_history WHERE id NOT IN (SELECT id FROM search_history ORDER BY id DESC LIMIT ?)`,
		HistoryCap,
	)
	if err != nil {
		return fmt.Errorf("failed to trim history: %w", err)
	}
	return nil
}

// History returns up to limit queries, most recent first. limit <= 0 means
// the full capped history.
func (s *Store) History(limit int) ([]types.SearchQuery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > HistoryCap {
		limit = HistoryCap
	}
	rows, err := s.db.Query(
		`SELECT text, filters, category, priority, created_at FROM search_history ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var out []types.SearchQuery
	for rows.Next() {
		var q types.SearchQuery
		var filters, createdAt string
		if err := rows.Scan(&q.Text, &filters, &q.Category, &q.Priority, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		if err := json.Unmarshal([]byte(filters), &q.Filters); err != nil {
			s.log.Debug("skipping malformed filters", zap.Error(err))
		}
		q.Timestamp, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, q)
	}
	return out, rows.Err()
}

// SaveReport upserts a report by ID.
func (s *Store) SaveReport(r types.SearchReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO reports (id, title, payload, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title = excluded.title, payload = excluded.payload, updated_at = excluded.updated_at`,
		r.ID, r.Title, string(payload),
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
		r.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// Reports returns all saved reports, newest first.
func (s *Store) Reports() ([]types.SearchReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT payload FROM reports ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var out []types.SearchReport
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		var r types.SearchReport
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			s.log.Warn("skipping malformed report payload", zap.Error(err))
			continue
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteReport removes a report by ID. Deleting a missing report is not
// an error.
func (s *Store) DeleteReport(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM reports WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return nil
}

// SaveAnalytics overwrites the single analytics row.
func (s *Store) SaveAnalytics(a types.Analytics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal analytics: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO analytics (id, payload) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET payload = excluded.payload`,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to save analytics: %w", err)
	}
	return nil
}

// LoadAnalytics returns the stored counters, or fresh zeroed counters when
// none were saved yet.
func (s *Store) LoadAnalytics() (types.Analytics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payload string
	err := s.db.QueryRow(`SELECT payload FROM analytics WHERE id = 1`).Scan(&payload)
	if err == sql.ErrNoRows {
		return types.NewAnalytics(), nil
	}
	if err != nil {
		return types.Analytics{}, fmt.Errorf("failed to load analytics: %w", err)
	}

	a := types.NewAnalytics()
	if err := json.Unmarshal([]byte(payload), &a); err != nil {
		return types.NewAnalytics(), nil
	}
	return a, nil
}

// ResetAnalytics zeroes the counters. This is the only non-monotonic path.
func (s *Store) ResetAnalytics() error {
	return s.SaveAnalytics(types.NewAnalytics())
}
