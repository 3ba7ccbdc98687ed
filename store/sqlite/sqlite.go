/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements the reference data interfaces (CourseStore, AuthorityStore)
  using SQLite. The server reads both datasets on startup; the preprocess
  command writes them.

INTERFACES IMPLEMENTED:
  generic.CourseStore:    Course catalogue
  generic.AuthorityStore: Postcode -> funding authority mapping

KEY TABLES:
  courses:              One row per learning aim, payload is the full course JSON
  postcode_authorities: Normalized postcode -> authority label

INDEXES:
  Refs and postcodes are primary keys. Course search folds case in Go
  (SQLite's lower() only handles ASCII), so titles are not indexed.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. Writes only happen at import time.

WAL MODE:
  File databases are opened with WAL (Write-Ahead Logging) so the server
  can read while an import runs:
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/funding.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  catalogue := courses.NewCatalogue(store)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - generic/store.go: Interface definitions
  - generic/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/funding-engine/generic"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ generic.CourseStore    = (*Store)(nil)
	_ generic.AuthorityStore = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Course catalogue
	CREATE TABLE IF NOT EXISTS courses (
		ref TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		level TEXT NOT NULL DEFAULT '',
		payload_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Postcode to funding authority (current entries only)
	CREATE TABLE IF NOT EXISTS postcode_authorities (
		postcode TEXT PRIMARY KEY,
		authority TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// COURSE STORE (generic.CourseStore interface)
// =============================================================================

// SaveCourse inserts or replaces a course by Ref.
func (s *Store) SaveCourse(ctx context.Context, rec generic.CourseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO courses (ref, title, level, payload_json, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(ref) DO UPDATE SET
			title = excluded.title,
			level = excluded.level,
			payload_json = excluded.payload_json,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.Ref,
		rec.Title,
		rec.Level,
		string(rec.Payload),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save course %s: %w", rec.Ref, err)
	}
	return nil
}

// GetCourse returns generic.ErrCourseNotFound when ref is unknown.
func (s *Store) GetCourse(ctx context.Context, ref string) (generic.CourseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rec generic.CourseRecord
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT ref, title, level, payload_json FROM courses WHERE ref = ?`, ref,
	).Scan(&rec.Ref, &rec.Title, &rec.Level, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return generic.CourseRecord{}, generic.ErrCourseNotFound
	}
	if err != nil {
		return generic.CourseRecord{}, fmt.Errorf("failed to get course %s: %w", ref, err)
	}
	rec.Payload = []byte(payload)
	return rec, nil
}

// ListCourses returns all courses ordered by Ref.
func (s *Store) ListCourses(ctx context.Context) ([]generic.CourseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryCourses(ctx, `SELECT ref, title, level, payload_json FROM courses ORDER BY ref`)
}

// SearchCourses matches term against ref and title as a literal substring,
// with Unicode case folding ("é" finds "École").
func (s *Store) SearchCourses(ctx context.Context, term string) ([]generic.CourseRecord, error) {
	if term == "" {
		return []generic.CourseRecord{}, nil
	}
	needle := strings.ToLower(term)

	s.mu.RLock()
	defer s.mu.RUnlock()

	all, err := s.queryCourses(ctx, `SELECT ref, title, level, payload_json FROM courses ORDER BY ref`)
	if err != nil {
		return nil, fmt.Errorf("failed to search courses: %w", err)
	}
	matches := []generic.CourseRecord{}
	for _, rec := range all {
		if strings.Contains(strings.ToLower(rec.Ref), needle) ||
			strings.Contains(strings.ToLower(rec.Title), needle) {
			matches = append(matches, rec)
		}
	}
	return matches, nil
}

func (s *Store) queryCourses(ctx context.Context, query string, args ...any) ([]generic.CourseRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []generic.CourseRecord{}
	for rows.Next() {
		var rec generic.CourseRecord
		var payload string
		if err := rows.Scan(&rec.Ref, &rec.Title, &rec.Level, &payload); err != nil {
			return nil, err
		}
		rec.Payload = []byte(payload)
		records = append(records, rec)
	}

	return records, rows.Err()
}

// =============================================================================
// AUTHORITY STORE (generic.AuthorityStore interface)
// =============================================================================

// SaveAuthorities upserts every entry in a single transaction.
func (s *Store) SaveAuthorities(ctx context.Context, entries map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	stmt, err := sqlTx.PrepareContext(ctx, `
		INSERT INTO postcode_authorities (postcode, authority, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(postcode) DO UPDATE SET
			authority = excluded.authority,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare authority insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for postcode, label := range entries {
		if _, err := stmt.ExecContext(ctx, postcode, label, now); err != nil {
			return fmt.Errorf("failed to save authority for %s: %w", postcode, err)
		}
	}

	return sqlTx.Commit()
}

// LookupAuthority reports a miss with ok=false.
func (s *Store) LookupAuthority(ctx context.Context, postcode string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var label string
	err := s.db.QueryRowContext(ctx,
		`SELECT authority FROM postcode_authorities WHERE postcode = ?`, postcode,
	).Scan(&label)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to look up postcode: %w", err)
	}
	return label, true, nil
}

// AllAuthorities returns the full mapping.
func (s *Store) AllAuthorities(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT postcode, authority FROM postcode_authorities`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var postcode, label string
		if err := rows.Scan(&postcode, &label); err != nil {
			return nil, err
		}
		out[postcode] = label
	}
	return out, rows.Err()
}

func (s *Store) CountAuthorities(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM postcode_authorities`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"courses", "postcode_authorities"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}
