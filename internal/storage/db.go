package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/samber/oops"
)

// Store owns the single on-disk knowledge database for the process lifetime.
// Reads run concurrently; writes serialize on the WAL writer lock and fail
// with a ContentionError after the 5s busy wait.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the database at path and applies the schema.
// The foreign_keys pragma is deliberately disabled (the driver turns it on
// by default): references from observations and relations to entities are
// soft.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, oops.Errorf("create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=cache_size(-64000)&_pragma=foreign_keys(0)")
	if err != nil {
		return nil, oops.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, oops.Errorf("ping db: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, oops.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Shutdown implements do.Shutdownable so the DI container closes the store
// on process exit.
func (s *Store) Shutdown() error {
	return s.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Execute runs a statement that returns no rows and reports the number of
// rows it affected.
func (s *Store) Execute(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapBusy(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

// FetchOne runs a query expected to yield at most one row. Absence is
// reported by the row's Scan returning sql.ErrNoRows.
func (s *Store) FetchOne(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, query, args...)
}

// FetchMany runs a query yielding any number of rows.
func (s *Store) FetchMany(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapBusy(err)
	}
	return rows, nil
}

// newID generates a globally unique opaque id: kind prefix, creation time in
// unix millis, and a random suffix. Never reused.
func newID(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), suffix)
}

// defaultScore applies the importance default of 50 when unspecified.
func defaultScore(score *int) int {
	if score == nil {
		return 50
	}
	return *score
}
