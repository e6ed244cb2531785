package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/semaphore"

	"github.com/jgivens/appledocs-mcp/pkg/types"
)

// listSeparator delimits list-valued fields (conformance lists, platforms,
// attributes) inside a single TEXT column.
const listSeparator = "|"

// Store is the SQLite-backed document store. All exported methods serialize
// through an exclusive gate so only one logical operation touches the
// database at a time.
type Store struct {
	db   *sql.DB
	path string
	gate *semaphore.Weighted
	log  *slog.Logger
}

// NewStore opens (or creates) the index database at dbPath and brings its
// schema up to the current version. Pass ":memory:" for an ephemeral store.
func NewStore(dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating index directory: %w", err)
		}
	}

	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Single writer; SQLite performs best this way and the store is
	// serialized above the driver anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("applying %s: %w", pragma, err)
		}
	}

	s := &Store{
		db:   db,
		path: dbPath,
		gate: semaphore.NewWeighted(1),
		log:  logger,
	}

	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the database handle. The caller must ensure no operations
// are in flight.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// acquire takes the exclusive gate, failing fast when the store was never
// opened or the context is done.
func (s *Store) acquire(ctx context.Context) error {
	if s == nil || s.db == nil {
		return types.ErrNotReady
	}
	if err := s.gate.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("waiting for store: %w", err)
	}
	return nil
}

func (s *Store) release() {
	s.gate.Release(1)
}

// joinList serializes a list field for storage. Elements containing the
// separator are kept as-is; the separator never occurs in the identifiers
// these columns hold.
func joinList(items []string) string {
	return strings.Join(items, listSeparator)
}

// splitList parses a stored list field back into a slice.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, listSeparator)
}

// nullIfEmpty maps "" to NULL so optional columns stay NULL rather than
// accumulating empty strings.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
