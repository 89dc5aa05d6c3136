package recordstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/clubkit/clubkit/internal/platform/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       BLOB NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (collection, id)
);

CREATE TABLE IF NOT EXISTS index_entries (
	collection TEXT NOT NULL,
	idx        TEXT NOT NULL,
	value      TEXT NOT NULL,
	record_id  TEXT NOT NULL,
	PRIMARY KEY (collection, idx, value, record_id)
);

CREATE INDEX IF NOT EXISTS ix_index_entries_lookup
	ON index_entries (collection, idx, value);

CREATE TABLE IF NOT EXISTS schema_info (
	id      INTEGER PRIMARY KEY CHECK (id = 1),
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS index_state (
	collection TEXT NOT NULL,
	idx        TEXT NOT NULL,
	status     TEXT NOT NULL,
	PRIMARY KEY (collection, idx)
);
`

const indexStatusReady = "ready"

// Store is the single owner of the backing database handle. Every other
// component reaches storage through it, never around it.
type Store struct {
	db     *sqlx.DB
	specs  map[string]CollectionSpec
	logger *logging.Logger

	mu    sync.RWMutex
	ready map[string]map[string]bool
}

// Open creates or opens the store at path and migrates it to schemaVersion.
// Safe to call repeatedly: migration is computed against the catalog and
// re-running it is a no-op. Access failures are marked ErrStoreUnavailable.
func Open(ctx context.Context, path string, schemaVersion int, logger *logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := otelsqlx.Open("sqlite3", path,
		otelsql.WithDBSystem("sqlite"),
		otelsql.WithDBName("clubkit"),
	)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "open database"), ErrStoreUnavailable)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Mark(errors.Wrap(err, "connect database"), ErrStoreUnavailable)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY under the single-logical-writer model.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, errors.Mark(err, ErrStoreUnavailable)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.Mark(errors.Wrap(err, "apply schema"), ErrStoreUnavailable)
	}

	specs := make(map[string]CollectionSpec)
	for _, spec := range Catalog() {
		specs[spec.Name] = spec
	}

	s := &Store{
		db:     db,
		specs:  specs,
		logger: logger,
	}

	if err := s.migrate(ctx, schemaVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate to version %d: %w", schemaVersion, err)
	}

	if err := s.loadIndexStates(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("load index states: %w", err)
	}

	return s, nil
}

func applyPragmas(ctx context.Context, db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return errors.Wrapf(err, "execute %q", pragma)
		}
	}

	return nil
}

// Close releases the database handle. Subsequent calls on the store return
// ErrNotInitialized.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) initialized() error {
	if s == nil || s.db == nil {
		return ErrNotInitialized
	}
	return nil
}

func (s *Store) spec(collection string) (CollectionSpec, error) {
	spec, ok := s.specs[collection]
	if !ok {
		return CollectionSpec{}, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	return spec, nil
}

func (s *Store) loadIndexStates(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT collection, idx, status FROM index_state`)
	if err != nil {
		return fmt.Errorf("select index states: %w", err)
	}
	defer rows.Close()

	ready := make(map[string]map[string]bool)
	for rows.Next() {
		var collection, idx, status string
		if err := rows.Scan(&collection, &idx, &status); err != nil {
			return fmt.Errorf("scan index state: %w", err)
		}
		if ready[collection] == nil {
			ready[collection] = make(map[string]bool)
		}
		ready[collection][idx] = status == indexStatusReady
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate index states: %w", err)
	}

	s.mu.Lock()
	s.ready = ready
	s.mu.Unlock()

	return nil
}

func (s *Store) indexReady(collection, index string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready[collection][index]
}

func (s *Store) setIndexReady(collection, index string, isReady bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready == nil {
		s.ready = make(map[string]map[string]bool)
	}
	if s.ready[collection] == nil {
		s.ready[collection] = make(map[string]bool)
	}
	s.ready[collection][index] = isReady
}

// InvalidateIndex marks a declared index as unavailable so reads fall back
// to full scans. The next Open rebuilds and re-enables it.
func (s *Store) InvalidateIndex(ctx context.Context, collection, index string) error {
	if err := s.initialized(); err != nil {
		return err
	}
	spec, err := s.spec(collection)
	if err != nil {
		return err
	}
	if _, ok := spec.index(index); !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownIndex, collection, index)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE index_state SET status = 'stale' WHERE collection = ? AND idx = ?`,
		collection, index,
	)
	if err != nil {
		return fmt.Errorf("mark index stale: %w", err)
	}
	s.setIndexReady(collection, index, false)

	return nil
}
