package recordstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// migration is one schema step. Steps only ever create what the catalog
// declares; recreate names the collections whose installed index set is
// structurally incompatible and must be rebuilt from empty. A collection
// not named here is never dropped.
type migration struct {
	description string
	recreate    []string
}

// Version history:
//
//	1 - initial catalog
//	2 - matches gained the byStatus index (backfilled, data kept)
//	3 - invitations index set restructured; collection recreated
var migrations = map[int]migration{
	2: {description: "add match status index"},
	3: {
		description: "rebuild invitations for group/status indexing",
		recreate:    []string{CollectionInvitations},
	},
}

func (s *Store) migrate(ctx context.Context, target int) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback()

	installed, err := installedVersion(ctx, tx)
	if err != nil {
		return err
	}

	if installed > target {
		// A newer application already touched this store. Leave the data
		// alone; declared indexes are still synced below.
		s.logger.Warn("store is ahead of requested schema version",
			"installed", installed, "requested", target)
	}

	for v := installed + 1; v <= target; v++ {
		step, ok := migrations[v]
		if !ok {
			continue
		}
		s.logger.Info("applying migration", "version", v, "description", step.description)
		for _, collection := range step.recreate {
			if _, known := s.specs[collection]; !known {
				return fmt.Errorf("%w: migration v%d recreates %s", ErrUnknownCollection, v, collection)
			}
			if err := recreateCollection(ctx, tx, collection); err != nil {
				return fmt.Errorf("recreate collection %s: %w", collection, err)
			}
		}
	}

	if err := s.syncIndexes(ctx, tx); err != nil {
		return err
	}

	if target > installed {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schema_info (id, version) VALUES (1, ?)
			 ON CONFLICT (id) DO UPDATE SET version = excluded.version`,
			target,
		); err != nil {
			return fmt.Errorf("write schema version: %w", err)
		}
	}

	return tx.Commit()
}

func installedVersion(ctx context.Context, tx *sqlx.Tx) (int, error) {
	var version int
	err := tx.QueryRowContext(ctx, `SELECT version FROM schema_info WHERE id = 1`).Scan(&version)
	if err == nil {
		return version, nil
	}
	if isNoRows(err) {
		return 0, nil
	}
	return 0, fmt.Errorf("read schema version: %w", err)
}

func recreateCollection(ctx context.Context, tx *sqlx.Tx, collection string) error {
	statements := []string{
		`DELETE FROM records WHERE collection = ?`,
		`DELETE FROM index_entries WHERE collection = ?`,
		`DELETE FROM index_state WHERE collection = ?`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, collection); err != nil {
			return err
		}
	}
	return nil
}

// syncIndexes reconciles the installed index set against the catalog:
// undeclared indexes are dropped, declared ones that are missing or stale
// are backfilled from the records table and marked ready.
func (s *Store) syncIndexes(ctx context.Context, tx *sqlx.Tx) error {
	for _, spec := range s.specs {
		declared := make(map[string]struct{}, len(spec.Indexes))
		for _, idx := range spec.Indexes {
			declared[idx.Name] = struct{}{}
		}

		installed, err := installedIndexes(ctx, tx, spec.Name)
		if err != nil {
			return err
		}

		for name := range installed {
			if _, ok := declared[name]; ok {
				continue
			}
			if err := dropIndex(ctx, tx, spec.Name, name); err != nil {
				return fmt.Errorf("drop index %s.%s: %w", spec.Name, name, err)
			}
		}

		for _, idx := range spec.Indexes {
			if installed[idx.Name] == indexStatusReady {
				continue
			}
			if err := s.backfillIndex(ctx, tx, spec, idx); err != nil {
				return fmt.Errorf("backfill index %s.%s: %w", spec.Name, idx.Name, err)
			}
		}
	}

	return nil
}

func installedIndexes(ctx context.Context, tx *sqlx.Tx, collection string) (map[string]string, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT idx, status FROM index_state WHERE collection = ?`, collection)
	if err != nil {
		return nil, fmt.Errorf("select installed indexes: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var idx, status string
		if err := rows.Scan(&idx, &status); err != nil {
			return nil, fmt.Errorf("scan installed index: %w", err)
		}
		out[idx] = status
	}
	return out, rows.Err()
}

func dropIndex(ctx context.Context, tx *sqlx.Tx, collection, index string) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM index_entries WHERE collection = ? AND idx = ?`, collection, index); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx,
		`DELETE FROM index_state WHERE collection = ? AND idx = ?`, collection, index)
	return err
}

func (s *Store) backfillIndex(ctx context.Context, tx *sqlx.Tx, spec CollectionSpec, idx IndexSpec) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM index_entries WHERE collection = ? AND idx = ?`, spec.Name, idx.Name); err != nil {
		return err
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id, data FROM records WHERE collection = ?`, spec.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	type entry struct {
		id    string
		value string
	}
	var entries []entry
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return err
		}
		rec, err := spec.Decode(data)
		if err != nil {
			return fmt.Errorf("decode record %s: %w", id, err)
		}
		for _, value := range idx.Keys(rec) {
			entries = append(entries, entry{id: id, value: value})
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, e := range entries {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO index_entries (collection, idx, value, record_id) VALUES (?, ?, ?, ?)`,
			spec.Name, idx.Name, e.value, e.id,
		); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO index_state (collection, idx, status) VALUES (?, ?, ?)
		 ON CONFLICT (collection, idx) DO UPDATE SET status = excluded.status`,
		spec.Name, idx.Name, indexStatusReady,
	)
	return err
}
