package recordstore

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
)

type pendingWrite struct {
	id   string
	data []byte
	rec  Record
}

func (s *Store) prepareWrite(spec CollectionSpec, rec Record) (pendingWrite, error) {
	if rec == nil {
		return pendingWrite{}, fmt.Errorf("%w: nil record", ErrInvalidRecord)
	}
	id := rec.RecordID()
	if id == "" {
		return pendingWrite{}, fmt.Errorf("%w: empty id in %s", ErrInvalidRecord, spec.Name)
	}
	if v, ok := rec.(validatable); ok {
		if err := v.Validate(); err != nil {
			return pendingWrite{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
	}

	data, err := sonic.Marshal(rec)
	if err != nil {
		return pendingWrite{}, fmt.Errorf("marshal %s/%s: %w", spec.Name, id, err)
	}

	return pendingWrite{id: id, data: data, rec: rec}, nil
}

// Put inserts or replaces one record. The record row and every declared
// index entry commit in a single transaction; no partial index update is
// ever observable.
func (s *Store) Put(ctx context.Context, collection string, rec Record) error {
	return s.PutBatch(ctx, collection, []Record{rec})
}

// PutBatch extends Put's atomicity across the whole batch: either every
// record lands with its indexes updated, or the store is left exactly as it
// was before the call.
func (s *Store) PutBatch(ctx context.Context, collection string, records []Record) error {
	if err := s.initialized(); err != nil {
		return err
	}
	spec, err := s.spec(collection)
	if err != nil {
		return err
	}

	// Validate and encode everything before touching the database so a bad
	// record aborts the batch without a write.
	pending := make([]pendingWrite, 0, len(records))
	for _, rec := range records {
		p, err := s.prepareWrite(spec, rec)
		if err != nil {
			return err
		}
		pending = append(pending, p)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put batch: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UnixMilli()
	for _, p := range pending {
		if err := s.writeRecord(ctx, tx, spec, p, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit put batch: %w", err)
	}
	return nil
}

func (s *Store) writeRecord(ctx context.Context, tx *sqlx.Tx, spec CollectionSpec, p pendingWrite, now int64) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO records (collection, id, data, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		spec.Name, p.id, p.data, now,
	); err != nil {
		return fmt.Errorf("upsert %s/%s: %w", spec.Name, p.id, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM index_entries WHERE collection = ? AND record_id = ?`,
		spec.Name, p.id,
	); err != nil {
		return fmt.Errorf("clear index entries for %s/%s: %w", spec.Name, p.id, err)
	}

	for _, idx := range spec.Indexes {
		// Entries for a stale index would sit beside unbackfilled rows and
		// lie to readers; the next Open rebuilds the whole index instead.
		if !s.indexReady(spec.Name, idx.Name) {
			continue
		}
		for _, value := range idx.Keys(p.rec) {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO index_entries (collection, idx, value, record_id) VALUES (?, ?, ?, ?)`,
				spec.Name, idx.Name, value, p.id,
			); err != nil {
				return fmt.Errorf("index %s.%s for %s: %w", spec.Name, idx.Name, p.id, err)
			}
		}
	}

	return nil
}

// Delete removes a record and all of its index entries atomically. Missing
// ids are a no-op; referencing records are left untouched, there is no
// cascade.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := s.initialized(); err != nil {
		return err
	}
	spec, err := s.spec(collection)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM records WHERE collection = ? AND id = ?`, spec.Name, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", spec.Name, id, err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM index_entries WHERE collection = ? AND record_id = ?`, spec.Name, id); err != nil {
		return fmt.Errorf("delete index entries for %s/%s: %w", spec.Name, id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

// ClearAll empties every collection and every index in one transaction.
// Schema and index readiness survive; this is the restore engine's reset.
func (s *Store) ClearAll(ctx context.Context) error {
	if err := s.initialized(); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM index_entries`); err != nil {
		return fmt.Errorf("clear index entries: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clear: %w", err)
	}
	return nil
}
