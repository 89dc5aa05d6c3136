package recordstore

import (
	"context"
	"fmt"
)

// Get is a point lookup. Absence is not an error; it yields found=false.
func (s *Store) Get(ctx context.Context, collection, id string) (Record, bool, error) {
	if err := s.initialized(); err != nil {
		return nil, false, err
	}
	spec, err := s.spec(collection)
	if err != nil {
		return nil, false, err
	}

	var data []byte
	err = s.db.QueryRowContext(ctx,
		`SELECT data FROM records WHERE collection = ? AND id = ?`,
		spec.Name, id,
	).Scan(&data)
	if err != nil {
		if isNoRows(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get %s/%s: %w", spec.Name, id, err)
	}

	rec, err := spec.Decode(data)
	if err != nil {
		return nil, false, fmt.Errorf("decode %s/%s: %w", spec.Name, id, err)
	}
	return rec, true, nil
}

// GetAll is a full scan in id order. Integrity checks, backups and index
// fallbacks use it; everyday reads should prefer an index.
func (s *Store) GetAll(ctx context.Context, collection string) ([]Record, error) {
	if err := s.initialized(); err != nil {
		return nil, err
	}
	spec, err := s.spec(collection)
	if err != nil {
		return nil, err
	}

	return s.scan(ctx, spec,
		`SELECT data FROM records WHERE collection = ? ORDER BY id`, spec.Name)
}

// QueryByIndex returns every record whose indexed field equals value; for
// multi-valued fields a record matches when any element equals value. When
// the declared index is absent or stale the query falls back to a full scan
// with an in-memory filter -- schema upgrades can leave installed copies
// without a given index, so the fallback is normal behavior, not an edge
// case.
func (s *Store) QueryByIndex(ctx context.Context, collection, index, value string) ([]Record, error) {
	if err := s.initialized(); err != nil {
		return nil, err
	}
	spec, err := s.spec(collection)
	if err != nil {
		return nil, err
	}
	idx, ok := spec.index(index)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownIndex, collection, index)
	}

	if !s.indexReady(spec.Name, idx.Name) {
		s.logger.DebugContext(ctx, "index unavailable, scanning",
			"collection", spec.Name, "index", idx.Name)
		return s.scanAndFilter(ctx, spec, idx, value)
	}

	return s.scan(ctx, spec,
		`SELECT r.data FROM records r
		 JOIN index_entries e ON e.collection = r.collection AND e.record_id = r.id
		 WHERE e.collection = ? AND e.idx = ? AND e.value = ?
		 ORDER BY r.id`,
		spec.Name, idx.Name, value)
}

func (s *Store) scanAndFilter(ctx context.Context, spec CollectionSpec, idx IndexSpec, value string) ([]Record, error) {
	all, err := s.scan(ctx, spec,
		`SELECT data FROM records WHERE collection = ? ORDER BY id`, spec.Name)
	if err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(all))
	for _, rec := range all {
		for _, key := range idx.Keys(rec) {
			if key == value {
				out = append(out, rec)
				break
			}
		}
	}
	return out, nil
}

func (s *Store) scan(ctx context.Context, spec CollectionSpec, query string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", spec.Name, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", spec.Name, err)
		}
		rec, err := spec.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s record: %w", spec.Name, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", spec.Name, err)
	}

	return out, nil
}

// Counts reports the number of records per collection, including empty
// collections from the catalog.
func (s *Store) Counts(ctx context.Context) (map[string]int, error) {
	if err := s.initialized(); err != nil {
		return nil, err
	}

	out := make(map[string]int, len(s.specs))
	for name := range s.specs {
		out[name] = 0
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT collection, COUNT(*) FROM records GROUP BY collection`)
	if err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var collection string
		var n int
		if err := rows.Scan(&collection, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out[collection] = n
	}
	return out, rows.Err()
}
