// Package records implements the domain repositories on top of the
// generic record store: one thin adapter per collection.
package records

import (
	"fmt"

	"github.com/clubkit/clubkit/internal/recordstore"
)

func asTyped[T any](in []recordstore.Record) ([]T, error) {
	out := make([]T, 0, len(in))
	for _, rec := range in {
		v, ok := rec.(T)
		if !ok {
			return nil, fmt.Errorf("unexpected record type %T", rec)
		}
		out = append(out, v)
	}
	return out, nil
}
