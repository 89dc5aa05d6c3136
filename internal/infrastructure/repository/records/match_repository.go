package records

import (
	"context"
	"fmt"

	"github.com/clubkit/clubkit/internal/domain/match"
	"github.com/clubkit/clubkit/internal/recordstore"
)

type MatchRepository struct {
	store *recordstore.Store
}

func NewMatchRepository(store *recordstore.Store) *MatchRepository {
	return &MatchRepository{store: store}
}

func (r *MatchRepository) List(ctx context.Context) ([]match.Match, error) {
	recs, err := r.store.GetAll(ctx, recordstore.CollectionMatches)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return asTyped[match.Match](recs)
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	rec, found, err := r.store.Get(ctx, recordstore.CollectionMatches, matchID)
	if err != nil {
		return match.Match{}, false, fmt.Errorf("get match by id: %w", err)
	}
	if !found {
		return match.Match{}, false, nil
	}

	m, ok := rec.(match.Match)
	if !ok {
		return match.Match{}, false, fmt.Errorf("unexpected record type %T", rec)
	}
	return m, true, nil
}

func (r *MatchRepository) ListByGroup(ctx context.Context, groupID string) ([]match.Match, error) {
	recs, err := r.store.QueryByIndex(ctx,
		recordstore.CollectionMatches, recordstore.IndexMatchesByGroup, groupID)
	if err != nil {
		return nil, fmt.Errorf("list matches by group: %w", err)
	}
	return asTyped[match.Match](recs)
}

func (r *MatchRepository) ListByStatus(ctx context.Context, status match.Status) ([]match.Match, error) {
	recs, err := r.store.QueryByIndex(ctx,
		recordstore.CollectionMatches, recordstore.IndexMatchesByStatus, string(status))
	if err != nil {
		return nil, fmt.Errorf("list matches by status: %w", err)
	}
	return asTyped[match.Match](recs)
}

func (r *MatchRepository) Put(ctx context.Context, m match.Match) error {
	if err := r.store.Put(ctx, recordstore.CollectionMatches, m); err != nil {
		return fmt.Errorf("put match: %w", err)
	}
	return nil
}

func (r *MatchRepository) Delete(ctx context.Context, matchID string) error {
	if err := r.store.Delete(ctx, recordstore.CollectionMatches, matchID); err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	return nil
}
