package records

import (
	"context"
	"fmt"

	"github.com/clubkit/clubkit/internal/domain/player"
	"github.com/clubkit/clubkit/internal/recordstore"
)

type PlayerRepository struct {
	store *recordstore.Store
}

func NewPlayerRepository(store *recordstore.Store) *PlayerRepository {
	return &PlayerRepository{store: store}
}

func (r *PlayerRepository) List(ctx context.Context) ([]player.Player, error) {
	recs, err := r.store.GetAll(ctx, recordstore.CollectionPlayers)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return asTyped[player.Player](recs)
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (player.Player, bool, error) {
	rec, found, err := r.store.Get(ctx, recordstore.CollectionPlayers, playerID)
	if err != nil {
		return player.Player{}, false, fmt.Errorf("get player by id: %w", err)
	}
	if !found {
		return player.Player{}, false, nil
	}

	p, ok := rec.(player.Player)
	if !ok {
		return player.Player{}, false, fmt.Errorf("unexpected record type %T", rec)
	}
	return p, true, nil
}

// ListByGroup matches on the multi-valued group index: a player belongs to
// the result when any of its group ids equals groupID.
func (r *PlayerRepository) ListByGroup(ctx context.Context, groupID string) ([]player.Player, error) {
	recs, err := r.store.QueryByIndex(ctx,
		recordstore.CollectionPlayers, recordstore.IndexPlayersByGroup, groupID)
	if err != nil {
		return nil, fmt.Errorf("list players by group: %w", err)
	}
	return asTyped[player.Player](recs)
}

func (r *PlayerRepository) Put(ctx context.Context, p player.Player) error {
	if err := r.store.Put(ctx, recordstore.CollectionPlayers, p); err != nil {
		return fmt.Errorf("put player: %w", err)
	}
	return nil
}

func (r *PlayerRepository) Delete(ctx context.Context, playerID string) error {
	if err := r.store.Delete(ctx, recordstore.CollectionPlayers, playerID); err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	return nil
}
