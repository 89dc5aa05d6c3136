package records

import (
	"context"
	"fmt"

	"github.com/clubkit/clubkit/internal/domain/group"
	"github.com/clubkit/clubkit/internal/recordstore"
)

type GroupRepository struct {
	store *recordstore.Store
}

func NewGroupRepository(store *recordstore.Store) *GroupRepository {
	return &GroupRepository{store: store}
}

func (r *GroupRepository) List(ctx context.Context) ([]group.Group, error) {
	recs, err := r.store.GetAll(ctx, recordstore.CollectionGroups)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return asTyped[group.Group](recs)
}

func (r *GroupRepository) GetByID(ctx context.Context, groupID string) (group.Group, bool, error) {
	rec, found, err := r.store.Get(ctx, recordstore.CollectionGroups, groupID)
	if err != nil {
		return group.Group{}, false, fmt.Errorf("get group by id: %w", err)
	}
	if !found {
		return group.Group{}, false, nil
	}

	g, ok := rec.(group.Group)
	if !ok {
		return group.Group{}, false, fmt.Errorf("unexpected record type %T", rec)
	}
	return g, true, nil
}

// GetByInviteCode resolves through the invite-code index; the store falls
// back to a scan when the index is unavailable on this installation.
func (r *GroupRepository) GetByInviteCode(ctx context.Context, inviteCode string) (group.Group, bool, error) {
	recs, err := r.store.QueryByIndex(ctx,
		recordstore.CollectionGroups, recordstore.IndexGroupsByInviteCode, inviteCode)
	if err != nil {
		return group.Group{}, false, fmt.Errorf("get group by invite code: %w", err)
	}
	if len(recs) == 0 {
		return group.Group{}, false, nil
	}

	g, ok := recs[0].(group.Group)
	if !ok {
		return group.Group{}, false, fmt.Errorf("unexpected record type %T", recs[0])
	}
	return g, true, nil
}

func (r *GroupRepository) ListByCreator(ctx context.Context, userID string) ([]group.Group, error) {
	recs, err := r.store.QueryByIndex(ctx,
		recordstore.CollectionGroups, recordstore.IndexGroupsByCreator, userID)
	if err != nil {
		return nil, fmt.Errorf("list groups by creator: %w", err)
	}
	return asTyped[group.Group](recs)
}

func (r *GroupRepository) Put(ctx context.Context, g group.Group) error {
	if err := r.store.Put(ctx, recordstore.CollectionGroups, g); err != nil {
		return fmt.Errorf("put group: %w", err)
	}
	return nil
}

func (r *GroupRepository) Delete(ctx context.Context, groupID string) error {
	if err := r.store.Delete(ctx, recordstore.CollectionGroups, groupID); err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return nil
}
