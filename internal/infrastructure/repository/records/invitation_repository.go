package records

import (
	"context"
	"fmt"

	"github.com/clubkit/clubkit/internal/domain/invitation"
	"github.com/clubkit/clubkit/internal/recordstore"
)

type InvitationRepository struct {
	store *recordstore.Store
}

func NewInvitationRepository(store *recordstore.Store) *InvitationRepository {
	return &InvitationRepository{store: store}
}

func (r *InvitationRepository) List(ctx context.Context) ([]invitation.Invitation, error) {
	recs, err := r.store.GetAll(ctx, recordstore.CollectionInvitations)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return asTyped[invitation.Invitation](recs)
}

func (r *InvitationRepository) GetByID(ctx context.Context, invitationID string) (invitation.Invitation, bool, error) {
	rec, found, err := r.store.Get(ctx, recordstore.CollectionInvitations, invitationID)
	if err != nil {
		return invitation.Invitation{}, false, fmt.Errorf("get invitation by id: %w", err)
	}
	if !found {
		return invitation.Invitation{}, false, nil
	}

	i, ok := rec.(invitation.Invitation)
	if !ok {
		return invitation.Invitation{}, false, fmt.Errorf("unexpected record type %T", rec)
	}
	return i, true, nil
}

func (r *InvitationRepository) ListByGroup(ctx context.Context, groupID string) ([]invitation.Invitation, error) {
	recs, err := r.store.QueryByIndex(ctx,
		recordstore.CollectionInvitations, recordstore.IndexInvitationsByGroup, groupID)
	if err != nil {
		return nil, fmt.Errorf("list invitations by group: %w", err)
	}
	return asTyped[invitation.Invitation](recs)
}

func (r *InvitationRepository) Put(ctx context.Context, i invitation.Invitation) error {
	if err := r.store.Put(ctx, recordstore.CollectionInvitations, i); err != nil {
		return fmt.Errorf("put invitation: %w", err)
	}
	return nil
}

func (r *InvitationRepository) Delete(ctx context.Context, invitationID string) error {
	if err := r.store.Delete(ctx, recordstore.CollectionInvitations, invitationID); err != nil {
		return fmt.Errorf("delete invitation: %w", err)
	}
	return nil
}
