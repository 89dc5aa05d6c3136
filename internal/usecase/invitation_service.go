package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/clubkit/clubkit/internal/domain/group"
	"github.com/clubkit/clubkit/internal/domain/invitation"
	idgen "github.com/clubkit/clubkit/internal/platform/id"
	"github.com/clubkit/clubkit/internal/recordstore"
	"github.com/clubkit/clubkit/internal/replicate"
)

// invitationLifetime bounds how long a recorded invite stays pending.
const invitationLifetime = 7 * 24 * time.Hour

type InviteInput struct {
	GroupID     string
	InvitedBy   string
	InviteeName string
}

// InvitationService keeps the bookkeeping trail of who was invited where.
// Joining itself never touches these records; a person can join from a
// share link that was never recorded here.
type InvitationService struct {
	invitationRepo invitation.Repository
	groupRepo      group.Repository
	idGen          idgen.Generator
	replicator     replicate.Replicator
	now            func() time.Time
}

func NewInvitationService(
	invitationRepo invitation.Repository,
	groupRepo group.Repository,
	idGen idgen.Generator,
	replicator replicate.Replicator,
) *InvitationService {
	if replicator == nil {
		replicator = replicate.Noop{}
	}
	return &InvitationService{
		invitationRepo: invitationRepo,
		groupRepo:      groupRepo,
		idGen:          idGen,
		replicator:     replicator,
		now:            time.Now,
	}
}

func (s *InvitationService) Invite(ctx context.Context, input InviteInput) (invitation.Invitation, error) {
	ctx, span := startUsecaseSpan(ctx, "InvitationService.Invite")
	defer span.End()

	input.GroupID = strings.TrimSpace(input.GroupID)
	input.InvitedBy = strings.TrimSpace(input.InvitedBy)
	if input.GroupID == "" {
		return invitation.Invitation{}, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}
	if input.InvitedBy == "" {
		return invitation.Invitation{}, fmt.Errorf("%w: inviter id is required", ErrInvalidInput)
	}

	g, exists, err := s.groupRepo.GetByID(ctx, input.GroupID)
	if err != nil {
		return invitation.Invitation{}, fmt.Errorf("get group by id: %w", err)
	}
	if !exists {
		return invitation.Invitation{}, fmt.Errorf("%w: group not found", ErrNotFound)
	}
	if !g.HasMember(input.InvitedBy) {
		return invitation.Invitation{}, fmt.Errorf("%w: only group members can invite", ErrUnauthorized)
	}

	invitationID, err := s.idGen.NewID()
	if err != nil {
		return invitation.Invitation{}, fmt.Errorf("generate invitation id: %w", err)
	}

	now := s.now().UTC()
	inv := invitation.Invitation{
		ID:          invitationID,
		GroupID:     input.GroupID,
		InvitedBy:   input.InvitedBy,
		InviteeName: strings.TrimSpace(input.InviteeName),
		Status:      invitation.StatusPending,
		CreatedAt:   now,
		ExpiresAt:   now.Add(invitationLifetime),
	}

	if err := s.invitationRepo.Put(ctx, inv); err != nil {
		return invitation.Invitation{}, fmt.Errorf("create invitation: %w", err)
	}
	s.replicator.Replicate(ctx, recordstore.CollectionInvitations, replicate.OpPut, inv.ID, inv)

	return inv, nil
}

// ListByGroup returns the group's invitations, lazily marking lapsed
// pending ones as expired on the way out.
func (s *InvitationService) ListByGroup(ctx context.Context, groupID string) ([]invitation.Invitation, error) {
	ctx, span := startUsecaseSpan(ctx, "InvitationService.ListByGroup")
	defer span.End()

	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return nil, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}

	invitations, err := s.invitationRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list invitations by group: %w", err)
	}

	now := s.now().UTC()
	for i, inv := range invitations {
		if inv.Status != invitation.StatusPending || !inv.ExpiredAt(now) {
			continue
		}
		inv.Status = invitation.StatusExpired
		if err := s.invitationRepo.Put(ctx, inv); err != nil {
			return nil, fmt.Errorf("expire invitation: %w", err)
		}
		s.replicator.Replicate(ctx, recordstore.CollectionInvitations, replicate.OpPut, inv.ID, inv)
		invitations[i] = inv
	}

	return invitations, nil
}

func (s *InvitationService) Revoke(ctx context.Context, invitationID string) (invitation.Invitation, error) {
	ctx, span := startUsecaseSpan(ctx, "InvitationService.Revoke")
	defer span.End()

	invitationID = strings.TrimSpace(invitationID)
	if invitationID == "" {
		return invitation.Invitation{}, fmt.Errorf("%w: invitation id is required", ErrInvalidInput)
	}

	inv, exists, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		return invitation.Invitation{}, fmt.Errorf("get invitation by id: %w", err)
	}
	if !exists {
		return invitation.Invitation{}, fmt.Errorf("%w: invitation not found", ErrNotFound)
	}
	if inv.Status != invitation.StatusPending {
		return invitation.Invitation{}, fmt.Errorf("%w: only pending invitations can be revoked", ErrInvalidInput)
	}

	inv.Status = invitation.StatusRevoked
	if err := s.invitationRepo.Put(ctx, inv); err != nil {
		return invitation.Invitation{}, fmt.Errorf("revoke invitation: %w", err)
	}
	s.replicator.Replicate(ctx, recordstore.CollectionInvitations, replicate.OpPut, inv.ID, inv)

	return inv, nil
}
