package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/clubkit/clubkit/internal/domain/group"
	"github.com/clubkit/clubkit/internal/domain/user"
	"github.com/clubkit/clubkit/internal/invite"
	"github.com/clubkit/clubkit/internal/recordstore"
	"github.com/clubkit/clubkit/internal/replicate"
)

type JoinByTokenInput struct {
	UserID string
	Token  string
}

type JoinByCodeInput struct {
	UserID     string
	InviteCode string
}

// JoinResult reports the group joined and whether this call changed
// anything. Joining a group twice is a no-op, not an error.
type JoinResult struct {
	Group         group.Group
	AlreadyMember bool
}

// JoinService turns share links into memberships.
type JoinService struct {
	userRepo   user.Repository
	groupRepo  group.Repository
	codec      *invite.Codec
	resolver   *invite.Resolver
	replicator replicate.Replicator
	now        func() time.Time
}

func NewJoinService(
	userRepo user.Repository,
	groupRepo group.Repository,
	codec *invite.Codec,
	resolver *invite.Resolver,
	replicator replicate.Replicator,
) *JoinService {
	if replicator == nil {
		replicator = replicate.Noop{}
	}
	return &JoinService{
		userRepo:   userRepo,
		groupRepo:  groupRepo,
		codec:      codec,
		resolver:   resolver,
		replicator: replicator,
		now:        time.Now,
	}
}

// JoinByToken decodes a share token, resolves its group and adds the user
// as a member. Expiry and the code equality check both happen here, on
// every call.
func (s *JoinService) JoinByToken(ctx context.Context, input JoinByTokenInput) (JoinResult, error) {
	ctx, span := startUsecaseSpan(ctx, "JoinService.JoinByToken")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	if input.UserID == "" {
		return JoinResult{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.Token) == "" {
		return JoinResult{}, fmt.Errorf("%w: token is required", ErrInvalidInput)
	}

	u, err := s.requireUser(ctx, input.UserID)
	if err != nil {
		return JoinResult{}, err
	}

	token, err := s.codec.Decode(input.Token)
	if err != nil {
		// ErrMalformed and ErrExpired pass through for the transport layer
		// to classify.
		return JoinResult{}, err
	}

	g, found, err := s.resolver.ResolveGroup(ctx, token.GroupID, token.InviteCode)
	if err != nil {
		return JoinResult{}, err
	}
	if !found {
		return JoinResult{}, fmt.Errorf("%w: group not found for this invite", ErrNotFound)
	}

	return s.join(ctx, g, u)
}

// JoinByCode is the hand-typed fallback: no token, no expiry, just the
// group's live code.
func (s *JoinService) JoinByCode(ctx context.Context, input JoinByCodeInput) (JoinResult, error) {
	ctx, span := startUsecaseSpan(ctx, "JoinService.JoinByCode")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.InviteCode = invite.NormalizeCode(input.InviteCode)
	if input.UserID == "" {
		return JoinResult{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.InviteCode == "" {
		return JoinResult{}, fmt.Errorf("%w: invite code is required", ErrInvalidInput)
	}

	u, err := s.requireUser(ctx, input.UserID)
	if err != nil {
		return JoinResult{}, err
	}

	g, found, err := s.resolver.ResolveGroup(ctx, "", input.InviteCode)
	if err != nil {
		return JoinResult{}, err
	}
	if !found {
		return JoinResult{}, fmt.Errorf("%w: no group with this invite code", ErrNotFound)
	}

	return s.join(ctx, g, u)
}

// PreviewJoin resolves a share token to its group without touching any
// membership, so a landing view can show what the link opens before asking
// who is joining.
func (s *JoinService) PreviewJoin(ctx context.Context, rawToken string) (group.Group, error) {
	ctx, span := startUsecaseSpan(ctx, "JoinService.PreviewJoin")
	defer span.End()

	if strings.TrimSpace(rawToken) == "" {
		return group.Group{}, fmt.Errorf("%w: token is required", ErrInvalidInput)
	}

	token, err := s.codec.Decode(rawToken)
	if err != nil {
		return group.Group{}, err
	}

	g, found, err := s.resolver.ResolveGroup(ctx, token.GroupID, token.InviteCode)
	if err != nil {
		return group.Group{}, err
	}
	if !found {
		return group.Group{}, fmt.Errorf("%w: group not found for this invite", ErrNotFound)
	}
	return g, nil
}

func (s *JoinService) requireUser(ctx context.Context, userID string) (user.User, error) {
	u, exists, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, fmt.Errorf("get user by id: %w", err)
	}
	if !exists {
		return user.User{}, fmt.Errorf("%w: user not found", ErrNotFound)
	}
	return u, nil
}

func (s *JoinService) join(ctx context.Context, g group.Group, u user.User) (JoinResult, error) {
	if g.HasMember(u.ID) {
		return JoinResult{Group: g, AlreadyMember: true}, nil
	}

	g.Members = append(g.Members, group.Member{
		UserID:      u.ID,
		Role:        group.RoleMember,
		JoinedAt:    s.now().UTC(),
		IsActive:    true,
		Permissions: group.DefaultMemberPermissions(),
	})

	if err := s.groupRepo.Put(ctx, g); err != nil {
		return JoinResult{}, fmt.Errorf("add member to group: %w", err)
	}
	s.replicator.Replicate(ctx, recordstore.CollectionGroups, replicate.OpPut, g.ID, g)

	return JoinResult{Group: g}, nil
}
