package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/clubkit/clubkit/internal/domain/group"
	"github.com/clubkit/clubkit/internal/invite"
	idgen "github.com/clubkit/clubkit/internal/platform/id"
	"github.com/clubkit/clubkit/internal/recordstore"
	"github.com/clubkit/clubkit/internal/replicate"
)

// inviteCodeAttempts bounds the retry loop when a freshly drawn code
// collides with a live group.
const inviteCodeAttempts = 5

type CreateGroupInput struct {
	UserID      string
	Name        string
	Description string
}

type ShareInfo struct {
	GroupID    string
	InviteCode string
	Link       string
	Message    string
}

type GroupService struct {
	groupRepo  group.Repository
	idGen      idgen.Generator
	share      invite.ShareBuilder
	replicator replicate.Replicator
	now        func() time.Time
}

func NewGroupService(
	groupRepo group.Repository,
	idGen idgen.Generator,
	share invite.ShareBuilder,
	replicator replicate.Replicator,
) *GroupService {
	if replicator == nil {
		replicator = replicate.Noop{}
	}
	return &GroupService{
		groupRepo:  groupRepo,
		idGen:      idGen,
		share:      share,
		replicator: replicator,
		now:        time.Now,
	}
}

func (s *GroupService) CreateGroup(ctx context.Context, input CreateGroupInput) (group.Group, error) {
	ctx, span := startUsecaseSpan(ctx, "GroupService.CreateGroup")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	if input.UserID == "" {
		return group.Group{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.Name == "" {
		return group.Group{}, fmt.Errorf("%w: group name is required", ErrInvalidInput)
	}

	groupID, err := s.idGen.NewID()
	if err != nil {
		return group.Group{}, fmt.Errorf("generate group id: %w", err)
	}
	inviteCode, err := s.uniqueInviteCode(ctx)
	if err != nil {
		return group.Group{}, err
	}

	now := s.now().UTC()
	g := group.Group{
		ID:          groupID,
		Name:        input.Name,
		Description: input.Description,
		CreatedBy:   input.UserID,
		CreatedAt:   now,
		Members: []group.Member{{
			UserID:      input.UserID,
			Role:        group.RoleAdmin,
			JoinedAt:    now,
			IsActive:    true,
			Permissions: group.AdminPermissions(),
		}},
		InviteCode: inviteCode,
		Settings:   group.DefaultSettings(),
	}

	if err := s.groupRepo.Put(ctx, g); err != nil {
		return group.Group{}, fmt.Errorf("create group: %w", err)
	}
	s.replicator.Replicate(ctx, recordstore.CollectionGroups, replicate.OpPut, g.ID, g)

	return g, nil
}

// uniqueInviteCode draws codes until one does not collide with a live
// group. A collision is one in two billion per attempt; running out of
// attempts means the code source is broken, not unlucky.
func (s *GroupService) uniqueInviteCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		code, err := invite.NewCode()
		if err != nil {
			return "", fmt.Errorf("generate invite code: %w", err)
		}
		_, taken, err := s.groupRepo.GetByInviteCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check invite code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("no unique invite code after %d attempts", inviteCodeAttempts)
}

func (s *GroupService) GetGroup(ctx context.Context, groupID string) (group.Group, error) {
	ctx, span := startUsecaseSpan(ctx, "GroupService.GetGroup")
	defer span.End()

	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return group.Group{}, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}

	g, exists, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return group.Group{}, fmt.Errorf("get group by id: %w", err)
	}
	if !exists {
		return group.Group{}, fmt.Errorf("%w: group not found", ErrNotFound)
	}
	return g, nil
}

func (s *GroupService) ListGroups(ctx context.Context) ([]group.Group, error) {
	ctx, span := startUsecaseSpan(ctx, "GroupService.ListGroups")
	defer span.End()

	groups, err := s.groupRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

func (s *GroupService) ListMyGroups(ctx context.Context, userID string) ([]group.Group, error) {
	ctx, span := startUsecaseSpan(ctx, "GroupService.ListMyGroups")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	created, err := s.groupRepo.ListByCreator(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list groups by creator: %w", err)
	}

	// Membership without creatorship is not indexed; fold in the rest from
	// a scan.
	all, err := s.groupRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	seen := make(map[string]struct{}, len(created))
	for _, g := range created {
		seen[g.ID] = struct{}{}
	}
	out := created
	for _, g := range all {
		if _, ok := seen[g.ID]; ok {
			continue
		}
		if g.HasMember(userID) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *GroupService) UpdateGroup(ctx context.Context, groupID, name, description string) (group.Group, error) {
	ctx, span := startUsecaseSpan(ctx, "GroupService.UpdateGroup")
	defer span.End()

	g, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return group.Group{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return group.Group{}, fmt.Errorf("%w: group name is required", ErrInvalidInput)
	}
	g.Name = name
	g.Description = strings.TrimSpace(description)

	if err := s.groupRepo.Put(ctx, g); err != nil {
		return group.Group{}, fmt.Errorf("update group: %w", err)
	}
	s.replicator.Replicate(ctx, recordstore.CollectionGroups, replicate.OpPut, g.ID, g)

	return g, nil
}

// RotateInviteCode replaces the group's code with a fresh one. Every token
// minted against the old code stops resolving immediately.
func (s *GroupService) RotateInviteCode(ctx context.Context, groupID, userID string) (group.Group, error) {
	ctx, span := startUsecaseSpan(ctx, "GroupService.RotateInviteCode")
	defer span.End()

	g, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return group.Group{}, err
	}
	if err := s.requireAdmin(g, userID); err != nil {
		return group.Group{}, err
	}

	code, err := s.uniqueInviteCode(ctx)
	if err != nil {
		return group.Group{}, err
	}
	g.InviteCode = code

	if err := s.groupRepo.Put(ctx, g); err != nil {
		return group.Group{}, fmt.Errorf("rotate invite code: %w", err)
	}
	s.replicator.Replicate(ctx, recordstore.CollectionGroups, replicate.OpPut, g.ID, g)

	return g, nil
}

// DeleteGroup removes the group record only. Players, matches and
// invitations that reference it stay behind; the integrity checker reports
// them as orphans.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID, userID string) error {
	ctx, span := startUsecaseSpan(ctx, "GroupService.DeleteGroup")
	defer span.End()

	g, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if err := s.requireAdmin(g, userID); err != nil {
		return err
	}

	if err := s.groupRepo.Delete(ctx, g.ID); err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	s.replicator.Replicate(ctx, recordstore.CollectionGroups, replicate.OpDelete, g.ID, nil)

	return nil
}

func (s *GroupService) RemoveMember(ctx context.Context, groupID, adminID, memberID string) (group.Group, error) {
	ctx, span := startUsecaseSpan(ctx, "GroupService.RemoveMember")
	defer span.End()

	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return group.Group{}, fmt.Errorf("%w: member id is required", ErrInvalidInput)
	}

	g, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return group.Group{}, err
	}
	if err := s.requireAdmin(g, adminID); err != nil {
		return group.Group{}, err
	}
	if memberID == g.CreatedBy {
		return group.Group{}, fmt.Errorf("%w: the group creator cannot be removed", ErrInvalidInput)
	}

	return s.dropMember(ctx, g, memberID)
}

func (s *GroupService) LeaveGroup(ctx context.Context, groupID, userID string) (group.Group, error) {
	ctx, span := startUsecaseSpan(ctx, "GroupService.LeaveGroup")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return group.Group{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	g, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return group.Group{}, err
	}
	if userID == g.CreatedBy {
		return group.Group{}, fmt.Errorf("%w: the group creator cannot leave, delete the group instead", ErrInvalidInput)
	}

	return s.dropMember(ctx, g, userID)
}

func (s *GroupService) dropMember(ctx context.Context, g group.Group, userID string) (group.Group, error) {
	if !g.HasMember(userID) {
		return group.Group{}, fmt.Errorf("%w: not a member of this group", ErrNotFound)
	}

	members := make([]group.Member, 0, len(g.Members)-1)
	for _, m := range g.Members {
		if m.UserID != userID {
			members = append(members, m)
		}
	}
	g.Members = members

	if err := s.groupRepo.Put(ctx, g); err != nil {
		return group.Group{}, fmt.Errorf("update group members: %w", err)
	}
	s.replicator.Replicate(ctx, recordstore.CollectionGroups, replicate.OpPut, g.ID, g)

	return g, nil
}

// GetShareInfo builds the join link and chat message for a group. Tokens
// are minted fresh on every call; nothing is stored.
func (s *GroupService) GetShareInfo(ctx context.Context, groupID string) (ShareInfo, error) {
	ctx, span := startUsecaseSpan(ctx, "GroupService.GetShareInfo")
	defer span.End()

	g, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return ShareInfo{}, err
	}

	return ShareInfo{
		GroupID:    g.ID,
		InviteCode: g.InviteCode,
		Link:       s.share.Link(g),
		Message:    s.share.Message(g),
	}, nil
}

func (s *GroupService) requireAdmin(g group.Group, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	for _, m := range g.Members {
		if m.UserID == userID && m.Role == group.RoleAdmin && m.IsActive {
			return nil
		}
	}
	return fmt.Errorf("%w: only a group admin can do this", ErrUnauthorized)
}
