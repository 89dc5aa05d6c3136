package usecase

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/clubkit/clubkit/internal/domain/group"
	"github.com/clubkit/clubkit/internal/infrastructure/repository/memory"
	"github.com/clubkit/clubkit/internal/invite"
	idgen "github.com/clubkit/clubkit/internal/platform/id"
)

func newGroupFixture(t *testing.T, seed []group.Group) (*GroupService, *memory.GroupRepository) {
	t.Helper()

	groups := memory.NewGroupRepository(seed)
	share := invite.NewShareBuilder("https://clubkit.app", invite.NewCodec())
	svc := NewGroupService(groups, idgen.NewRandomGenerator(), share, nil)

	return svc, groups
}

func seedGroup(now time.Time) group.Group {
	return group.Group{
		ID: "group-1", Name: "Northside CC", CreatedBy: "user-1",
		CreatedAt: now, InviteCode: "AB12CD",
		Members: []group.Member{
			{UserID: "user-1", Role: group.RoleAdmin, JoinedAt: now, IsActive: true, Permissions: group.AdminPermissions()},
			{UserID: "user-2", Role: group.RoleMember, JoinedAt: now, IsActive: true, Permissions: group.DefaultMemberPermissions()},
		},
		Settings: group.DefaultSettings(),
	}
}

func TestGroupService_CreateGroup(t *testing.T) {
	svc, groups := newGroupFixture(t, nil)
	ctx := t.Context()

	g, err := svc.CreateGroup(ctx, CreateGroupInput{
		UserID: "user-1", Name: "  Northside CC  ", Description: "Friendly club",
	})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if g.ID == "" {
		t.Fatalf("group id was not assigned")
	}
	if g.Name != "Northside CC" {
		t.Fatalf("name not trimmed: %q", g.Name)
	}
	if !group.ValidInviteCode(g.InviteCode) {
		t.Fatalf("invalid invite code %q", g.InviteCode)
	}
	if len(g.Members) != 1 {
		t.Fatalf("expected creator as sole member, got %d", len(g.Members))
	}
	admin := g.Members[0]
	if admin.UserID != "user-1" || admin.Role != group.RoleAdmin || !admin.IsActive {
		t.Fatalf("unexpected creator member: %+v", admin)
	}
	if !admin.Permissions.CanManagePlayers {
		t.Fatalf("creator must hold admin permissions")
	}
	if g.Settings != group.DefaultSettings() {
		t.Fatalf("unexpected settings: %+v", g.Settings)
	}

	if _, found, _ := groups.GetByID(ctx, g.ID); !found {
		t.Fatalf("group was not persisted")
	}
}

func TestGroupService_CreateGroupRequiresName(t *testing.T) {
	svc, _ := newGroupFixture(t, nil)

	_, err := svc.CreateGroup(t.Context(), CreateGroupInput{UserID: "user-1", Name: "   "})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestGroupService_RotateInviteCode(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	svc, groups := newGroupFixture(t, []group.Group{seedGroup(now)})
	ctx := t.Context()

	g, err := svc.RotateInviteCode(ctx, "group-1", "user-1")
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if g.InviteCode == "AB12CD" {
		t.Fatalf("invite code did not change")
	}
	if !group.ValidInviteCode(g.InviteCode) {
		t.Fatalf("rotated code invalid: %q", g.InviteCode)
	}

	stored, _, _ := groups.GetByID(ctx, "group-1")
	if stored.InviteCode != g.InviteCode {
		t.Fatalf("rotation not persisted")
	}
}

func TestGroupService_RotateRequiresAdmin(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	svc, _ := newGroupFixture(t, []group.Group{seedGroup(now)})

	_, err := svc.RotateInviteCode(t.Context(), "group-1", "user-2")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestGroupService_RemoveMember(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	svc, groups := newGroupFixture(t, []group.Group{seedGroup(now)})
	ctx := t.Context()

	g, err := svc.RemoveMember(ctx, "group-1", "user-1", "user-2")
	if err != nil {
		t.Fatalf("remove member: %v", err)
	}
	if g.HasMember("user-2") {
		t.Fatalf("member survived removal")
	}
	stored, _, _ := groups.GetByID(ctx, "group-1")
	if stored.HasMember("user-2") {
		t.Fatalf("removal not persisted")
	}
}

func TestGroupService_CreatorCannotBeRemovedOrLeave(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	svc, _ := newGroupFixture(t, []group.Group{seedGroup(now)})
	ctx := t.Context()

	if _, err := svc.RemoveMember(ctx, "group-1", "user-1", "user-1"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("removing creator: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.LeaveGroup(ctx, "group-1", "user-1"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("creator leaving: expected ErrInvalidInput, got %v", err)
	}
}

func TestGroupService_LeaveGroup(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	svc, groups := newGroupFixture(t, []group.Group{seedGroup(now)})
	ctx := t.Context()

	if _, err := svc.LeaveGroup(ctx, "group-1", "user-2"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	stored, _, _ := groups.GetByID(ctx, "group-1")
	if stored.HasMember("user-2") {
		t.Fatalf("leave not persisted")
	}

	// A non-member leaving is a miss, not a write.
	if _, err := svc.LeaveGroup(ctx, "group-1", "user-9"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGroupService_DeleteGroup(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	svc, groups := newGroupFixture(t, []group.Group{seedGroup(now)})
	ctx := t.Context()

	if err := svc.DeleteGroup(ctx, "group-1", "user-2"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("non-admin delete: expected ErrUnauthorized, got %v", err)
	}
	if err := svc.DeleteGroup(ctx, "group-1", "user-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, _ := groups.GetByID(ctx, "group-1"); found {
		t.Fatalf("group survived delete")
	}
}

func TestGroupService_ListMyGroups(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	mine := seedGroup(now)
	other := group.Group{
		ID: "group-2", Name: "Harbour CC", CreatedBy: "user-9",
		CreatedAt: now, InviteCode: "ZZ99XX",
		Members: []group.Member{
			{UserID: "user-9", Role: group.RoleAdmin, JoinedAt: now, IsActive: true},
			{UserID: "user-1", Role: group.RoleMember, JoinedAt: now, IsActive: true},
		},
	}
	unrelated := group.Group{
		ID: "group-3", Name: "Valley CC", CreatedBy: "user-9",
		CreatedAt: now, InviteCode: "QQ11QQ",
	}
	svc, _ := newGroupFixture(t, []group.Group{mine, other, unrelated})

	got, err := svc.ListMyGroups(t.Context(), "user-1")
	if err != nil {
		t.Fatalf("list my groups: %v", err)
	}
	ids := make(map[string]bool, len(got))
	for _, g := range got {
		ids[g.ID] = true
	}
	if len(got) != 2 || !ids["group-1"] || !ids["group-2"] {
		t.Fatalf("expected created and joined groups, got %v", ids)
	}
}

func TestGroupService_GetShareInfo(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	svc, _ := newGroupFixture(t, []group.Group{seedGroup(now)})

	info, err := svc.GetShareInfo(t.Context(), "group-1")
	if err != nil {
		t.Fatalf("share info: %v", err)
	}
	if info.GroupID != "group-1" || info.InviteCode != "AB12CD" {
		t.Fatalf("unexpected share info: %+v", info)
	}
	if !strings.HasPrefix(info.Link, "https://clubkit.app/") {
		t.Fatalf("link missing origin: %q", info.Link)
	}
	if !strings.Contains(info.Message, "Northside CC") || !strings.Contains(info.Message, "AB12CD") {
		t.Fatalf("message missing group details: %q", info.Message)
	}
}
