package usecase

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/clubkit/clubkit/internal/domain/group"
	"github.com/clubkit/clubkit/internal/domain/user"
	"github.com/clubkit/clubkit/internal/infrastructure/repository/memory"
	"github.com/clubkit/clubkit/internal/invite"
)

func newJoinFixture(t *testing.T) (*JoinService, *invite.Codec, *memory.GroupRepository) {
	t.Helper()

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	users := memory.NewUserRepository([]user.User{
		{ID: "user-1", Name: "Asha", CreatedAt: now},
		{ID: "user-2", Name: "Ravi", CreatedAt: now},
	})
	groups := memory.NewGroupRepository([]group.Group{
		{
			ID: "group-1", Name: "Northside CC", CreatedBy: "user-1",
			CreatedAt: now, InviteCode: "AB12CD",
			Members: []group.Member{{
				UserID: "user-1", Role: group.RoleAdmin, JoinedAt: now,
				IsActive: true, Permissions: group.AdminPermissions(),
			}},
			Settings: group.DefaultSettings(),
		},
		{
			ID: "group-2", Name: "Harbour CC", CreatedBy: "user-1",
			CreatedAt: now, InviteCode: "ZZ99XX",
		},
	})

	codec := invite.NewCodec()
	resolver := invite.NewResolver(groups, invite.DefaultStrategies(), nil)
	svc := NewJoinService(users, groups, codec, resolver, nil)

	return svc, codec, groups
}

func TestJoinService_JoinByToken(t *testing.T) {
	svc, codec, groups := newJoinFixture(t)
	ctx := t.Context()

	g, _, _ := groups.GetByID(ctx, "group-1")
	token := codec.Generate(g)

	result, err := svc.JoinByToken(ctx, JoinByTokenInput{UserID: "user-2", Token: token})
	if err != nil {
		t.Fatalf("join by token: %v", err)
	}
	if result.Group.ID != "group-1" || result.AlreadyMember {
		t.Fatalf("unexpected result: %+v", result)
	}

	g, _, _ = groups.GetByID(ctx, "group-1")
	if !g.HasMember("user-2") {
		t.Fatalf("membership was not persisted")
	}
	var joined group.Member
	for _, m := range g.Members {
		if m.UserID == "user-2" {
			joined = m
		}
	}
	if joined.Role != group.RoleMember || !joined.IsActive {
		t.Fatalf("unexpected member record: %+v", joined)
	}
	if joined.Permissions.CanManagePlayers {
		t.Fatalf("joining member must not get admin permissions")
	}
}

func TestJoinService_JoinTwiceIsIdempotent(t *testing.T) {
	svc, codec, groups := newJoinFixture(t)
	ctx := t.Context()

	g, _, _ := groups.GetByID(ctx, "group-1")
	token := codec.Generate(g)

	if _, err := svc.JoinByToken(ctx, JoinByTokenInput{UserID: "user-2", Token: token}); err != nil {
		t.Fatalf("first join: %v", err)
	}
	result, err := svc.JoinByToken(ctx, JoinByTokenInput{UserID: "user-2", Token: token})
	if err != nil {
		t.Fatalf("second join: %v", err)
	}
	if !result.AlreadyMember {
		t.Fatalf("second join must report an existing membership")
	}

	g, _, _ = groups.GetByID(ctx, "group-1")
	n := 0
	for _, m := range g.Members {
		if m.UserID == "user-2" {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("expected exactly 1 membership, got %d", n)
	}
}

func TestJoinService_ExpiredToken(t *testing.T) {
	svc, _, groups := newJoinFixture(t)
	ctx := t.Context()

	g, _, _ := groups.GetByID(ctx, "group-1")
	stale := invite.NewCodec().WithNow(func() time.Time {
		return time.Now().Add(-25 * time.Hour)
	})
	token := stale.Generate(g)

	_, err := svc.JoinByToken(ctx, JoinByTokenInput{UserID: "user-2", Token: token})
	if !errors.Is(err, invite.ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestJoinService_TokenForWrongGroup(t *testing.T) {
	svc, codec, _ := newJoinFixture(t)
	ctx := t.Context()

	// group-1 owns AB12CD; a token claiming it belongs to group-2 must be
	// rejected even though the code resolves.
	token := codec.Encode(invite.Token{
		GroupID: "group-2", InviteCode: "AB12CD", IssuedAt: time.Now(),
	})

	_, err := svc.JoinByToken(ctx, JoinByTokenInput{UserID: "user-2", Token: token})
	if !errors.Is(err, invite.ErrSecurityMismatch) {
		t.Fatalf("expected ErrSecurityMismatch, got %v", err)
	}
}

func TestJoinService_TokenWithRotatedCode(t *testing.T) {
	svc, codec, _ := newJoinFixture(t)
	ctx := t.Context()

	// group-1 exists but no longer uses this code. Matching by id alone is
	// never a valid resolution.
	token := codec.Encode(invite.Token{
		GroupID: "group-1", InviteCode: "OLD123", IssuedAt: time.Now(),
	})

	_, err := svc.JoinByToken(ctx, JoinByTokenInput{UserID: "user-2", Token: token})
	if !errors.Is(err, invite.ErrSecurityMismatch) {
		t.Fatalf("expected ErrSecurityMismatch, got %v", err)
	}
}

func TestJoinService_MalformedToken(t *testing.T) {
	svc, _, _ := newJoinFixture(t)

	_, err := svc.JoinByToken(t.Context(), JoinByTokenInput{UserID: "user-2", Token: "!!!"})
	if !errors.Is(err, invite.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestJoinService_UnknownUser(t *testing.T) {
	svc, codec, groups := newJoinFixture(t)
	ctx := t.Context()

	g, _, _ := groups.GetByID(ctx, "group-1")
	token := codec.Generate(g)

	_, err := svc.JoinByToken(ctx, JoinByTokenInput{UserID: "user-ghost", Token: token})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestJoinService_JoinByCode(t *testing.T) {
	svc, _, groups := newJoinFixture(t)
	ctx := t.Context()

	// Hand-typed: lowercase with stray spaces still resolves.
	result, err := svc.JoinByCode(ctx, JoinByCodeInput{UserID: "user-2", InviteCode: " ab12cd "})
	if err != nil {
		t.Fatalf("join by code: %v", err)
	}
	if result.Group.ID != "group-1" {
		t.Fatalf("resolved wrong group: %+v", result.Group)
	}

	g, _, _ := groups.GetByID(ctx, "group-1")
	if !g.HasMember("user-2") {
		t.Fatalf("membership was not persisted")
	}
}

func TestJoinService_JoinByCodeUnknownCode(t *testing.T) {
	svc, _, _ := newJoinFixture(t)

	_, err := svc.JoinByCode(t.Context(), JoinByCodeInput{UserID: "user-2", InviteCode: "NOPE99"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
