package usecase

import (
	"testing"
	"time"

	"github.com/clubkit/clubkit/internal/domain/group"
	"github.com/clubkit/clubkit/internal/domain/user"
	"github.com/clubkit/clubkit/internal/infrastructure/repository/memory"
	"github.com/clubkit/clubkit/internal/invite"
	idgen "github.com/clubkit/clubkit/internal/platform/id"
)

// The full share path: create a group, mint a share link, decode and
// resolve the token, join, join again.
func TestShareAndJoinFlow(t *testing.T) {
	ctx := t.Context()

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	users := memory.NewUserRepository([]user.User{
		{ID: "user-1", Name: "Asha", CreatedAt: now},
		{ID: "user-2", Name: "Ravi", CreatedAt: now},
	})
	groups := memory.NewGroupRepository(nil)

	codec := invite.NewCodec()
	resolver := invite.NewResolver(groups, invite.DefaultStrategies(), nil)
	share := invite.NewShareBuilder("https://clubkit.app", codec)
	groupSvc := NewGroupService(groups, idgen.NewRandomGenerator(), share, nil)
	joinSvc := NewJoinService(users, groups, codec, resolver, nil)

	g, err := groupSvc.CreateGroup(ctx, CreateGroupInput{UserID: "user-1", Name: "Northside CC"})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	token := codec.Generate(g)

	decoded, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if decoded.GroupID != g.ID || decoded.InviteCode != g.InviteCode {
		t.Fatalf("token round trip mismatch: %+v", decoded)
	}

	previewed, err := joinSvc.PreviewJoin(ctx, token)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if previewed.ID != g.ID {
		t.Fatalf("preview resolved wrong group: %s", previewed.ID)
	}

	result, err := joinSvc.JoinByToken(ctx, JoinByTokenInput{UserID: "user-2", Token: token})
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if result.AlreadyMember {
		t.Fatalf("first join reported an existing membership")
	}
	joined := result.Group
	if !joined.HasMember("user-2") {
		t.Fatalf("user-2 not in members: %+v", joined.Members)
	}
	for _, m := range joined.Members {
		if m.UserID == "user-2" && m.Role != group.RoleMember {
			t.Fatalf("joined with role %s, want member", m.Role)
		}
	}

	again, err := joinSvc.JoinByToken(ctx, JoinByTokenInput{UserID: "user-2", Token: token})
	if err != nil {
		t.Fatalf("second join: %v", err)
	}
	if !again.AlreadyMember || len(again.Group.Members) != len(joined.Members) {
		t.Fatalf("second join changed the member list")
	}
}
