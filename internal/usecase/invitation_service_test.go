package usecase

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/clubkit/clubkit/internal/domain/group"
	"github.com/clubkit/clubkit/internal/domain/invitation"
	"github.com/clubkit/clubkit/internal/infrastructure/repository/memory"
	"github.com/clubkit/clubkit/internal/infrastructure/repository/records"
	idgen "github.com/clubkit/clubkit/internal/platform/id"
	"github.com/clubkit/clubkit/internal/recordstore"
)

func newInvitationFixture(t *testing.T) *InvitationService {
	t.Helper()

	store, err := recordstore.Open(t.Context(), filepath.Join(t.TempDir(), "test.db"), 3, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	groups := memory.NewGroupRepository([]group.Group{{
		ID: "group-1", Name: "Northside CC", CreatedBy: "user-1",
		CreatedAt: now, InviteCode: "AB12CD",
		Members: []group.Member{
			{UserID: "user-1", Role: group.RoleAdmin, JoinedAt: now, IsActive: true},
		},
	}})

	return NewInvitationService(records.NewInvitationRepository(store), groups, idgen.NewRandomGenerator(), nil)
}

func TestInvitationService_Invite(t *testing.T) {
	svc := newInvitationFixture(t)
	ctx := t.Context()

	inv, err := svc.Invite(ctx, InviteInput{
		GroupID: "group-1", InvitedBy: "user-1", InviteeName: " Priya ",
	})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if inv.Status != invitation.StatusPending {
		t.Fatalf("expected pending, got %s", inv.Status)
	}
	if inv.InviteeName != "Priya" {
		t.Fatalf("invitee name not trimmed: %q", inv.InviteeName)
	}
	if got := inv.ExpiresAt.Sub(inv.CreatedAt); got != invitationLifetime {
		t.Fatalf("expected %s lifetime, got %s", invitationLifetime, got)
	}
}

func TestInvitationService_InviteRequiresMembership(t *testing.T) {
	svc := newInvitationFixture(t)
	ctx := t.Context()

	if _, err := svc.Invite(ctx, InviteInput{GroupID: "group-1", InvitedBy: "user-outsider"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.Invite(ctx, InviteInput{GroupID: "group-ghost", InvitedBy: "user-1"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInvitationService_ListExpiresLapsedInvitations(t *testing.T) {
	svc := newInvitationFixture(t)
	ctx := t.Context()

	inv, err := svc.Invite(ctx, InviteInput{GroupID: "group-1", InvitedBy: "user-1"})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}

	// Listing eight days later flips the pending invitation and persists it.
	svc.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }

	invitations, err := svc.ListByGroup(ctx, "group-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(invitations) != 1 {
		t.Fatalf("expected 1 invitation, got %d", len(invitations))
	}
	if invitations[0].Status != invitation.StatusExpired {
		t.Fatalf("expected expired status, got %s", invitations[0].Status)
	}

	// The flip is durable, so a revoke of the same record now fails.
	if _, err := svc.Revoke(ctx, inv.ID); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("revoking expired invitation: expected ErrInvalidInput, got %v", err)
	}
}

func TestInvitationService_Revoke(t *testing.T) {
	svc := newInvitationFixture(t)
	ctx := t.Context()

	inv, err := svc.Invite(ctx, InviteInput{GroupID: "group-1", InvitedBy: "user-1"})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}

	revoked, err := svc.Revoke(ctx, inv.ID)
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked.Status != invitation.StatusRevoked {
		t.Fatalf("expected revoked, got %s", revoked.Status)
	}

	// Revoking twice fails; the record is no longer pending.
	if _, err := svc.Revoke(ctx, inv.ID); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("second revoke: expected ErrInvalidInput, got %v", err)
	}

	if _, err := svc.Revoke(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown id: expected ErrNotFound, got %v", err)
	}
}
