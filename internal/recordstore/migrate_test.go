package recordstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/clubkit/clubkit/internal/domain/invitation"
)

func TestMigrate_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := t.Context()

	store, err := Open(ctx, path, testSchemaVersion, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.Put(ctx, CollectionUsers, testUser("user-1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	store, err = Open(ctx, path, testSchemaVersion, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()

	if _, found, err := store.Get(ctx, CollectionUsers, "user-1"); err != nil || !found {
		t.Fatalf("record lost across reopen: found=%v err=%v", found, err)
	}
}

func TestMigrate_V3RecreatesInvitations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := t.Context()

	store, err := Open(ctx, path, 2, nil)
	if err != nil {
		t.Fatalf("open at v2: %v", err)
	}
	now := time.Now().UTC()
	if err := store.Put(ctx, CollectionInvitations, invitation.Invitation{
		ID: "invitation-old", GroupID: "group-1", Status: invitation.StatusPending,
		CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}); err != nil {
		t.Fatalf("put invitation: %v", err)
	}
	if err := store.Put(ctx, CollectionUsers, testUser("user-1")); err != nil {
		t.Fatalf("put user: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	store, err = Open(ctx, path, 3, nil)
	if err != nil {
		t.Fatalf("open at v3: %v", err)
	}
	defer store.Close()

	// Invitations are rebuilt from empty; other collections keep their data.
	if _, found, _ := store.Get(ctx, CollectionInvitations, "invitation-old"); found {
		t.Fatalf("invitation survived the v3 rebuild")
	}
	if _, found, _ := store.Get(ctx, CollectionUsers, "user-1"); !found {
		t.Fatalf("user lost during migration")
	}

	// Indexes work after the rebuild.
	if err := store.Put(ctx, CollectionInvitations, invitation.Invitation{
		ID: "invitation-new", GroupID: "group-1", Status: invitation.StatusPending,
		CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}); err != nil {
		t.Fatalf("put invitation: %v", err)
	}
	recs, err := store.QueryByIndex(ctx, CollectionInvitations, IndexInvitationsByGroup, "group-1")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 invitation via index, got %d", len(recs))
	}
}

func TestMigrate_StoreAheadOfTargetIsTolerated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := t.Context()

	store, err := Open(ctx, path, testSchemaVersion, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.Put(ctx, CollectionUsers, testUser("user-1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Opening with an older target must not roll anything back.
	store, err = Open(ctx, path, 2, nil)
	if err != nil {
		t.Fatalf("open with older target: %v", err)
	}
	defer store.Close()

	if _, found, _ := store.Get(ctx, CollectionUsers, "user-1"); !found {
		t.Fatalf("data lost when opening with an older schema target")
	}
}
