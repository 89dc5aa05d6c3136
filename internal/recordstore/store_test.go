package recordstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/clubkit/clubkit/internal/domain/group"
	"github.com/clubkit/clubkit/internal/domain/user"
)

const testSchemaVersion = 3

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(t.Context(), filepath.Join(t.TempDir(), "test.db"), testSchemaVersion, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func testUser(id string) user.User {
	return user.User{ID: id, Name: "User " + id, CreatedAt: time.Now().UTC()}
}

func testGroup(id, code string) group.Group {
	return group.Group{
		ID:         id,
		Name:       "Group " + id,
		CreatedBy:  "user-1",
		CreatedAt:  time.Now().UTC(),
		InviteCode: code,
	}
}

func TestStore_PutGetRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := t.Context()

	want := testUser("user-1")
	if err := store.Put(ctx, CollectionUsers, want); err != nil {
		t.Fatalf("put: %v", err)
	}

	rec, found, err := store.Get(ctx, CollectionUsers, "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found {
		t.Fatalf("expected record to be found")
	}
	got, ok := rec.(user.User)
	if !ok {
		t.Fatalf("unexpected record type %T", rec)
	}
	if got.ID != want.ID || got.Name != want.Name {
		t.Fatalf("round trip mismatch: got %+v", got)
	}
}

func TestStore_GetMissingIsNotAnError(t *testing.T) {
	store := openTestStore(t)

	_, found, err := store.Get(t.Context(), CollectionUsers, "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Fatalf("expected found=false")
	}
}

func TestStore_PutReplacesExisting(t *testing.T) {
	store := openTestStore(t)
	ctx := t.Context()

	u := testUser("user-1")
	if err := store.Put(ctx, CollectionUsers, u); err != nil {
		t.Fatalf("put: %v", err)
	}
	u.Name = "Renamed"
	if err := store.Put(ctx, CollectionUsers, u); err != nil {
		t.Fatalf("second put: %v", err)
	}

	all, err := store.GetAll(ctx, CollectionUsers)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 record after replace, got %d", len(all))
	}
	if all[0].(user.User).Name != "Renamed" {
		t.Fatalf("replace did not take: %+v", all[0])
	}
}

func TestStore_PutBatchIsAtomic(t *testing.T) {
	store := openTestStore(t)
	ctx := t.Context()

	batch := []Record{
		testUser("user-1"),
		user.User{ID: "user-2"}, // missing name fails validation
		testUser("user-3"),
	}
	err := store.PutBatch(ctx, CollectionUsers, batch)
	if !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}

	all, err := store.GetAll(ctx, CollectionUsers)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("batch with one bad record must write nothing, found %d records", len(all))
	}
}

func TestStore_RejectsInvalidWrites(t *testing.T) {
	store := openTestStore(t)
	ctx := t.Context()

	if err := store.Put(ctx, CollectionUsers, nil); !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("nil record: expected ErrInvalidRecord, got %v", err)
	}
	if err := store.Put(ctx, CollectionUsers, user.User{Name: "No ID"}); !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("empty id: expected ErrInvalidRecord, got %v", err)
	}
	if err := store.Put(ctx, "mystery", testUser("user-1")); !errors.Is(err, ErrUnknownCollection) {
		t.Fatalf("unknown collection: expected ErrUnknownCollection, got %v", err)
	}
}

func TestStore_QueryByIndex(t *testing.T) {
	store := openTestStore(t)
	ctx := t.Context()

	if err := store.PutBatch(ctx, CollectionGroups, []Record{
		testGroup("group-1", "AB12CD"),
		testGroup("group-2", "ZZ99XX"),
	}); err != nil {
		t.Fatalf("put groups: %v", err)
	}

	recs, err := store.QueryByIndex(ctx, CollectionGroups, IndexGroupsByInviteCode, "AB12CD")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 match, got %d", len(recs))
	}
	if recs[0].(group.Group).ID != "group-1" {
		t.Fatalf("unexpected match: %+v", recs[0])
	}

	if _, err := store.QueryByIndex(ctx, CollectionGroups, "byMood", "happy"); !errors.Is(err, ErrUnknownIndex) {
		t.Fatalf("expected ErrUnknownIndex, got %v", err)
	}
}

func TestStore_QueryFallsBackWithoutIndex(t *testing.T) {
	store := openTestStore(t)
	ctx := t.Context()

	if err := store.Put(ctx, CollectionGroups, testGroup("group-1", "AB12CD")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.InvalidateIndex(ctx, CollectionGroups, IndexGroupsByInviteCode); err != nil {
		t.Fatalf("invalidate index: %v", err)
	}

	// Same answer from the scan path.
	recs, err := store.QueryByIndex(ctx, CollectionGroups, IndexGroupsByInviteCode, "AB12CD")
	if err != nil {
		t.Fatalf("query via fallback: %v", err)
	}
	if len(recs) != 1 || recs[0].(group.Group).ID != "group-1" {
		t.Fatalf("fallback gave wrong result: %+v", recs)
	}

	// Writes during the stale window must still be visible to the fallback.
	if err := store.Put(ctx, CollectionGroups, testGroup("group-2", "ZZ99XX")); err != nil {
		t.Fatalf("put during stale window: %v", err)
	}
	recs, err = store.QueryByIndex(ctx, CollectionGroups, IndexGroupsByInviteCode, "ZZ99XX")
	if err != nil {
		t.Fatalf("query new record via fallback: %v", err)
	}
	if len(recs) != 1 || recs[0].(group.Group).ID != "group-2" {
		t.Fatalf("fallback missed record written while index was stale: %+v", recs)
	}
}

func TestStore_DeleteRemovesRecordAndIndexEntries(t *testing.T) {
	store := openTestStore(t)
	ctx := t.Context()

	if err := store.Put(ctx, CollectionGroups, testGroup("group-1", "AB12CD")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Delete(ctx, CollectionGroups, "group-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, found, _ := store.Get(ctx, CollectionGroups, "group-1"); found {
		t.Fatalf("record survived delete")
	}
	recs, err := store.QueryByIndex(ctx, CollectionGroups, IndexGroupsByInviteCode, "AB12CD")
	if err != nil {
		t.Fatalf("query after delete: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("index entry survived delete")
	}

	// Deleting a missing id is a no-op.
	if err := store.Delete(ctx, CollectionGroups, "group-1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestStore_ClearAllAndCounts(t *testing.T) {
	store := openTestStore(t)
	ctx := t.Context()

	if err := store.Put(ctx, CollectionUsers, testUser("user-1")); err != nil {
		t.Fatalf("put user: %v", err)
	}
	if err := store.Put(ctx, CollectionGroups, testGroup("group-1", "AB12CD")); err != nil {
		t.Fatalf("put group: %v", err)
	}

	counts, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts[CollectionUsers] != 1 || counts[CollectionGroups] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
	if _, ok := counts[CollectionMatches]; !ok {
		t.Fatalf("empty collections must still appear in counts")
	}

	if err := store.ClearAll(ctx); err != nil {
		t.Fatalf("clear all: %v", err)
	}
	counts, err = store.Counts(ctx)
	if err != nil {
		t.Fatalf("counts after clear: %v", err)
	}
	for collection, n := range counts {
		if n != 0 {
			t.Fatalf("collection %s not cleared: %d", collection, n)
		}
	}
}

func TestStore_ClosedStoreRefusesOperations(t *testing.T) {
	store, err := Open(t.Context(), filepath.Join(t.TempDir(), "test.db"), testSchemaVersion, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	store.Close()

	if _, _, err := store.Get(context.Background(), CollectionUsers, "user-1"); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}
