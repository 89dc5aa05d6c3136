package backup

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/clubkit/clubkit/internal/domain/group"
	"github.com/clubkit/clubkit/internal/domain/invitation"
	"github.com/clubkit/clubkit/internal/domain/user"
	"github.com/clubkit/clubkit/internal/recordstore"
)

func openTestStore(t *testing.T) *recordstore.Store {
	t.Helper()

	store, err := recordstore.Open(t.Context(), filepath.Join(t.TempDir(), "test.db"), 3, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func seedStore(t *testing.T, store *recordstore.Store, userCount int) {
	t.Helper()
	ctx := t.Context()

	now := time.Now().UTC()
	users := make([]recordstore.Record, 0, userCount)
	for i := 0; i < userCount; i++ {
		users = append(users, user.User{
			ID:        fmt.Sprintf("user-%04d", i),
			Name:      strings.Repeat("n", 200),
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
		})
	}
	if err := store.PutBatch(ctx, recordstore.CollectionUsers, users); err != nil {
		t.Fatalf("seed users: %v", err)
	}
	if err := store.Put(ctx, recordstore.CollectionGroups, group.Group{
		ID: "group-1", Name: "Northside CC", CreatedBy: "user-0000",
		CreatedAt: now, InviteCode: "AB12CD", Settings: group.DefaultSettings(),
	}); err != nil {
		t.Fatalf("seed group: %v", err)
	}
}

// limitSlotStore fails any write larger than limit with ErrQuotaExceeded and
// remembers every payload size it accepted.
type limitSlotStore struct {
	limit   int
	slots   map[string][]byte
	written []int
	deletes []string
}

func newLimitSlotStore(limit int) *limitSlotStore {
	return &limitSlotStore{limit: limit, slots: make(map[string][]byte)}
}

func (s *limitSlotStore) Read(_ context.Context, slot string) ([]byte, bool, error) {
	data, ok := s.slots[slot]
	return data, ok, nil
}

func (s *limitSlotStore) Write(_ context.Context, slot string, data []byte) error {
	if len(data) > s.limit {
		return errors.Wrapf(ErrQuotaExceeded, "slot %s: %d bytes", slot, len(data))
	}
	s.slots[slot] = data
	s.written = append(s.written, len(data))
	return nil
}

func (s *limitSlotStore) Delete(_ context.Context, slot string) error {
	delete(s.slots, slot)
	s.deletes = append(s.deletes, slot)
	return nil
}

func (s *limitSlotStore) Usage(_ context.Context) (int64, error) {
	var total int64
	for _, data := range s.slots {
		total += int64(len(data))
	}
	return total, nil
}

func TestEngine_SnapshotRestoreRoundTrip(t *testing.T) {
	store := openTestStore(t)
	seedStore(t, store, 3)
	ctx := t.Context()

	slots, err := NewFileSlotStore(t.TempDir(), 1<<20)
	if err != nil {
		t.Fatalf("new slot store: %v", err)
	}
	engine := NewEngine(store, slots, 1<<20, 3, nil)

	if err := engine.CreateSnapshot(ctx); err != nil {
		t.Fatalf("create snapshot: %v", err)
	}

	// Drift the live data after the snapshot.
	if err := store.Put(ctx, recordstore.CollectionUsers, user.User{ID: "user-drift", Name: "Drift"}); err != nil {
		t.Fatalf("put drift user: %v", err)
	}

	restored, err := engine.RestoreSnapshot(ctx)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !restored {
		t.Fatalf("expected a snapshot to restore")
	}

	counts, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts[recordstore.CollectionUsers] != 3 {
		t.Fatalf("expected 3 users after restore, got %d", counts[recordstore.CollectionUsers])
	}
	if _, found, _ := store.Get(ctx, recordstore.CollectionUsers, "user-drift"); found {
		t.Fatalf("restore must replace, not merge")
	}
	if counts[recordstore.CollectionGroups] != 1 {
		t.Fatalf("expected 1 group after restore, got %d", counts[recordstore.CollectionGroups])
	}
}

func TestEngine_RestoreReturnsFalseWhenNoSnapshot(t *testing.T) {
	store := openTestStore(t)
	slots, err := NewFileSlotStore(t.TempDir(), 1<<20)
	if err != nil {
		t.Fatalf("new slot store: %v", err)
	}
	engine := NewEngine(store, slots, 1<<20, 3, nil)

	restored, err := engine.RestoreSnapshot(t.Context())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored {
		t.Fatalf("expected no snapshot to restore")
	}
}

func TestEngine_RestoreSkipsCorruptPrimary(t *testing.T) {
	store := openTestStore(t)
	seedStore(t, store, 2)
	ctx := t.Context()

	slots, err := NewFileSlotStore(t.TempDir(), 1<<20)
	if err != nil {
		t.Fatalf("new slot store: %v", err)
	}
	engine := NewEngine(store, slots, 1<<20, 3, nil)

	if err := engine.CreateSnapshot(ctx); err != nil {
		t.Fatalf("create snapshot: %v", err)
	}
	if err := slots.Write(ctx, SlotPrimary, []byte("not json at all")); err != nil {
		t.Fatalf("corrupt primary: %v", err)
	}

	restored, err := engine.RestoreSnapshot(ctx)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !restored {
		t.Fatalf("expected the fallback slot to restore")
	}
	counts, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts[recordstore.CollectionUsers] != 2 {
		t.Fatalf("expected 2 users from fallback, got %d", counts[recordstore.CollectionUsers])
	}
}

func TestEngine_SkipsCycleWhenNearlyFull(t *testing.T) {
	store := openTestStore(t)
	seedStore(t, store, 2)
	ctx := t.Context()

	slots := newLimitSlotStore(1 << 20)
	slots.slots[SlotPrimary] = make([]byte, 90)

	engine := NewEngine(store, slots, 100, 3, nil)

	if err := engine.CreateSnapshot(ctx); err != nil {
		t.Fatalf("create snapshot: %v", err)
	}
	if len(slots.written) != 0 {
		t.Fatalf("skipped cycle must not write, wrote %d payloads", len(slots.written))
	}

	usage, err := engine.EstimateQuotaUsage(ctx)
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if usage != 90 {
		t.Fatalf("expected 90%% usage, got %d", usage)
	}
}

func TestEngine_DegradesToSmallerTier(t *testing.T) {
	store := openTestStore(t)
	// Well past the minimal-tier user cap, each record padded to make the
	// larger tiers overshoot the write limit.
	seedStore(t, store, minimalUserCap+60)
	ctx := t.Context()

	slots := newLimitSlotStore(8 * 1024)
	engine := NewEngine(store, slots, 1<<20, 3, nil)

	if err := engine.CreateSnapshot(ctx); err != nil {
		t.Fatalf("create snapshot: %v", err)
	}

	payload, found, _ := slots.Read(ctx, SlotPrimary)
	if !found {
		t.Fatalf("no snapshot written")
	}
	snap, err := decodeSnapshot(payload)
	if err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(snap.Data.Users) != minimalUserCap {
		t.Fatalf("expected the minimal tier (%d users), got %d", minimalUserCap, len(snap.Data.Users))
	}
}

func TestEngine_DiscardsSlotsForLastTier(t *testing.T) {
	store := openTestStore(t)
	seedStore(t, store, 2)
	ctx := t.Context()

	// Nothing ever fits; the engine must still free both slots and retry.
	slots := newLimitSlotStore(0)
	engine := NewEngine(store, slots, 1<<20, 3, nil)

	err := engine.CreateSnapshot(ctx)
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if len(slots.deletes) != 2 {
		t.Fatalf("expected both slots discarded, got deletes %v", slots.deletes)
	}
}

func TestEngine_ExportCarriesInvitationsSnapshotDoesNot(t *testing.T) {
	store := openTestStore(t)
	seedStore(t, store, 1)
	ctx := t.Context()

	now := time.Now().UTC()
	if err := store.Put(ctx, recordstore.CollectionInvitations, invitation.Invitation{
		ID: "invitation-export-marker", GroupID: "group-1", InvitedBy: "user-0000",
		Status: invitation.StatusPending, CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}); err != nil {
		t.Fatalf("put invitation: %v", err)
	}

	slots, err := NewFileSlotStore(t.TempDir(), 1<<20)
	if err != nil {
		t.Fatalf("new slot store: %v", err)
	}
	engine := NewEngine(store, slots, 1<<20, 3, nil)

	export, err := engine.ExportAll(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(export, "invitation-export-marker") {
		t.Fatalf("export must include invitations")
	}

	if err := engine.CreateSnapshot(ctx); err != nil {
		t.Fatalf("create snapshot: %v", err)
	}
	payload, found, _ := slots.Read(ctx, SlotPrimary)
	if !found {
		t.Fatalf("no snapshot written")
	}
	if strings.Contains(string(payload), "invitation-export-marker") {
		t.Fatalf("snapshots must not include invitations")
	}
}
