package backup

import (
	"testing"
	"time"
)

func TestScheduler_RunsImmediateCycle(t *testing.T) {
	store := openTestStore(t)
	seedStore(t, store, 1)

	slots, err := NewFileSlotStore(t.TempDir(), 1<<20)
	if err != nil {
		t.Fatalf("new slot store: %v", err)
	}
	engine := NewEngine(store, slots, 1<<20, 3, nil)
	sched := NewScheduler(engine, time.Hour, nil)

	sched.Start(t.Context())
	defer sched.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, found, _ := slots.Read(t.Context(), SlotPrimary); found {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("no snapshot written by the immediate cycle")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	slots, err := NewFileSlotStore(t.TempDir(), 1<<20)
	if err != nil {
		t.Fatalf("new slot store: %v", err)
	}
	sched := NewScheduler(NewEngine(store, slots, 1<<20, 3, nil), time.Hour, nil)

	// Stop before Start is a no-op.
	sched.Stop()

	sched.Start(t.Context())
	sched.Start(t.Context()) // second Start is ignored
	sched.Stop()
	sched.Stop()
}
