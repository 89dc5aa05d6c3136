package id

import (
	"encoding/hex"
	"testing"
)

func TestRandomGenerator_NewID(t *testing.T) {
	gen := NewRandomGenerator()

	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		id, err := gen.NewID()
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		if len(id) != 32 {
			t.Fatalf("expected 32 hex chars, got %d (%q)", len(id), id)
		}
		if _, err := hex.DecodeString(id); err != nil {
			t.Fatalf("id is not hex: %q", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}
