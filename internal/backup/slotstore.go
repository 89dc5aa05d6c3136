package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// ErrQuotaExceeded marks a slot write that would push the subsystem past
// its byte budget, mirroring the platform quota ceiling of browser-class
// local storage.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Snapshot slots. Primary is tried first on restore; fallback is the
// independent second location.
const (
	SlotPrimary  = "snapshot-primary"
	SlotFallback = "snapshot-fallback"
)

// SlotStore is durable storage for snapshot payloads at fixed well-known
// keys, with a hard byte budget across all slots.
type SlotStore interface {
	Read(ctx context.Context, slot string) ([]byte, bool, error)
	Write(ctx context.Context, slot string, data []byte) error
	Delete(ctx context.Context, slot string) error
	// Usage reports the bytes currently held across all slots.
	Usage(ctx context.Context) (int64, error)
}

// FileSlotStore keeps each slot as one file under dir and refuses writes
// that would exceed the budget.
type FileSlotStore struct {
	dir    string
	budget int64
}

func NewFileSlotStore(dir string, budget int64) (*FileSlotStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create slot dir: %w", err)
	}
	return &FileSlotStore{dir: dir, budget: budget}, nil
}

func (s *FileSlotStore) path(slot string) string {
	return filepath.Join(s.dir, slot+".json")
}

func (s *FileSlotStore) Read(_ context.Context, slot string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(slot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read slot %s: %w", slot, err)
	}
	return data, true, nil
}

func (s *FileSlotStore) Write(ctx context.Context, slot string, data []byte) error {
	used, err := s.usageExcluding(slot)
	if err != nil {
		return err
	}
	if used+int64(len(data)) > s.budget {
		return errors.Wrapf(ErrQuotaExceeded,
			"slot %s: %d bytes over a %d byte budget with %d in use", slot, len(data), s.budget, used)
	}

	if err := os.WriteFile(s.path(slot), data, 0o644); err != nil {
		return fmt.Errorf("write slot %s: %w", slot, err)
	}
	return nil
}

func (s *FileSlotStore) Delete(_ context.Context, slot string) error {
	if err := os.Remove(s.path(slot)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete slot %s: %w", slot, err)
	}
	return nil
}

func (s *FileSlotStore) Usage(_ context.Context) (int64, error) {
	return s.usageExcluding("")
}

func (s *FileSlotStore) usageExcluding(slot string) (int64, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read slot dir: %w", err)
	}

	var total int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if slot != "" && entry.Name() == slot+".json" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return 0, fmt.Errorf("stat slot file %s: %w", entry.Name(), err)
		}
		total += info.Size()
	}
	return total, nil
}
