package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/clubkit/clubkit/internal/domain/group"
	"github.com/clubkit/clubkit/internal/domain/invitation"
	"github.com/clubkit/clubkit/internal/domain/match"
	"github.com/clubkit/clubkit/internal/domain/player"
	"github.com/clubkit/clubkit/internal/domain/setting"
	"github.com/clubkit/clubkit/internal/domain/user"
	"github.com/clubkit/clubkit/internal/platform/logging"
	"github.com/clubkit/clubkit/internal/recordstore"
)

// DefaultSkipThresholdPct stops snapshot cycles before they start when the
// slot store is already mostly full; shrinking the payload further would
// only thrash the tiers.
const DefaultSkipThresholdPct = 80

// Engine creates, restores and exports snapshots of the record store.
type Engine struct {
	store         *recordstore.Store
	slots         SlotStore
	budget        int64
	skipThreshold int
	schemaVersion int
	tiers         []TierRule
	logger        *logging.Logger
	now           func() time.Time
}

func NewEngine(store *recordstore.Store, slots SlotStore, budget int64, schemaVersion int, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		store:         store,
		slots:         slots,
		budget:        budget,
		skipThreshold: DefaultSkipThresholdPct,
		schemaVersion: schemaVersion,
		tiers:         DefaultTiers(),
		logger:        logger,
		now:           time.Now,
	}
}

// WithNow fixes the engine's clock, for tests.
func (e *Engine) WithNow(now func() time.Time) *Engine {
	e.now = now
	return e
}

// WithSkipThreshold overrides the usage percentage above which snapshot
// cycles are skipped.
func (e *Engine) WithSkipThreshold(pct int) *Engine {
	e.skipThreshold = pct
	return e
}

// EstimateQuotaUsage reports slot store usage as a percentage of the budget.
func (e *Engine) EstimateQuotaUsage(ctx context.Context) (int, error) {
	if e.budget <= 0 {
		return 0, nil
	}
	used, err := e.slots.Usage(ctx)
	if err != nil {
		return 0, fmt.Errorf("slot usage: %w", err)
	}
	return int(used * 100 / e.budget), nil
}

// CreateSnapshot captures the current collections into both slots, stepping
// down through the tiers until a payload fits. When even the smallest tier
// does not fit, both slots are discarded and the smallest tier is tried once
// more against the freed budget. A cycle that still cannot fit reports
// ErrQuotaExceeded.
func (e *Engine) CreateSnapshot(ctx context.Context) error {
	usage, err := e.EstimateQuotaUsage(ctx)
	if err != nil {
		return err
	}
	if usage > e.skipThreshold {
		e.logger.WarnContext(ctx, "snapshot skipped, storage nearly full",
			"usagePct", usage, "thresholdPct", e.skipThreshold)
		return nil
	}

	full, err := e.loadAll(ctx)
	if err != nil {
		return err
	}
	now := e.now()

	var lastErr error
	for i, tier := range e.tiers {
		snap := Snapshot{
			Timestamp:     now.UnixMilli(),
			SchemaVersion: e.schemaVersion,
			Data:          tier.Build(now, full),
		}
		payload, err := snap.encode()
		if err != nil {
			return err
		}

		err = e.writeSlots(ctx, payload)
		if err == nil {
			if tier.Name != e.tiers[0].Name {
				e.logger.InfoContext(ctx, "snapshot written at reduced tier",
					"tier", tier.Name, "bytes", len(payload))
			}
			return nil
		}
		if !errors.Is(err, ErrQuotaExceeded) {
			return err
		}
		lastErr = err

		// Last tier and still over budget: free both slots and retry the
		// same payload once against the emptied store.
		if i == len(e.tiers)-1 {
			e.logger.WarnContext(ctx, "discarding previous snapshots to fit minimal tier")
			if err := e.slots.Delete(ctx, SlotPrimary); err != nil {
				return err
			}
			if err := e.slots.Delete(ctx, SlotFallback); err != nil {
				return err
			}
			if err := e.writeSlots(ctx, payload); err == nil {
				return nil
			} else if !errors.Is(err, ErrQuotaExceeded) {
				return err
			} else {
				lastErr = err
			}
		}
	}

	return fmt.Errorf("snapshot does not fit any tier: %w", lastErr)
}

func (e *Engine) writeSlots(ctx context.Context, payload []byte) error {
	if err := e.slots.Write(ctx, SlotPrimary, payload); err != nil {
		return err
	}
	if err := e.slots.Write(ctx, SlotFallback, payload); err != nil {
		return err
	}
	return nil
}

// RestoreSnapshot replaces the store contents with the most recent readable
// snapshot. The primary slot is preferred; a missing or corrupt primary
// falls through to the fallback. Returns false when neither slot yields a
// usable snapshot.
func (e *Engine) RestoreSnapshot(ctx context.Context) (bool, error) {
	for _, slot := range []string{SlotPrimary, SlotFallback} {
		payload, found, err := e.slots.Read(ctx, slot)
		if err != nil {
			return false, err
		}
		if !found {
			continue
		}

		snap, err := decodeSnapshot(payload)
		if err != nil {
			e.logger.WarnContext(ctx, "skipping corrupt snapshot slot",
				"slot", slot, "error", err)
			continue
		}

		if err := e.apply(ctx, snap); err != nil {
			return false, err
		}
		e.logger.InfoContext(ctx, "snapshot restored",
			"slot", slot, "takenAt", time.UnixMilli(snap.Timestamp))
		return true, nil
	}
	return false, nil
}

func (e *Engine) apply(ctx context.Context, snap Snapshot) error {
	if err := e.store.ClearAll(ctx); err != nil {
		return err
	}
	if err := putAll(ctx, e.store, recordstore.CollectionUsers, snap.Data.Users); err != nil {
		return err
	}
	if err := putAll(ctx, e.store, recordstore.CollectionGroups, snap.Data.Groups); err != nil {
		return err
	}
	if err := putAll(ctx, e.store, recordstore.CollectionPlayers, snap.Data.Players); err != nil {
		return err
	}
	if err := putAll(ctx, e.store, recordstore.CollectionMatches, snap.Data.Matches); err != nil {
		return err
	}
	return putAll(ctx, e.store, recordstore.CollectionSettings, snap.Data.Settings)
}

// ExportAll serializes every collection, invitations included, for an
// external download. Exports are unbounded; the slot budget does not apply.
func (e *Engine) ExportAll(ctx context.Context) (string, error) {
	full, err := e.loadAll(ctx)
	if err != nil {
		return "", err
	}
	invitations, err := loadCollection[invitation.Invitation](ctx, e.store, recordstore.CollectionInvitations)
	if err != nil {
		return "", err
	}

	out, err := sonic.Marshal(Export{
		ExportedAt:    e.now(),
		SchemaVersion: e.schemaVersion,
		Data:          full,
		Invitations:   invitations,
	})
	if err != nil {
		return "", fmt.Errorf("encode export: %w", err)
	}
	return string(out), nil
}

func (e *Engine) loadAll(ctx context.Context) (Data, error) {
	users, err := loadCollection[user.User](ctx, e.store, recordstore.CollectionUsers)
	if err != nil {
		return Data{}, err
	}
	groups, err := loadCollection[group.Group](ctx, e.store, recordstore.CollectionGroups)
	if err != nil {
		return Data{}, err
	}
	players, err := loadCollection[player.Player](ctx, e.store, recordstore.CollectionPlayers)
	if err != nil {
		return Data{}, err
	}
	matches, err := loadCollection[match.Match](ctx, e.store, recordstore.CollectionMatches)
	if err != nil {
		return Data{}, err
	}
	settings, err := loadCollection[setting.Setting](ctx, e.store, recordstore.CollectionSettings)
	if err != nil {
		return Data{}, err
	}

	return Data{
		Users:    users,
		Groups:   groups,
		Players:  players,
		Matches:  matches,
		Settings: settings,
	}, nil
}

func loadCollection[T recordstore.Record](ctx context.Context, store *recordstore.Store, collection string) ([]T, error) {
	recs, err := store.GetAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		v, ok := rec.(T)
		if !ok {
			return nil, fmt.Errorf("unexpected record type %T in %s", rec, collection)
		}
		out = append(out, v)
	}
	return out, nil
}

func putAll[T recordstore.Record](ctx context.Context, store *recordstore.Store, collection string, items []T) error {
	if len(items) == 0 {
		return nil
	}
	recs := make([]recordstore.Record, 0, len(items))
	for _, item := range items {
		recs = append(recs, item)
	}
	return store.PutBatch(ctx, collection, recs)
}
