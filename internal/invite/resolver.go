package invite

import (
	"context"
	"fmt"

	"github.com/clubkit/clubkit/internal/domain/group"
	"github.com/clubkit/clubkit/internal/platform/logging"
)

// GroupSource is the slice of group persistence the resolver needs.
type GroupSource interface {
	List(ctx context.Context) ([]group.Group, error)
	GetByID(ctx context.Context, groupID string) (group.Group, bool, error)
	GetByInviteCode(ctx context.Context, inviteCode string) (group.Group, bool, error)
}

// Strategy is one way of finding a group for an invite code. Strategies are
// tried in declared order until one finds a group.
type Strategy struct {
	Name    string
	Resolve func(ctx context.Context, src GroupSource, inviteCode string) (group.Group, bool, error)
}

// DefaultStrategies returns the resolution order: indexed lookup first,
// then an exact scan, then a trimmed case-insensitive scan for codes a
// person typed by hand.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "index", Resolve: resolveByIndex},
		{Name: "scan", Resolve: resolveByScan},
		{Name: "normalized-scan", Resolve: resolveByNormalizedScan},
	}
}

func resolveByIndex(ctx context.Context, src GroupSource, inviteCode string) (group.Group, bool, error) {
	return src.GetByInviteCode(ctx, inviteCode)
}

func resolveByScan(ctx context.Context, src GroupSource, inviteCode string) (group.Group, bool, error) {
	groups, err := src.List(ctx)
	if err != nil {
		return group.Group{}, false, err
	}
	for _, g := range groups {
		if g.InviteCode == inviteCode {
			return g, true, nil
		}
	}
	return group.Group{}, false, nil
}

func resolveByNormalizedScan(ctx context.Context, src GroupSource, inviteCode string) (group.Group, bool, error) {
	want := NormalizeCode(inviteCode)
	if want == "" {
		return group.Group{}, false, nil
	}
	groups, err := src.List(ctx)
	if err != nil {
		return group.Group{}, false, err
	}
	for _, g := range groups {
		if NormalizeCode(g.InviteCode) == want {
			return g, true, nil
		}
	}
	return group.Group{}, false, nil
}

// Resolver finds the group a token refers to and enforces the invite-code
// equality check.
type Resolver struct {
	src        GroupSource
	strategies []Strategy
	logger     *logging.Logger
}

func NewResolver(src GroupSource, strategies []Strategy, logger *logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.Default()
	}
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Resolver{
		src:        src,
		strategies: strategies,
		logger:     logger,
	}
}

// ResolveGroup resolves by invite code through the strategy chain. When the
// code resolves to a group other than the one the token names, or when the
// named group exists under a different code, the result is
// ErrSecurityMismatch -- callers present it as not found.
func (r *Resolver) ResolveGroup(ctx context.Context, groupID, inviteCode string) (group.Group, bool, error) {
	for _, strategy := range r.strategies {
		g, found, err := strategy.Resolve(ctx, r.src, inviteCode)
		if err != nil {
			return group.Group{}, false, fmt.Errorf("resolve via %s: %w", strategy.Name, err)
		}
		if !found {
			continue
		}
		if groupID != "" && g.ID != groupID {
			r.logger.WarnContext(ctx, "invite code resolved to a different group",
				"strategy", strategy.Name, "expected", groupID, "resolved", g.ID)
			return group.Group{}, false, ErrSecurityMismatch
		}
		r.logger.DebugContext(ctx, "group resolved", "strategy", strategy.Name, "group_id", g.ID)
		return g, true, nil
	}

	// Nothing matched by code. If the group itself exists its code changed
	// underneath the token, which is a rejected state, not a miss.
	if groupID != "" {
		if _, exists, err := r.src.GetByID(ctx, groupID); err != nil {
			return group.Group{}, false, fmt.Errorf("check group by id: %w", err)
		} else if exists {
			return group.Group{}, false, ErrSecurityMismatch
		}
	}

	return group.Group{}, false, nil
}
