// Package memory holds map-backed repositories used by tests and seeding.
package memory

import (
	"context"
	"sync"

	"github.com/clubkit/clubkit/internal/domain/group"
)

type GroupRepository struct {
	mu     sync.RWMutex
	items  map[string]group.Group
	orders []string
}

func NewGroupRepository(groups []group.Group) *GroupRepository {
	items := make(map[string]group.Group, len(groups))
	orders := make([]string, 0, len(groups))

	for _, g := range groups {
		items[g.ID] = g
		orders = append(orders, g.ID)
	}

	return &GroupRepository{
		items:  items,
		orders: orders,
	}
}

func (r *GroupRepository) List(_ context.Context) ([]group.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]group.Group, 0, len(r.orders))
	for _, id := range r.orders {
		out = append(out, r.items[id])
	}

	return out, nil
}

func (r *GroupRepository) GetByID(_ context.Context, groupID string) (group.Group, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.items[groupID]
	if !ok {
		return group.Group{}, false, nil
	}

	return g, true, nil
}

func (r *GroupRepository) GetByInviteCode(_ context.Context, inviteCode string) (group.Group, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.orders {
		if r.items[id].InviteCode == inviteCode {
			return r.items[id], true, nil
		}
	}

	return group.Group{}, false, nil
}

func (r *GroupRepository) ListByCreator(_ context.Context, userID string) ([]group.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []group.Group
	for _, id := range r.orders {
		if r.items[id].CreatedBy == userID {
			out = append(out, r.items[id])
		}
	}

	return out, nil
}

func (r *GroupRepository) Put(_ context.Context, g group.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[g.ID]; !exists {
		r.orders = append(r.orders, g.ID)
	}
	r.items[g.ID] = g

	return nil
}

func (r *GroupRepository) Delete(_ context.Context, groupID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[groupID]; !exists {
		return nil
	}
	delete(r.items, groupID)
	for i, id := range r.orders {
		if id == groupID {
			r.orders = append(r.orders[:i], r.orders[i+1:]...)
			break
		}
	}

	return nil
}
