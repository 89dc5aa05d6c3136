package memory

import (
	"context"
	"sync"

	"github.com/clubkit/clubkit/internal/domain/user"
)

type UserRepository struct {
	mu     sync.RWMutex
	items  map[string]user.User
	orders []string
}

func NewUserRepository(users []user.User) *UserRepository {
	items := make(map[string]user.User, len(users))
	orders := make([]string, 0, len(users))

	for _, u := range users {
		items[u.ID] = u
		orders = append(orders, u.ID)
	}

	return &UserRepository{
		items:  items,
		orders: orders,
	}
}

func (r *UserRepository) List(_ context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, len(r.orders))
	for _, id := range r.orders {
		out = append(out, r.items[id])
	}

	return out, nil
}

func (r *UserRepository) GetByID(_ context.Context, userID string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[userID]
	if !ok {
		return user.User{}, false, nil
	}

	return u, true, nil
}

func (r *UserRepository) Put(_ context.Context, u user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[u.ID]; !exists {
		r.orders = append(r.orders, u.ID)
	}
	r.items[u.ID] = u

	return nil
}

func (r *UserRepository) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[userID]; !exists {
		return nil
	}
	delete(r.items, userID)
	for i, id := range r.orders {
		if id == userID {
			r.orders = append(r.orders[:i], r.orders[i+1:]...)
			break
		}
	}

	return nil
}
