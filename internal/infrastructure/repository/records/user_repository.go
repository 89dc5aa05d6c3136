package records

import (
	"context"
	"fmt"

	"github.com/clubkit/clubkit/internal/domain/user"
	"github.com/clubkit/clubkit/internal/recordstore"
)

type UserRepository struct {
	store *recordstore.Store
}

func NewUserRepository(store *recordstore.Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) List(ctx context.Context) ([]user.User, error) {
	recs, err := r.store.GetAll(ctx, recordstore.CollectionUsers)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return asTyped[user.User](recs)
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (user.User, bool, error) {
	rec, found, err := r.store.Get(ctx, recordstore.CollectionUsers, userID)
	if err != nil {
		return user.User{}, false, fmt.Errorf("get user by id: %w", err)
	}
	if !found {
		return user.User{}, false, nil
	}

	u, ok := rec.(user.User)
	if !ok {
		return user.User{}, false, fmt.Errorf("unexpected record type %T", rec)
	}
	return u, true, nil
}

func (r *UserRepository) Put(ctx context.Context, u user.User) error {
	if err := r.store.Put(ctx, recordstore.CollectionUsers, u); err != nil {
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, userID string) error {
	if err := r.store.Delete(ctx, recordstore.CollectionUsers, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
