package user

import "context"

// Repository describes user persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, userID string) (User, bool, error)
	Put(ctx context.Context, u User) error
	Delete(ctx context.Context, userID string) error
}
