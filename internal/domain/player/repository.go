package player

import "context"

// Repository describes player persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]Player, error)
	GetByID(ctx context.Context, playerID string) (Player, bool, error)
	ListByGroup(ctx context.Context, groupID string) ([]Player, error)
	Put(ctx context.Context, p Player) error
	Delete(ctx context.Context, playerID string) error
}
