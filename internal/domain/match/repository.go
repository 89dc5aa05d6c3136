package match

import "context"

// Repository describes match persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]Match, error)
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	ListByGroup(ctx context.Context, groupID string) ([]Match, error)
	ListByStatus(ctx context.Context, status Status) ([]Match, error)
	Put(ctx context.Context, m Match) error
	Delete(ctx context.Context, matchID string) error
}
