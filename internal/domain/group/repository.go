package group

import "context"

// Repository describes group persistence needs from use cases.
// GetByInviteCode is an indexed lookup; implementations fall back to a
// full scan when the index is unavailable.
type Repository interface {
	List(ctx context.Context) ([]Group, error)
	GetByID(ctx context.Context, groupID string) (Group, bool, error)
	GetByInviteCode(ctx context.Context, inviteCode string) (Group, bool, error)
	ListByCreator(ctx context.Context, userID string) ([]Group, error)
	Put(ctx context.Context, g Group) error
	Delete(ctx context.Context, groupID string) error
}
