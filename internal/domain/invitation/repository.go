package invitation

import "context"

// Repository describes invitation persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]Invitation, error)
	GetByID(ctx context.Context, invitationID string) (Invitation, bool, error)
	ListByGroup(ctx context.Context, groupID string) ([]Invitation, error)
	Put(ctx context.Context, i Invitation) error
	Delete(ctx context.Context, invitationID string) error
}
