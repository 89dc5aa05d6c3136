package setting

import "context"

// Repository describes settings persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]Setting, error)
	GetByID(ctx context.Context, settingID string) (Setting, bool, error)
	Put(ctx context.Context, s Setting) error
	Delete(ctx context.Context, settingID string) error
}
