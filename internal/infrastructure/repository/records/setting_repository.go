package records

import (
	"context"
	"fmt"

	"github.com/clubkit/clubkit/internal/domain/setting"
	"github.com/clubkit/clubkit/internal/recordstore"
)

type SettingRepository struct {
	store *recordstore.Store
}

func NewSettingRepository(store *recordstore.Store) *SettingRepository {
	return &SettingRepository{store: store}
}

func (r *SettingRepository) List(ctx context.Context) ([]setting.Setting, error) {
	recs, err := r.store.GetAll(ctx, recordstore.CollectionSettings)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return asTyped[setting.Setting](recs)
}

func (r *SettingRepository) GetByID(ctx context.Context, settingID string) (setting.Setting, bool, error) {
	rec, found, err := r.store.Get(ctx, recordstore.CollectionSettings, settingID)
	if err != nil {
		return setting.Setting{}, false, fmt.Errorf("get setting by id: %w", err)
	}
	if !found {
		return setting.Setting{}, false, nil
	}

	v, ok := rec.(setting.Setting)
	if !ok {
		return setting.Setting{}, false, fmt.Errorf("unexpected record type %T", rec)
	}
	return v, true, nil
}

func (r *SettingRepository) Put(ctx context.Context, s setting.Setting) error {
	if err := r.store.Put(ctx, recordstore.CollectionSettings, s); err != nil {
		return fmt.Errorf("put setting: %w", err)
	}
	return nil
}

func (r *SettingRepository) Delete(ctx context.Context, settingID string) error {
	if err := r.store.Delete(ctx, recordstore.CollectionSettings, settingID); err != nil {
		return fmt.Errorf("delete setting: %w", err)
	}
	return nil
}
