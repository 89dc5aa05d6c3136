package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/clubkit/clubkit/internal/domain/setting"
	"github.com/clubkit/clubkit/internal/recordstore"
	"github.com/clubkit/clubkit/internal/replicate"
)

type SettingService struct {
	settingRepo setting.Repository
	replicator  replicate.Replicator
	now         func() time.Time
}

func NewSettingService(settingRepo setting.Repository, replicator replicate.Replicator) *SettingService {
	if replicator == nil {
		replicator = replicate.Noop{}
	}
	return &SettingService{
		settingRepo: settingRepo,
		replicator:  replicator,
		now:         time.Now,
	}
}

func (s *SettingService) ListSettings(ctx context.Context) ([]setting.Setting, error) {
	ctx, span := startUsecaseSpan(ctx, "SettingService.ListSettings")
	defer span.End()

	settings, err := s.settingRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return settings, nil
}

func (s *SettingService) GetSetting(ctx context.Context, settingID string) (setting.Setting, error) {
	ctx, span := startUsecaseSpan(ctx, "SettingService.GetSetting")
	defer span.End()

	settingID = strings.TrimSpace(settingID)
	if settingID == "" {
		return setting.Setting{}, fmt.Errorf("%w: setting id is required", ErrInvalidInput)
	}

	v, exists, err := s.settingRepo.GetByID(ctx, settingID)
	if err != nil {
		return setting.Setting{}, fmt.Errorf("get setting by id: %w", err)
	}
	if !exists {
		return setting.Setting{}, fmt.Errorf("%w: setting not found", ErrNotFound)
	}
	return v, nil
}

func (s *SettingService) PutSetting(ctx context.Context, settingID string, value any) (setting.Setting, error) {
	ctx, span := startUsecaseSpan(ctx, "SettingService.PutSetting")
	defer span.End()

	settingID = strings.TrimSpace(settingID)
	if settingID == "" {
		return setting.Setting{}, fmt.Errorf("%w: setting id is required", ErrInvalidInput)
	}

	v := setting.Setting{
		ID:        settingID,
		Value:     value,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.settingRepo.Put(ctx, v); err != nil {
		return setting.Setting{}, fmt.Errorf("put setting: %w", err)
	}
	s.replicator.Replicate(ctx, recordstore.CollectionSettings, replicate.OpPut, v.ID, v)

	return v, nil
}

func (s *SettingService) DeleteSetting(ctx context.Context, settingID string) error {
	ctx, span := startUsecaseSpan(ctx, "SettingService.DeleteSetting")
	defer span.End()

	settingID = strings.TrimSpace(settingID)
	if settingID == "" {
		return fmt.Errorf("%w: setting id is required", ErrInvalidInput)
	}

	if err := s.settingRepo.Delete(ctx, settingID); err != nil {
		return fmt.Errorf("delete setting: %w", err)
	}
	s.replicator.Replicate(ctx, recordstore.CollectionSettings, replicate.OpDelete, settingID, nil)

	return nil
}
