package service

import (
	"context"
	"time"

	"github.com/haierkeys/markdown-workspace-service/internal/domain"
	"github.com/haierkeys/markdown-workspace-service/internal/dto"
	"github.com/haierkeys/markdown-workspace-service/pkg/code"

	"go.uber.org/zap"
)

// SettingService exposes the key/value preferences.
type SettingService interface {
	Get(ctx context.Context, key string) (*dto.SettingDTO, error)
	List(ctx context.Context) ([]*dto.SettingDTO, error)
	Set(ctx context.Context, params *dto.SettingSetRequest) (*dto.SettingDTO, error)
	Delete(ctx context.Context, key string) error
}

type settingService struct {
	settingRepo domain.SettingRepository
	logger      *zap.Logger
}

func NewSettingService(settingRepo domain.SettingRepository, lg *zap.Logger) SettingService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &settingService{settingRepo: settingRepo, logger: lg}
}

func (s *settingService) Get(ctx context.Context, key string) (*dto.SettingDTO, error) {
	setting, err := s.settingRepo.Get(ctx, key)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if setting == nil {
		return nil, code.ErrorSettingNotFound
	}
	return settingToDTO(setting), nil
}

func (s *settingService) List(ctx context.Context) ([]*dto.SettingDTO, error) {
	settings, err := s.settingRepo.List(ctx)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	res := make([]*dto.SettingDTO, 0, len(settings))
	for _, st := range settings {
		res = append(res, settingToDTO(st))
	}
	return res, nil
}

func (s *settingService) Set(ctx context.Context, params *dto.SettingSetRequest) (*dto.SettingDTO, error) {
	setting := &domain.Setting{
		Key:       params.Key,
		Value:     params.Value,
		UpdatedAt: time.Now().UnixMilli(),
	}
	if err := s.settingRepo.Set(ctx, setting); err != nil {
		return nil, code.ErrorDBWrite.WithDetails(err.Error())
	}
	return settingToDTO(setting), nil
}

func (s *settingService) Delete(ctx context.Context, key string) error {
	if err := s.settingRepo.Delete(ctx, key); err != nil {
		return code.ErrorDBWrite.WithDetails(err.Error())
	}
	return nil
}

func settingToDTO(s *domain.Setting) *dto.SettingDTO {
	if s == nil {
		return nil
	}
	return &dto.SettingDTO{
		Key:       s.Key,
		Value:     s.Value,
		UpdatedAt: s.UpdatedAt,
	}
}
