package service

import (
	"context"
	"errors"
	"strings"

	"github.com/careacademy/academy-backend/internal/model"
	"github.com/careacademy/academy-backend/internal/repository"
	"github.com/rs/zerolog"
)

// ErrInvalidSettingKey is returned for empty or oversized setting keys.
var ErrInvalidSettingKey = errors.New("invalid setting key")

const maxSettingKeyLen = 100

type SettingService struct {
	settingRepo *repository.SettingRepository
	log         zerolog.Logger
}

func NewSettingService(settingRepo *repository.SettingRepository, log zerolog.Logger) *SettingService {
	return &SettingService{
		settingRepo: settingRepo,
		log:         log.With().Str("component", "setting_service").Logger(),
	}
}

func toMap(settings []model.AppSetting) map[string]string {
	m := make(map[string]string, len(settings))
	for _, setting := range settings {
		m[setting.Key] = setting.Value
	}
	return m
}

// GetPublicSettings returns only the keys safe to show anonymous visitors.
func (s *SettingService) GetPublicSettings(ctx context.Context) (map[string]string, error) {
	settings, err := s.settingRepo.GetByKeys(ctx, model.PublicSettingKeys)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get public settings")
		return nil, err
	}
	return toMap(settings), nil
}

func (s *SettingService) GetAllSettings(ctx context.Context) (map[string]string, error) {
	settings, err := s.settingRepo.GetAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get all settings")
		return nil, err
	}
	return toMap(settings), nil
}

// UpdateSettings upserts every pair in one transaction and returns the full
// settings map.
func (s *SettingService) UpdateSettings(ctx context.Context, settings map[string]string) (map[string]string, error) {
	clean := make(map[string]string, len(settings))
	for key, value := range settings {
		key = strings.TrimSpace(key)
		if key == "" || len(key) > maxSettingKeyLen {
			return nil, ErrInvalidSettingKey
		}
		clean[key] = value
	}
	if err := s.settingRepo.UpsertMany(ctx, clean); err != nil {
		s.log.Error().Err(err).Msg("failed to update settings")
		return nil, err
	}
	return s.GetAllSettings(ctx)
}
