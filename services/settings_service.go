package services

import (
	"context"
	"errors"
	"strconv"

	"github.com/g-rown/UAct-BackEnd/model"
	"gorm.io/gorm"
)

// SettingsService reads and writes keyed application settings
type SettingsService struct {
	db *gorm.DB
}

// NewSettingsService creates a new settings service
func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// Get returns the setting for a key
func (s *SettingsService) Get(ctx context.Context, key string) (*model.AppSetting, error) {
	var setting model.AppSetting
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &setting, nil
}

// GetInt returns an integer setting, falling back to def when the key is
// missing or malformed.
func (s *SettingsService) GetInt(ctx context.Context, key string, def int) int {
	setting, err := s.Get(ctx, key)
	if err != nil {
		return def
	}
	value, err := strconv.Atoi(setting.Value)
	if err != nil {
		return def
	}
	return value
}

// Set upserts a setting value
func (s *SettingsService) Set(ctx context.Context, key, value, settingType, description string) (*model.AppSetting, error) {
	var setting model.AppSetting
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		setting = model.AppSetting{
			Key:         key,
			Value:       value,
			Type:        settingType,
			Description: description,
		}
		if err := s.db.WithContext(ctx).Create(&setting).Error; err != nil {
			return nil, err
		}
		return &setting, nil
	}

	setting.Value = value
	if settingType != "" {
		setting.Type = settingType
	}
	if description != "" {
		setting.Description = description
	}
	if err := s.db.WithContext(ctx).Save(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

// List returns all settings
func (s *SettingsService) List(ctx context.Context) ([]model.AppSetting, error) {
	var settings []model.AppSetting
	err := s.db.WithContext(ctx).Order("key ASC").Find(&settings).Error
	return settings, err
}
