package repository

import (
	"context"

	"gorm.io/gorm"

	"eventtix/registrar/internal/model"
)

type pgSettingsRepository struct {
	db *gorm.DB
}

func NewPGSettingsRepository(db *gorm.DB) SettingsRepository {
	return &pgSettingsRepository{db: db}
}

func (r *pgSettingsRepository) Get(ctx context.Context) (*model.EventSettings, error) {
	var settings model.EventSettings
	if err := r.db.WithContext(ctx).First(&settings, "id = ?", model.EventSettingsID).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *pgSettingsRepository) Save(ctx context.Context, settings *model.EventSettings) error {
	settings.ID = model.EventSettingsID
	return r.db.WithContext(ctx).Save(settings).Error
}
