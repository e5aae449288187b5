package repository

import (
	"context"

	"eventtix/registrar/internal/model"
)

// SettingsRepository reads and writes the single event settings row.
// Get returns gorm.ErrRecordNotFound before the row is first saved.
type SettingsRepository interface {
	Get(ctx context.Context) (*model.EventSettings, error)
	Save(ctx context.Context, settings *model.EventSettings) error
}
