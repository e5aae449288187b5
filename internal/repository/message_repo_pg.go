package repository

import (
	"context"

	"gorm.io/gorm"

	"eventtix/registrar/internal/model"
)

type pgMessageRepository struct {
	db *gorm.DB
}

func NewPGMessageRepository(db *gorm.DB) MessageRepository {
	return &pgMessageRepository{db: db}
}

func (r *pgMessageRepository) Create(ctx context.Context, msg *model.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *pgMessageRepository) ListByRegistrationID(ctx context.Context, registrationID uint) ([]model.Message, error) {
	var msgs []model.Message
	err := r.db.WithContext(ctx).
		Where("registration_id = ?", registrationID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	return msgs, err
}
