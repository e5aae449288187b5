package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"eventtix/registrar/internal/model"
)

type pgPaymentRepository struct {
	db *gorm.DB
}

func NewPGPaymentRepository(db *gorm.DB) PaymentRepository {
	return &pgPaymentRepository{db: db}
}

func (r *pgPaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *pgPaymentRepository) GetByRegistrationID(ctx context.Context, registrationID uint) (*model.Payment, error) {
	var payment model.Payment
	if err := r.db.WithContext(ctx).Where("registration_id = ?", registrationID).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *pgPaymentRepository) GetByRegistrationIDForUpdate(ctx context.Context, registrationID uint) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("registration_id = ?", registrationID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *pgPaymentRepository) Update(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}
