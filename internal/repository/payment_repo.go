package repository

import (
	"context"

	"eventtix/registrar/internal/model"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	GetByRegistrationID(ctx context.Context, registrationID uint) (*model.Payment, error)
	// GetByRegistrationIDForUpdate locks the payment row until the surrounding transaction ends.
	GetByRegistrationIDForUpdate(ctx context.Context, registrationID uint) (*model.Payment, error)
	Update(ctx context.Context, payment *model.Payment) error
}
