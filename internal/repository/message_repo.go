package repository

import (
	"context"

	"eventtix/registrar/internal/model"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	ListByRegistrationID(ctx context.Context, registrationID uint) ([]model.Message, error)
}
