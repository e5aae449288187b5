package repository

import (
	"context"
	"time"

	"eventtix/registrar/internal/model"
)

type RegistrationFilter struct {
	Status *model.PaymentStatus
	Offset int
	Limit  int
}

// RegistrationSummary is the list projection of a registration joined with its payment.
type RegistrationSummary struct {
	ID          uint                `json:"id"`
	Name        string              `json:"name"`
	Email       string              `json:"email"`
	Phone       string              `json:"phone"`
	TeamName    *string             `json:"team_name,omitempty"`
	PaymentType model.PaymentType   `json:"payment_type"`
	Status      model.PaymentStatus `json:"status"`
	TicketCount int64               `json:"ticket_count"`
	CreatedAt   time.Time           `json:"created_at"`
}

type RegistrationRepository interface {
	Create(ctx context.Context, reg *model.Registration) error
	GetByID(ctx context.Context, id uint) (*model.Registration, error)
	GetByEmail(ctx context.Context, email string) (*model.Registration, error)
	// GetDetail loads the registration with payment, tickets (with attendance) and messages.
	GetDetail(ctx context.Context, id uint) (*model.Registration, error)
	List(ctx context.Context, filter RegistrationFilter) ([]RegistrationSummary, int64, error)
	CountByStatus(ctx context.Context) (map[model.PaymentStatus]int64, error)
	CountTeams(ctx context.Context) (int64, error)
	// ListApprovedWithoutSentMessage returns approved registrations that have no
	// successfully sent message of the given type.
	ListApprovedWithoutSentMessage(ctx context.Context, msgType model.MessageType) ([]model.Registration, error)
	// Delete removes the registration and every dependent row.
	Delete(ctx context.Context, id uint) error
}
