package repository

import (
	"context"

	"eventtix/registrar/internal/model"
)

type TicketRepository interface {
	Create(ctx context.Context, ticket *model.Ticket) error
	// GetBySerial loads the ticket with its attendance row, if any.
	GetBySerial(ctx context.Context, serial string) (*model.Ticket, error)
	// GetBySerialForUpdate locks the ticket row until the surrounding transaction ends.
	GetBySerialForUpdate(ctx context.Context, serial string) (*model.Ticket, error)
	ListByRegistrationID(ctx context.Context, registrationID uint) ([]model.Ticket, error)
	UpdateQRCode(ctx context.Context, id uint, url string) error
	SetActive(ctx context.Context, id uint, active bool) error
	Count(ctx context.Context) (int64, error)
}

type AttendanceRepository interface {
	Create(ctx context.Context, attendance *model.Attendance) error
	GetByTicketID(ctx context.Context, ticketID uint) (*model.Attendance, error)
	Update(ctx context.Context, attendance *model.Attendance) error
	CountCheckedIn(ctx context.Context) (int64, error)
}
