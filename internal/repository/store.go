package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories groups every repository bound to the same connection or transaction.
type Repositories struct {
	Registrations RegistrationRepository
	Payments      PaymentRepository
	Tickets       TicketRepository
	Attendance    AttendanceRepository
	Messages      MessageRepository
	Admins        AdminRepository
	AuditLogs     AuditLogRepository
	Settings      SettingsRepository
}

// Store hands out repositories and runs work atomically.
// Repositories passed to fn must not escape it.
type Store interface {
	Repositories() *Repositories
	WithTx(ctx context.Context, fn func(tx *Repositories) error) error
}

type pgStore struct {
	db    *gorm.DB
	repos *Repositories
}

func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db, repos: newPGRepositories(db)}
}

func (s *pgStore) Repositories() *Repositories { return s.repos }

func (s *pgStore) WithTx(ctx context.Context, fn func(tx *Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newPGRepositories(tx))
	})
}

func newPGRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Registrations: NewPGRegistrationRepository(db),
		Payments:      NewPGPaymentRepository(db),
		Tickets:       NewPGTicketRepository(db),
		Attendance:    NewPGAttendanceRepository(db),
		Messages:      NewPGMessageRepository(db),
		Admins:        NewPGAdminRepository(db),
		AuditLogs:     NewPGAuditLogRepository(db),
		Settings:      NewPGSettingsRepository(db),
	}
}
