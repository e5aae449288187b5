package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"eventtix/registrar/internal/model"
)

type pgTicketRepository struct {
	db *gorm.DB
}

func NewPGTicketRepository(db *gorm.DB) TicketRepository {
	return &pgTicketRepository{db: db}
}

func (r *pgTicketRepository) Create(ctx context.Context, ticket *model.Ticket) error {
	return r.db.WithContext(ctx).Omit("Attendance").Create(ticket).Error
}

func (r *pgTicketRepository) GetBySerial(ctx context.Context, serial string) (*model.Ticket, error) {
	var ticket model.Ticket
	err := r.db.WithContext(ctx).
		Preload("Attendance").
		Where("serial_code = ?", serial).
		First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *pgTicketRepository) GetBySerialForUpdate(ctx context.Context, serial string) (*model.Ticket, error) {
	var ticket model.Ticket
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("serial_code = ?", serial).
		First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *pgTicketRepository) ListByRegistrationID(ctx context.Context, registrationID uint) ([]model.Ticket, error) {
	var tickets []model.Ticket
	err := r.db.WithContext(ctx).
		Preload("Attendance").
		Where("registration_id = ?", registrationID).
		Order("serial_code ASC").
		Find(&tickets).Error
	return tickets, err
}

func (r *pgTicketRepository) UpdateQRCode(ctx context.Context, id uint, url string) error {
	return r.db.WithContext(ctx).
		Model(&model.Ticket{}).
		Where("id = ?", id).
		UpdateColumn("qr_code_url", url).
		Error
}

func (r *pgTicketRepository) SetActive(ctx context.Context, id uint, active bool) error {
	return r.db.WithContext(ctx).
		Model(&model.Ticket{}).
		Where("id = ?", id).
		UpdateColumn("is_active", active).
		Error
}

func (r *pgTicketRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Ticket{}).Count(&n).Error
	return n, err
}

type pgAttendanceRepository struct {
	db *gorm.DB
}

func NewPGAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &pgAttendanceRepository{db: db}
}

func (r *pgAttendanceRepository) Create(ctx context.Context, attendance *model.Attendance) error {
	return r.db.WithContext(ctx).Create(attendance).Error
}

func (r *pgAttendanceRepository) GetByTicketID(ctx context.Context, ticketID uint) (*model.Attendance, error) {
	var attendance model.Attendance
	if err := r.db.WithContext(ctx).Where("ticket_id = ?", ticketID).First(&attendance).Error; err != nil {
		return nil, err
	}
	return &attendance, nil
}

func (r *pgAttendanceRepository) Update(ctx context.Context, attendance *model.Attendance) error {
	return r.db.WithContext(ctx).Save(attendance).Error
}

func (r *pgAttendanceRepository) CountCheckedIn(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Attendance{}).Where("checked_in = ?", true).Count(&n).Error
	return n, err
}
