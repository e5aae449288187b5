package repository

import (
	"context"

	"gorm.io/gorm"

	"eventtix/registrar/internal/model"
)

type pgRegistrationRepository struct {
	db *gorm.DB
}

func NewPGRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &pgRegistrationRepository{db: db}
}

func (r *pgRegistrationRepository) Create(ctx context.Context, reg *model.Registration) error {
	return r.db.WithContext(ctx).Omit("Payment", "Tickets", "Messages").Create(reg).Error
}

func (r *pgRegistrationRepository) GetByID(ctx context.Context, id uint) (*model.Registration, error) {
	var reg model.Registration
	if err := r.db.WithContext(ctx).First(&reg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *pgRegistrationRepository) GetByEmail(ctx context.Context, email string) (*model.Registration, error) {
	var reg model.Registration
	if err := r.db.WithContext(ctx).Where("lower(email) = lower(?)", email).First(&reg).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *pgRegistrationRepository) GetDetail(ctx context.Context, id uint) (*model.Registration, error) {
	var reg model.Registration
	err := r.db.WithContext(ctx).
		Preload("Payment").
		Preload("Tickets", func(db *gorm.DB) *gorm.DB { return db.Order("serial_code ASC") }).
		Preload("Tickets.Attendance").
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&reg, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *pgRegistrationRepository) List(ctx context.Context, filter RegistrationFilter) ([]RegistrationSummary, int64, error) {
	query := r.db.WithContext(ctx).
		Table("registrations AS r").
		Joins("JOIN payments p ON p.registration_id = r.id")
	if filter.Status != nil {
		query = query.Where("p.status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []RegistrationSummary
	err := query.
		Select("r.id, r.name, r.email, r.phone, r.team_name, r.payment_type, p.status, r.created_at, " +
			"(SELECT COUNT(*) FROM tickets t WHERE t.registration_id = r.id) AS ticket_count").
		Order("r.created_at DESC, r.id DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *pgRegistrationRepository) CountByStatus(ctx context.Context) (map[model.PaymentStatus]int64, error) {
	var rows []struct {
		Status model.PaymentStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[model.PaymentStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *pgRegistrationRepository) CountTeams(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Registration{}).
		Where("payment_type = ?", model.PaymentTypeBulk).
		Count(&n).Error
	return n, err
}

func (r *pgRegistrationRepository) ListApprovedWithoutSentMessage(ctx context.Context, msgType model.MessageType) ([]model.Registration, error) {
	var regs []model.Registration
	err := r.db.WithContext(ctx).
		Joins("JOIN payments p ON p.registration_id = registrations.id").
		Where("p.status = ?", model.PaymentStatusApproved).
		Where("NOT EXISTS (SELECT 1 FROM messages m WHERE m.registration_id = registrations.id AND m.message_type = ? AND m.sent)", msgType).
		Order("registrations.id ASC").
		Find(&regs).Error
	return regs, err
}

func (r *pgRegistrationRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("ticket_id IN (?)",
		db.Model(&model.Ticket{}).Select("id").Where("registration_id = ?", id),
	).Delete(&model.Attendance{}).Error; err != nil {
		return err
	}
	if err := db.Where("registration_id = ?", id).Delete(&model.Ticket{}).Error; err != nil {
		return err
	}
	if err := db.Where("registration_id = ?", id).Delete(&model.Message{}).Error; err != nil {
		return err
	}
	if err := db.Where("registration_id = ?", id).Delete(&model.Payment{}).Error; err != nil {
		return err
	}
	res := db.Delete(&model.Registration{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
