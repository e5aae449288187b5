package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"eventtix/registrar/internal/model"
)

type pgAuditLogRepository struct {
	db *gorm.DB
}

func NewPGAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &pgAuditLogRepository{db: db}
}

func (r *pgAuditLogRepository) Create(ctx context.Context, entry *model.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *pgAuditLogRepository) List(ctx context.Context, filter AuditFilter) ([]AuditEntry, error) {
	query := r.db.WithContext(ctx).
		Table("audit_logs AS a").
		Select("a.id, a.admin_id, a.action, a.details, a.registration_id, a.ip_address, a.user_agent, a.created_at, " +
			"COALESCE(ad.name, '') AS admin_name, COALESCE(ad.email, '') AS admin_email").
		Joins("LEFT JOIN admins ad ON ad.id = a.admin_id")
	if filter.AdminID != nil {
		query = query.Where("a.admin_id = ?", *filter.AdminID)
	}
	if filter.Action != nil {
		query = query.Where("a.action = ?", *filter.Action)
	}
	if filter.RegistrationID != nil {
		query = query.Where("a.registration_id = ?", *filter.RegistrationID)
	}

	var entries []AuditEntry
	err := query.
		Order("a.created_at DESC, a.id DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Scan(&entries).Error
	return entries, err
}

func (r *pgAuditLogRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.AuditLog{}).Count(&n).Error
	return n, err
}

func (r *pgAuditLogRepository) CountByAction(ctx context.Context) (map[model.AuditAction]int64, error) {
	var rows []struct {
		Action model.AuditAction
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.AuditLog{}).
		Select("action, COUNT(*) AS count").
		Group("action").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[model.AuditAction]int64, len(rows))
	for _, row := range rows {
		counts[row.Action] = row.Count
	}
	return counts, nil
}

func (r *pgAuditLogRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.AuditLog{}).Where("created_at >= ?", since).Count(&n).Error
	return n, err
}
