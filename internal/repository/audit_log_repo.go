package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"

	"eventtix/registrar/internal/model"
)

type AuditFilter struct {
	AdminID        *uint
	Action         *model.AuditAction
	RegistrationID *uint
	Offset         int
	Limit          int
}

// AuditEntry is an audit row joined with the acting admin's name and email.
type AuditEntry struct {
	ID             uint              `json:"id"`
	AdminID        uint              `json:"admin_id"`
	AdminName      string            `json:"admin_name"`
	AdminEmail     string            `json:"admin_email"`
	Action         model.AuditAction `json:"action"`
	Details        datatypes.JSON    `json:"details,omitempty"`
	RegistrationID *uint             `json:"registration_id,omitempty"`
	IPAddress      *string           `json:"ip_address,omitempty"`
	UserAgent      *string           `json:"user_agent,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

type AuditLogRepository interface {
	Create(ctx context.Context, entry *model.AuditLog) error
	// List returns entries newest first.
	List(ctx context.Context, filter AuditFilter) ([]AuditEntry, error)
	Count(ctx context.Context) (int64, error)
	CountByAction(ctx context.Context) (map[model.AuditAction]int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
}
