package model

import (
	"time"

	"gorm.io/datatypes"
)

type AuditAction string

const (
	AuditActionLogin             AuditAction = "LOGIN"
	AuditActionLogout            AuditAction = "LOGOUT"
	AuditActionCreateAdmin       AuditAction = "CREATE_ADMIN"
	AuditActionUpdateAdmin       AuditAction = "UPDATE_ADMIN"
	AuditActionDeleteAdmin       AuditAction = "DELETE_ADMIN"
	AuditActionUpdateSettings    AuditAction = "UPDATE_SETTINGS"
	AuditActionApprovePayment    AuditAction = "APPROVE_PAYMENT"
	AuditActionRejectPayment     AuditAction = "REJECT_PAYMENT"
	AuditActionPurgeRegistration AuditAction = "PURGE_REGISTRATION"
	AuditActionTicketCheckIn     AuditAction = "TICKET_CHECKIN"
	AuditActionTicketCheckOut    AuditAction = "TICKET_CHECKOUT"
	AuditActionDeactivateTicket  AuditAction = "DEACTIVATE_TICKET"
	AuditActionActivateTicket    AuditAction = "ACTIVATE_TICKET"
	AuditActionResetCheckIn      AuditAction = "RESET_CHECKIN"
)

// AuditLog rows are written once and never updated or deleted.
// AdminID and RegistrationID carry no foreign keys so history survives
// admin deletion and registration purges.
type AuditLog struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	AdminID        uint           `gorm:"not null;index" json:"admin_id"`
	Action         AuditAction    `gorm:"type:varchar(64);not null;index" json:"action"`
	Details        datatypes.JSON `gorm:"type:jsonb" json:"details,omitempty"`
	RegistrationID *uint          `gorm:"index" json:"registration_id,omitempty"`
	IPAddress      *string        `gorm:"type:varchar(64)" json:"ip_address,omitempty"`
	UserAgent      *string        `gorm:"type:varchar(512)" json:"user_agent,omitempty"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }
