package model

import "time"

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusApproved PaymentStatus = "approved"
	PaymentStatusRejected PaymentStatus = "rejected"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusApproved, PaymentStatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no transition out of s exists.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusApproved || s == PaymentStatusRejected
}

type Payment struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	RegistrationID  uint          `gorm:"uniqueIndex;not null" json:"registration_id"`
	ScreenshotURL   string        `gorm:"type:varchar(500)" json:"screenshot_url"`
	Amount          float64       `gorm:"type:decimal(10,2)" json:"amount"`
	Method          string        `gorm:"type:varchar(50)" json:"method"`
	Status          PaymentStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	RejectionReason *string       `gorm:"type:text" json:"rejection_reason,omitempty"`
	ApprovedBy      *string       `gorm:"type:varchar(255)" json:"approved_by,omitempty"`
	ApprovedAt      *time.Time    `json:"approved_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (Payment) TableName() string { return "payments" }
