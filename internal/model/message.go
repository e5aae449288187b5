package model

import "time"

type MessageType string

const (
	MessageTypeConfirmation MessageType = "confirmation"
	MessageTypeApproval     MessageType = "approval"
	MessageTypeRejection    MessageType = "rejection"
	MessageTypeReminder     MessageType = "reminder"
)

// Message is an append-only record of one outbound notification attempt.
type Message struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	RegistrationID uint        `gorm:"not null;index" json:"registration_id"`
	MessageType    MessageType `gorm:"type:varchar(16);not null" json:"message_type"`
	Subject        string      `gorm:"type:varchar(255);not null" json:"subject"`
	RecipientEmail string      `gorm:"type:varchar(255);not null" json:"recipient_email"`
	HasAttachment  bool        `gorm:"not null;default:false" json:"has_attachment"`
	Sent           bool        `gorm:"not null;default:false" json:"sent"`
	SentAt         *time.Time  `json:"sent_at,omitempty"`
	ErrorMessage   *string     `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

func (Message) TableName() string { return "messages" }
