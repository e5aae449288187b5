package model

import "time"

// Ticket is one admitted seat. QRCodeURL stays nil until the payment is approved.
type Ticket struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	RegistrationID uint      `gorm:"not null;index" json:"registration_id"`
	MemberName     string    `gorm:"type:varchar(255);not null" json:"member_name"`
	SerialCode     string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"serial_code"`
	QRCodeURL      *string   `gorm:"type:varchar(500)" json:"qr_code_url,omitempty"`
	IsActive       bool      `gorm:"not null;default:true" json:"is_active"`
	IssuedAt       time.Time `json:"issued_at"`
	CreatedAt      time.Time `json:"created_at"`

	Attendance *Attendance `gorm:"foreignKey:TicketID" json:"attendance,omitempty"`
}

func (Ticket) TableName() string { return "tickets" }

type Attendance struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	TicketID     uint       `gorm:"uniqueIndex;not null" json:"ticket_id"`
	CheckedIn    bool       `gorm:"not null;default:false" json:"checked_in"`
	CheckInTime  *time.Time `json:"check_in_time,omitempty"`
	CheckInBy    *string    `gorm:"type:varchar(255)" json:"check_in_by,omitempty"`
	CheckedOut   bool       `gorm:"not null;default:false" json:"checked_out"`
	CheckOutTime *time.Time `json:"check_out_time,omitempty"`
	CheckOutBy   *string    `gorm:"type:varchar(255)" json:"check_out_by,omitempty"`
	Notes        *string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (Attendance) TableName() string { return "attendance" }
