package model

import (
	"time"

	"gorm.io/datatypes"
)

type PaymentType string

const (
	PaymentTypeIndividual PaymentType = "individual"
	PaymentTypeBulk       PaymentType = "bulk"
)

func (t PaymentType) Valid() bool {
	return t == PaymentTypeIndividual || t == PaymentTypeBulk
}

// Registration is one signup: an individual participant or a team leader.
type Registration struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Email       string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone       string         `gorm:"type:varchar(20);not null" json:"phone"`
	TeamName    *string        `gorm:"type:varchar(255)" json:"team_name,omitempty"`
	Members     datatypes.JSON `gorm:"type:jsonb" json:"members,omitempty"`
	PaymentType PaymentType    `gorm:"type:varchar(16);not null;default:'individual'" json:"payment_type"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	Payment  *Payment  `gorm:"foreignKey:RegistrationID" json:"payment,omitempty"`
	Tickets  []Ticket  `gorm:"foreignKey:RegistrationID" json:"tickets,omitempty"`
	Messages []Message `gorm:"foreignKey:RegistrationID" json:"messages,omitempty"`
}

func (Registration) TableName() string { return "registrations" }

func (r *Registration) IsBulk() bool { return r.PaymentType == PaymentTypeBulk }
