package model

import "time"

// EventSettingsID is the primary key of the single settings row.
const EventSettingsID uint = 1

type EventSettings struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	EventName             string    `gorm:"type:varchar(255);not null" json:"event_name"`
	EventType             string    `gorm:"type:varchar(255)" json:"event_type"`
	EventDate             string    `gorm:"type:varchar(10)" json:"event_date"`
	EventTime             string    `gorm:"type:varchar(5)" json:"event_time"`
	EventVenue            string    `gorm:"type:varchar(255)" json:"event_venue"`
	EventLocation         string    `gorm:"type:text" json:"event_location"`
	IndividualPrice       float64   `gorm:"type:decimal(10,2);not null" json:"individual_price"`
	BulkPrice             float64   `gorm:"type:decimal(10,2);not null" json:"bulk_price"`
	BulkTeamSize          int       `gorm:"not null;default:4" json:"bulk_team_size"`
	Currency              string    `gorm:"type:varchar(3);not null;default:'INR'" json:"currency"`
	UPIID                 string    `gorm:"column:upi_id;type:varchar(255)" json:"upi_id"`
	OrganizationName      string    `gorm:"type:varchar(255)" json:"organization_name"`
	SupportEmail          string    `gorm:"type:varchar(255)" json:"support_email"`
	ApprovalEmailSubject  string    `gorm:"type:varchar(255)" json:"approval_email_subject"`
	RejectionEmailSubject string    `gorm:"type:varchar(255)" json:"rejection_email_subject"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (EventSettings) TableName() string { return "event_settings" }
