package model

import "time"

type AdminRole string

const (
	AdminRoleSuperadmin AdminRole = "superadmin"
	AdminRoleReviewer   AdminRole = "reviewer"
)

func (r AdminRole) Valid() bool {
	return r == AdminRoleSuperadmin || r == AdminRoleReviewer
}

type Admin struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name         string     `gorm:"type:varchar(255);not null" json:"name"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	Role         AdminRole  `gorm:"type:varchar(16);not null;default:'reviewer'" json:"role"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

func (Admin) TableName() string { return "admins" }

func (a *Admin) IsActiveSuperadmin() bool {
	return a.IsActive && a.Role == AdminRoleSuperadmin
}
