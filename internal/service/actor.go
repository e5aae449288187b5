package service

import "eventtix/registrar/internal/model"

// Actor is the authenticated admin performing an operation, plus request metadata for auditing.
type Actor struct {
	AdminID   uint
	Username  string
	Role      model.AdminRole
	IP        string
	UserAgent string
}

func (a Actor) IsSuperadmin() bool { return a.Role == model.AdminRoleSuperadmin }

func (a Actor) requireSuperadmin() error {
	if !a.IsSuperadmin() {
		return ErrInsufficientRole
	}
	return nil
}

func (a Actor) record(action model.AuditAction, registrationID *uint, details map[string]any) AuditRecord {
	return AuditRecord{
		AdminID:        a.AdminID,
		Action:         action,
		Details:        details,
		RegistrationID: registrationID,
		IP:             a.IP,
		UserAgent:      a.UserAgent,
	}
}
