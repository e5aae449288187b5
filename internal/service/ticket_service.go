package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"eventtix/registrar/internal/model"
	"eventtix/registrar/internal/repository"
)

const (
	ReasonNotFound           = "Ticket not found"
	ReasonPaymentNotApproved = "Payment not approved"
	ReasonDeactivated        = "Ticket has been deactivated"
	ReasonAlreadyCheckedIn   = "Ticket already checked in"
	ReasonReady              = "Ready for check-in"
)

type TicketDetails struct {
	SerialCode      string              `json:"serial_code"`
	MemberName      string              `json:"member_name"`
	RegistrationID  uint                `json:"registration_id"`
	RegistrantName  string              `json:"registrant_name"`
	RegistrantEmail string              `json:"registrant_email"`
	RegistrantPhone string              `json:"registrant_phone"`
	TeamName        *string             `json:"team_name,omitempty"`
	PaymentType     model.PaymentType   `json:"payment_type"`
	PaymentStatus   model.PaymentStatus `json:"payment_status"`
	IsActive        bool                `json:"is_active"`
	CheckedIn       bool                `json:"checked_in"`
	CheckInTime     *time.Time          `json:"check_in_time,omitempty"`
	CheckInBy       *string             `json:"check_in_by,omitempty"`
	CheckedOut      bool                `json:"checked_out"`
	CheckOutTime    *time.Time          `json:"check_out_time,omitempty"`
}

// VerifyResult is the scanner's answer. Code is empty when Valid is true.
type VerifyResult struct {
	Valid   bool           `json:"valid"`
	Reason  string         `json:"reason"`
	Code    string         `json:"code,omitempty"`
	Details *TicketDetails `json:"details,omitempty"`
}

type TicketService interface {
	Verify(ctx context.Context, serial string) (*VerifyResult, error)
	CheckIn(ctx context.Context, serial string, actor Actor) (*TicketDetails, error)
	CheckOut(ctx context.Context, serial string, actor Actor) (*TicketDetails, error)
	SetActive(ctx context.Context, serial string, active bool, actor Actor) (*TicketDetails, error)
	ResetAttendance(ctx context.Context, serial string, actor Actor) (*TicketDetails, error)
}

type ticketService struct {
	store  repository.Store
	audit  AuditService
	logger *zap.Logger
	now    func() time.Time
}

func NewTicketService(store repository.Store, audit AuditService, logger *zap.Logger) TicketService {
	return &ticketService{store: store, audit: audit, logger: logger, now: time.Now}
}

func (s *ticketService) Verify(ctx context.Context, serial string) (*VerifyResult, error) {
	serial = NormalizeSerial(serial)
	repos := s.store.Repositories()

	ticket, err := repos.Tickets.GetBySerial(ctx, serial)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &VerifyResult{Reason: ReasonNotFound, Code: ErrTicketNotFound.Code}, nil
	}
	if err != nil {
		return nil, dbError(err)
	}
	reg, payment, err := loadOwner(ctx, repos, ticket.RegistrationID)
	if err != nil {
		return nil, err
	}
	details := ticketDetails(ticket, reg, payment, ticket.Attendance)

	switch {
	case payment.Status != model.PaymentStatusApproved:
		return &VerifyResult{Reason: ReasonPaymentNotApproved, Code: ErrPaymentNotApproved.Code, Details: details}, nil
	case !ticket.IsActive:
		return &VerifyResult{Reason: ReasonDeactivated, Code: ErrTicketDeactivated.Code, Details: details}, nil
	case details.CheckedIn:
		return &VerifyResult{Reason: ReasonAlreadyCheckedIn, Code: ErrAlreadyCheckedIn.Code, Details: details}, nil
	}
	return &VerifyResult{Valid: true, Reason: ReasonReady, Details: details}, nil
}

func (s *ticketService) CheckIn(ctx context.Context, serial string, actor Actor) (*TicketDetails, error) {
	var details *TicketDetails
	err := s.withLockedTicket(ctx, serial, true, func(tx *repository.Repositories, lt *lockedTicket) error {
		if lt.attendance.CheckedIn {
			return checkedInError(lt.attendance.CheckInTime)
		}
		now := s.now()
		lt.attendance.CheckedIn = true
		lt.attendance.CheckInTime = &now
		lt.attendance.CheckInBy = &actor.Username
		if err := tx.Attendance.Update(ctx, lt.attendance); err != nil {
			return err
		}
		details = lt.details()
		return nil
	})
	if err != nil {
		return nil, dbError(err)
	}

	s.logger.Info("ticket checked in", zap.String("serial", details.SerialCode), zap.String("by", actor.Username))
	s.auditTicket(ctx, actor, model.AuditActionTicketCheckIn, details)
	return details, nil
}

func (s *ticketService) CheckOut(ctx context.Context, serial string, actor Actor) (*TicketDetails, error) {
	var details *TicketDetails
	err := s.withLockedTicket(ctx, serial, true, func(tx *repository.Repositories, lt *lockedTicket) error {
		if !lt.attendance.CheckedIn {
			return ErrNotCheckedIn
		}
		if lt.attendance.CheckedOut {
			return ErrAlreadyCheckedOut
		}
		now := s.now()
		lt.attendance.CheckedOut = true
		lt.attendance.CheckOutTime = &now
		lt.attendance.CheckOutBy = &actor.Username
		if err := tx.Attendance.Update(ctx, lt.attendance); err != nil {
			return err
		}
		details = lt.details()
		return nil
	})
	if err != nil {
		return nil, dbError(err)
	}

	s.logger.Info("ticket checked out", zap.String("serial", details.SerialCode), zap.String("by", actor.Username))
	s.auditTicket(ctx, actor, model.AuditActionTicketCheckOut, details)
	return details, nil
}

func (s *ticketService) SetActive(ctx context.Context, serial string, active bool, actor Actor) (*TicketDetails, error) {
	if err := actor.requireSuperadmin(); err != nil {
		return nil, err
	}
	var details *TicketDetails
	err := s.withLockedTicket(ctx, serial, false, func(tx *repository.Repositories, lt *lockedTicket) error {
		if err := tx.Tickets.SetActive(ctx, lt.ticket.ID, active); err != nil {
			return err
		}
		lt.ticket.IsActive = active
		details = lt.details()
		return nil
	})
	if err != nil {
		return nil, dbError(err)
	}

	action := model.AuditActionDeactivateTicket
	if active {
		action = model.AuditActionActivateTicket
	}
	s.logger.Info("ticket activation changed",
		zap.String("serial", details.SerialCode),
		zap.Bool("active", active),
		zap.String("by", actor.Username),
	)
	s.auditTicket(ctx, actor, action, details)
	return details, nil
}

func (s *ticketService) ResetAttendance(ctx context.Context, serial string, actor Actor) (*TicketDetails, error) {
	if err := actor.requireSuperadmin(); err != nil {
		return nil, err
	}
	var details *TicketDetails
	err := s.withLockedTicket(ctx, serial, false, func(tx *repository.Repositories, lt *lockedTicket) error {
		a := lt.attendance
		a.CheckedIn, a.CheckInTime, a.CheckInBy = false, nil, nil
		a.CheckedOut, a.CheckOutTime, a.CheckOutBy = false, nil, nil
		if err := tx.Attendance.Update(ctx, a); err != nil {
			return err
		}
		details = lt.details()
		return nil
	})
	if err != nil {
		return nil, dbError(err)
	}

	s.logger.Info("ticket attendance reset", zap.String("serial", details.SerialCode), zap.String("by", actor.Username))
	s.auditTicket(ctx, actor, model.AuditActionResetCheckIn, details)
	return details, nil
}

type lockedTicket struct {
	ticket     *model.Ticket
	reg        *model.Registration
	payment    *model.Payment
	attendance *model.Attendance
}

func (lt *lockedTicket) details() *TicketDetails {
	return ticketDetails(lt.ticket, lt.reg, lt.payment, lt.attendance)
}

// withLockedTicket runs fn in a transaction holding the ticket row lock. The attendance
// row is created when missing. With admissible set, the payment must be approved and
// the ticket active.
func (s *ticketService) withLockedTicket(
	ctx context.Context,
	serial string,
	admissible bool,
	fn func(tx *repository.Repositories, lt *lockedTicket) error,
) error {
	serial = NormalizeSerial(serial)
	return s.store.WithTx(ctx, func(tx *repository.Repositories) error {
		ticket, err := tx.Tickets.GetBySerialForUpdate(ctx, serial)
		if err != nil {
			return notFoundOr(err, ErrTicketNotFound)
		}
		reg, payment, err := loadOwner(ctx, tx, ticket.RegistrationID)
		if err != nil {
			return err
		}
		if admissible {
			if payment.Status != model.PaymentStatusApproved {
				return ErrPaymentNotApproved
			}
			if !ticket.IsActive {
				return ErrTicketDeactivated
			}
		}

		attendance, err := tx.Attendance.GetByTicketID(ctx, ticket.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			attendance = &model.Attendance{TicketID: ticket.ID}
			err = tx.Attendance.Create(ctx, attendance)
		}
		if err != nil {
			return err
		}
		return fn(tx, &lockedTicket{ticket: ticket, reg: reg, payment: payment, attendance: attendance})
	})
}

func loadOwner(ctx context.Context, repos *repository.Repositories, registrationID uint) (*model.Registration, *model.Payment, error) {
	reg, err := repos.Registrations.GetByID(ctx, registrationID)
	if err != nil {
		return nil, nil, notFoundOr(err, ErrRegistrationNotFound)
	}
	payment, err := repos.Payments.GetByRegistrationID(ctx, registrationID)
	if err != nil {
		return nil, nil, notFoundOr(err, ErrRegistrationNotFound)
	}
	return reg, payment, nil
}

func ticketDetails(t *model.Ticket, reg *model.Registration, p *model.Payment, a *model.Attendance) *TicketDetails {
	d := &TicketDetails{
		SerialCode:      t.SerialCode,
		MemberName:      t.MemberName,
		RegistrationID:  reg.ID,
		RegistrantName:  reg.Name,
		RegistrantEmail: reg.Email,
		RegistrantPhone: reg.Phone,
		TeamName:        reg.TeamName,
		PaymentType:     reg.PaymentType,
		PaymentStatus:   p.Status,
		IsActive:        t.IsActive,
	}
	if a != nil {
		d.CheckedIn = a.CheckedIn
		d.CheckInTime = a.CheckInTime
		d.CheckInBy = a.CheckInBy
		d.CheckedOut = a.CheckedOut
		d.CheckOutTime = a.CheckOutTime
	}
	return d
}

func checkedInError(at *time.Time) error {
	if at == nil {
		return ErrAlreadyCheckedIn
	}
	return ErrAlreadyCheckedIn.withMessage("ticket already checked in at %s", at.UTC().Format(time.RFC3339))
}

func (s *ticketService) auditTicket(ctx context.Context, actor Actor, action model.AuditAction, d *TicketDetails) {
	regID := d.RegistrationID
	s.audit.Record(ctx, actor.record(action, &regID, map[string]any{
		"serial_code": d.SerialCode,
		"member_name": d.MemberName,
	}))
}

var _ TicketService = (*ticketService)(nil)
