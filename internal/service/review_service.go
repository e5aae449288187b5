package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"eventtix/registrar/internal/model"
	"eventtix/registrar/internal/qr"
	"eventtix/registrar/internal/repository"
	"eventtix/registrar/internal/storage"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	defaultRejectionReason = "Payment verification failed"
)

type ListFilter struct {
	Status   string
	Page     int
	PageSize int
}

type StatusCounts struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

type RegistrationPage struct {
	Items    []repository.RegistrationSummary `json:"items"`
	Total    int64                            `json:"total"`
	Page     int                              `json:"page"`
	PageSize int                              `json:"page_size"`
	Counts   StatusCounts                     `json:"counts"`
}

type DashboardStats struct {
	Registrations     StatusCounts `json:"registrations"`
	TeamRegistrations int64        `json:"team_registrations"`
	TicketsIssued     int64        `json:"tickets_issued"`
	TicketsCheckedIn  int64        `json:"tickets_checked_in"`
}

type ReviewResult struct {
	RegistrationID uint                `json:"registration_id"`
	Status         model.PaymentStatus `json:"status"`
	TicketsCount   int                 `json:"tickets_count"`
	Serials        []string            `json:"serials,omitempty"`
	Reason         string              `json:"reason,omitempty"`
}

type ReviewService interface {
	List(ctx context.Context, f ListFilter) (*RegistrationPage, error)
	Detail(ctx context.Context, id uint) (*model.Registration, error)
	Approve(ctx context.Context, id uint, actor Actor) (*ReviewResult, error)
	Reject(ctx context.Context, id uint, reason string, actor Actor) (*ReviewResult, error)
	Stats(ctx context.Context) (*DashboardStats, error)
	Purge(ctx context.Context, id uint, actor Actor) error
}

type reviewService struct {
	store         repository.Store
	renderer      qr.Renderer
	signer        *qr.Signer
	uploader      storage.Uploader
	uploadTimeout time.Duration
	notifier      NotificationService
	audit         AuditService
	logger        *zap.Logger
	now           func() time.Time
}

func NewReviewService(
	store repository.Store,
	renderer qr.Renderer,
	signer *qr.Signer,
	uploader storage.Uploader,
	uploadTimeout time.Duration,
	notifier NotificationService,
	audit AuditService,
	logger *zap.Logger,
) ReviewService {
	return &reviewService{
		store:         store,
		renderer:      renderer,
		signer:        signer,
		uploader:      uploader,
		uploadTimeout: uploadTimeout,
		notifier:      notifier,
		audit:         audit,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *reviewService) List(ctx context.Context, f ListFilter) (*RegistrationPage, error) {
	filter := repository.RegistrationFilter{}
	if f.Status != "" {
		status := model.PaymentStatus(strings.ToLower(f.Status))
		if !status.Valid() {
			return nil, ErrInvalidStatus
		}
		filter.Status = &status
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	if f.PageSize > maxPageSize {
		f.PageSize = maxPageSize
	}
	filter.Offset = (f.Page - 1) * f.PageSize
	filter.Limit = f.PageSize

	repos := s.store.Repositories()
	items, total, err := repos.Registrations.List(ctx, filter)
	if err != nil {
		return nil, dbError(err)
	}
	counts, err := s.statusCounts(ctx, repos)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []repository.RegistrationSummary{}
	}
	return &RegistrationPage{Items: items, Total: total, Page: f.Page, PageSize: f.PageSize, Counts: *counts}, nil
}

func (s *reviewService) statusCounts(ctx context.Context, repos *repository.Repositories) (*StatusCounts, error) {
	byStatus, err := repos.Registrations.CountByStatus(ctx)
	if err != nil {
		return nil, dbError(err)
	}
	c := &StatusCounts{
		Pending:  byStatus[model.PaymentStatusPending],
		Approved: byStatus[model.PaymentStatusApproved],
		Rejected: byStatus[model.PaymentStatusRejected],
	}
	c.Total = c.Pending + c.Approved + c.Rejected
	return c, nil
}

func (s *reviewService) Detail(ctx context.Context, id uint) (*model.Registration, error) {
	reg, err := s.store.Repositories().Registrations.GetDetail(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrRegistrationNotFound)
	}
	return reg, nil
}

func (s *reviewService) Approve(ctx context.Context, id uint, actor Actor) (*ReviewResult, error) {
	var (
		reg     *model.Registration
		serials []string
	)
	err := s.store.WithTx(ctx, func(tx *repository.Repositories) error {
		payment, err := tx.Payments.GetByRegistrationIDForUpdate(ctx, id)
		if err != nil {
			return notFoundOr(err, ErrRegistrationNotFound)
		}
		if reg, err = tx.Registrations.GetByID(ctx, id); err != nil {
			return notFoundOr(err, ErrRegistrationNotFound)
		}
		if err := pendingGuard(payment.Status); err != nil {
			return err
		}

		tickets, err := tx.Tickets.ListByRegistrationID(ctx, id)
		if err != nil {
			return err
		}
		if len(tickets) == 0 {
			return ErrNoTickets
		}
		for _, t := range tickets {
			url, err := s.issueQR(ctx, reg, t)
			if err != nil {
				return ErrQRGenerationFailed.wrap(err)
			}
			if err := tx.Tickets.UpdateQRCode(ctx, t.ID, url); err != nil {
				return err
			}
			serials = append(serials, t.SerialCode)
		}

		now := s.now()
		payment.Status = model.PaymentStatusApproved
		payment.ApprovedBy = &actor.Username
		payment.ApprovedAt = &now
		return tx.Payments.Update(ctx, payment)
	})
	if err != nil {
		return nil, dbError(err)
	}

	s.logger.Info("payment approved",
		zap.Uint("registration_id", id),
		zap.String("by", actor.Username),
		zap.Int("tickets", len(serials)),
	)
	s.notifier.Dispatch(ctx, Notification{Type: model.MessageTypeApproval, RegistrationID: id})
	s.audit.Record(ctx, actor.record(model.AuditActionApprovePayment, &id, map[string]any{
		"tickets_count":      len(serials),
		"registration_email": reg.Email,
	}))

	return &ReviewResult{
		RegistrationID: id,
		Status:         model.PaymentStatusApproved,
		TicketsCount:   len(serials),
		Serials:        serials,
	}, nil
}

// issueQR renders the ticket's signed payload and stores it as qr-codes/{serial}.png.
func (s *reviewService) issueQR(ctx context.Context, reg *model.Registration, t model.Ticket) (string, error) {
	png, err := s.renderer.Render(s.signer.Sign(t.SerialCode, t.MemberName, reg.Email))
	if err != nil {
		return "", err
	}
	uploadCtx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()
	return s.uploader.Upload(uploadCtx, png, "qr-codes/"+t.SerialCode+".png", "image/png")
}

func (s *reviewService) Reject(ctx context.Context, id uint, reason string, actor Actor) (*ReviewResult, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = defaultRejectionReason
	}
	err := s.store.WithTx(ctx, func(tx *repository.Repositories) error {
		payment, err := tx.Payments.GetByRegistrationIDForUpdate(ctx, id)
		if err != nil {
			return notFoundOr(err, ErrRegistrationNotFound)
		}
		if err := pendingGuard(payment.Status); err != nil {
			return err
		}
		payment.Status = model.PaymentStatusRejected
		payment.RejectionReason = &reason
		return tx.Payments.Update(ctx, payment)
	})
	if err != nil {
		return nil, dbError(err)
	}

	s.logger.Info("payment rejected", zap.Uint("registration_id", id), zap.String("by", actor.Username))
	s.notifier.Dispatch(ctx, Notification{Type: model.MessageTypeRejection, RegistrationID: id, Reason: reason})
	s.audit.Record(ctx, actor.record(model.AuditActionRejectPayment, &id, map[string]any{"reason": reason}))

	return &ReviewResult{RegistrationID: id, Status: model.PaymentStatusRejected, Reason: reason}, nil
}

// pendingGuard allows a transition only out of pending.
func pendingGuard(status model.PaymentStatus) error {
	switch status {
	case model.PaymentStatusApproved:
		return ErrAlreadyApproved
	case model.PaymentStatusRejected:
		return ErrAlreadyRejected
	}
	return nil
}

func (s *reviewService) Stats(ctx context.Context) (*DashboardStats, error) {
	repos := s.store.Repositories()
	counts, err := s.statusCounts(ctx, repos)
	if err != nil {
		return nil, err
	}
	teams, err := repos.Registrations.CountTeams(ctx)
	if err != nil {
		return nil, dbError(err)
	}
	issued, err := repos.Tickets.Count(ctx)
	if err != nil {
		return nil, dbError(err)
	}
	checkedIn, err := repos.Attendance.CountCheckedIn(ctx)
	if err != nil {
		return nil, dbError(err)
	}
	return &DashboardStats{
		Registrations:     *counts,
		TeamRegistrations: teams,
		TicketsIssued:     issued,
		TicketsCheckedIn:  checkedIn,
	}, nil
}

func (s *reviewService) Purge(ctx context.Context, id uint, actor Actor) error {
	if err := actor.requireSuperadmin(); err != nil {
		return err
	}
	var reg *model.Registration
	err := s.store.WithTx(ctx, func(tx *repository.Repositories) error {
		var err error
		if reg, err = tx.Registrations.GetByID(ctx, id); err != nil {
			return notFoundOr(err, ErrRegistrationNotFound)
		}
		return tx.Registrations.Delete(ctx, id)
	})
	if err != nil {
		return dbError(err)
	}

	s.logger.Info("registration purged", zap.Uint("registration_id", id), zap.String("by", actor.Username))
	s.audit.Record(ctx, actor.record(model.AuditActionPurgeRegistration, &id, map[string]any{
		"email":        reg.Email,
		"name":         reg.Name,
		"payment_type": reg.PaymentType,
	}))
	return nil
}

var _ ReviewService = (*reviewService)(nil)
