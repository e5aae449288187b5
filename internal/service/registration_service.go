package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"eventtix/registrar/internal/model"
	"eventtix/registrar/internal/repository"
	"eventtix/registrar/internal/storage"
)

var allowedScreenshotTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

type Screenshot struct {
	Filename string
	Data     []byte
}

type SubmitInput struct {
	Name          string            `json:"name" validate:"required,min=2,max=255"`
	Email         string            `json:"email" validate:"required,email,max=255"`
	Phone         string            `json:"phone" validate:"required,min=10,max=20"`
	TeamName      string            `json:"team_name" validate:"max=255"`
	Members       string            `json:"members"`
	PaymentType   model.PaymentType `json:"payment_type" validate:"required,oneof=individual bulk"`
	PaymentMethod string            `json:"payment_method" validate:"max=50"`
	Amount        float64           `json:"amount" validate:"gt=0"`
	Screenshot    Screenshot        `json:"-"`
}

type SubmitResult struct {
	ID      uint                `json:"id"`
	Name    string              `json:"name"`
	Email   string              `json:"email"`
	Status  model.PaymentStatus `json:"status"`
	Serials []string            `json:"serials"`
	Message string              `json:"message"`
}

type TicketStatus struct {
	SerialCode string `json:"serial_code"`
	MemberName string `json:"member_name"`
	IsActive   bool   `json:"is_active"`
	CheckedIn  bool   `json:"checked_in"`
}

type RegistrationStatus struct {
	ID              uint                `json:"id"`
	Name            string              `json:"name"`
	Email           string              `json:"email"`
	TeamName        *string             `json:"team_name,omitempty"`
	PaymentType     model.PaymentType   `json:"payment_type"`
	Status          model.PaymentStatus `json:"status"`
	RejectionReason *string             `json:"rejection_reason,omitempty"`
	Tickets         []TicketStatus      `json:"tickets"`
	CreatedAt       time.Time           `json:"created_at"`
}

type RegistrationService interface {
	Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error)
	Status(ctx context.Context, email string) (*RegistrationStatus, error)
}

type registrationService struct {
	store         repository.Store
	settings      SettingsService
	uploader      storage.Uploader
	notifier      NotificationService
	maxUploadSize int64
	uploadTimeout time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

func NewRegistrationService(
	store repository.Store,
	settings SettingsService,
	uploader storage.Uploader,
	notifier NotificationService,
	maxUploadSize int64,
	uploadTimeout time.Duration,
	logger *zap.Logger,
) RegistrationService {
	return &registrationService{
		store:         store,
		settings:      settings,
		uploader:      uploader,
		notifier:      notifier,
		maxUploadSize: maxUploadSize,
		uploadTimeout: uploadTimeout,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *registrationService) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.TeamName = strings.TrimSpace(in.TeamName)
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	if len(in.Screenshot.Data) == 0 {
		return nil, ErrValidation.withMessage("payment screenshot is required")
	}
	if s.maxUploadSize > 0 && int64(len(in.Screenshot.Data)) > s.maxUploadSize {
		return nil, ErrValidation.withMessage("payment screenshot exceeds %d bytes", s.maxUploadSize)
	}

	repos := s.store.Repositories()
	if _, err := repos.Registrations.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, dbError(err)
	}

	mtype := mimetype.Detect(in.Screenshot.Data)
	if !mimetype.EqualsAny(mtype.String(), allowedScreenshotTypes...) {
		return nil, ErrUnsupportedFileType
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	var members []string
	if in.PaymentType == model.PaymentTypeBulk {
		if in.TeamName == "" {
			return nil, ErrValidation.withMessage("team_name is required for bulk registration")
		}
		if members, err = ParseMembers(in.Members); err != nil {
			return nil, ErrValidation.wrap(err)
		}
		if len(members) != settings.BulkTeamSize {
			return nil, ErrInvalidTeamSize.withMessage("team registration requires exactly %d members, got %d", settings.BulkTeamSize, len(members))
		}
	}

	key := "payments/" + uuid.NewString() + mtype.Extension()
	uploadCtx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	screenshotURL, err := s.uploader.Upload(uploadCtx, in.Screenshot.Data, key, mtype.String())
	cancel()
	if err != nil {
		return nil, ErrStorageUnavailable.wrap(err)
	}

	var (
		reg     *model.Registration
		serials []string
	)
	err = s.store.WithTx(ctx, func(tx *repository.Repositories) error {
		reg = &model.Registration{
			Name:        in.Name,
			Email:       in.Email,
			Phone:       in.Phone,
			PaymentType: in.PaymentType,
			CreatedAt:   s.now(),
		}
		if in.TeamName != "" {
			reg.TeamName = &in.TeamName
		}
		if len(members) > 0 {
			raw, _ := json.Marshal(members)
			reg.Members = datatypes.JSON(raw)
		}
		if err := tx.Registrations.Create(ctx, reg); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateEmail
			}
			return err
		}

		payment := &model.Payment{
			RegistrationID: reg.ID,
			ScreenshotURL:  screenshotURL,
			Amount:         in.Amount,
			Method:         paymentMethod(in.PaymentMethod),
			Status:         model.PaymentStatusPending,
		}
		if err := tx.Payments.Create(ctx, payment); err != nil {
			return err
		}

		tickets, err := s.planTickets(reg, members, settings.BulkTeamSize)
		if err != nil {
			return err
		}
		for i := range tickets {
			if err := tx.Tickets.Create(ctx, &tickets[i]); err != nil {
				return err
			}
			if err := tx.Attendance.Create(ctx, &model.Attendance{TicketID: tickets[i].ID}); err != nil {
				return err
			}
			serials = append(serials, tickets[i].SerialCode)
		}
		return nil
	})
	if err != nil {
		return nil, dbError(err)
	}

	s.logger.Info("registration submitted",
		zap.Uint("registration_id", reg.ID),
		zap.String("payment_type", string(reg.PaymentType)),
		zap.Int("tickets", len(serials)),
	)
	s.notifier.Dispatch(ctx, Notification{Type: model.MessageTypeConfirmation, RegistrationID: reg.ID})

	return &SubmitResult{
		ID:      reg.ID,
		Name:    reg.Name,
		Email:   reg.Email,
		Status:  model.PaymentStatusPending,
		Serials: serials,
		Message: "Registration received. Your payment is pending verification.",
	}, nil
}

// planTickets applies the fan-out rule: one ticket for an individual,
// exactly teamSize tickets for a team, in member order.
func (s *registrationService) planTickets(reg *model.Registration, members []string, teamSize int) ([]model.Ticket, error) {
	issuedAt := s.now()
	if !reg.IsBulk() {
		return []model.Ticket{{
			RegistrationID: reg.ID,
			MemberName:     reg.Name,
			SerialCode:     IndividualSerial(reg.ID, reg.CreatedAt),
			IsActive:       true,
			IssuedAt:       issuedAt,
		}}, nil
	}
	if len(members) != teamSize {
		return nil, ErrInvalidTeamSize.withMessage("team registration requires exactly %d members, got %d", teamSize, len(members))
	}
	tickets := make([]model.Ticket, 0, len(members))
	for i, member := range members {
		tickets = append(tickets, model.Ticket{
			RegistrationID: reg.ID,
			MemberName:     member,
			SerialCode:     TeamSerial(reg.ID, i),
			IsActive:       true,
			IssuedAt:       issuedAt,
		})
	}
	return tickets, nil
}

func (s *registrationService) Status(ctx context.Context, email string) (*RegistrationStatus, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrValidation.withMessage("email is required")
	}
	reg, err := s.store.Repositories().Registrations.GetByEmail(ctx, email)
	if err != nil {
		return nil, notFoundOr(err, ErrRegistrationNotFound)
	}
	detail, err := s.store.Repositories().Registrations.GetDetail(ctx, reg.ID)
	if err != nil {
		return nil, notFoundOr(err, ErrRegistrationNotFound)
	}

	out := &RegistrationStatus{
		ID:          detail.ID,
		Name:        detail.Name,
		Email:       detail.Email,
		TeamName:    detail.TeamName,
		PaymentType: detail.PaymentType,
		Tickets:     make([]TicketStatus, 0, len(detail.Tickets)),
		CreatedAt:   detail.CreatedAt,
	}
	if detail.Payment != nil {
		out.Status = detail.Payment.Status
		out.RejectionReason = detail.Payment.RejectionReason
	}
	for _, t := range detail.Tickets {
		out.Tickets = append(out.Tickets, TicketStatus{
			SerialCode: t.SerialCode,
			MemberName: t.MemberName,
			IsActive:   t.IsActive,
			CheckedIn:  t.Attendance != nil && t.Attendance.CheckedIn,
		})
	}
	return out, nil
}

func paymentMethod(m string) string {
	if m = strings.TrimSpace(m); m != "" {
		return m
	}
	return "upi"
}

var _ RegistrationService = (*registrationService)(nil)
