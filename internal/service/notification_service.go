package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"eventtix/registrar/internal/mail"
	"eventtix/registrar/internal/model"
	"eventtix/registrar/internal/qr"
	"eventtix/registrar/internal/repository"
)

// Notification is one email job. It is published as JSON when the queue is enabled.
type Notification struct {
	Type           model.MessageType `json:"type"`
	RegistrationID uint              `json:"registration_id"`
	Reason         string            `json:"reason,omitempty"`
}

// Publisher hands a serialized notification to the message broker.
type Publisher interface {
	Publish(ctx context.Context, body []byte) error
}

type NotificationService interface {
	// Dispatch queues or delivers n; failures are logged, never returned.
	Dispatch(ctx context.Context, n Notification)
	// Deliver renders and sends n, then appends a Message row with the outcome.
	// The returned error reports a send or load failure for logging only.
	Deliver(ctx context.Context, n Notification) error
}

type notificationService struct {
	store     repository.Store
	settings  SettingsService
	mailer    mail.Mailer
	templates *mail.Templates
	renderer  qr.Renderer
	signer    *qr.Signer
	publisher Publisher
	timeout   time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewNotificationService builds the notifier. A nil publisher means inline delivery.
func NewNotificationService(
	store repository.Store,
	settings SettingsService,
	mailer mail.Mailer,
	templates *mail.Templates,
	renderer qr.Renderer,
	signer *qr.Signer,
	publisher Publisher,
	timeout time.Duration,
	logger *zap.Logger,
) NotificationService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &notificationService{
		store:     store,
		settings:  settings,
		mailer:    mailer,
		templates: templates,
		renderer:  renderer,
		signer:    signer,
		publisher: publisher,
		timeout:   timeout,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *notificationService) Dispatch(ctx context.Context, n Notification) {
	ctx = context.WithoutCancel(ctx)
	if s.publisher != nil {
		body, err := json.Marshal(n)
		if err == nil {
			pubCtx, cancel := context.WithTimeout(ctx, s.timeout)
			err = s.publisher.Publish(pubCtx, body)
			cancel()
		}
		if err == nil {
			return
		}
		s.logger.Warn("notification publish failed, delivering inline",
			zap.String("type", string(n.Type)),
			zap.Uint("registration_id", n.RegistrationID),
			zap.Error(err),
		)
	}
	if err := s.Deliver(ctx, n); err != nil {
		s.logger.Warn("notification delivery failed",
			zap.String("type", string(n.Type)),
			zap.Uint("registration_id", n.RegistrationID),
			zap.Error(err),
		)
	}
}

func (s *notificationService) Deliver(ctx context.Context, n Notification) error {
	repos := s.store.Repositories()
	reg, err := repos.Registrations.GetByID(ctx, n.RegistrationID)
	if err != nil {
		return fmt.Errorf("load registration %d: %w", n.RegistrationID, err)
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	payment, err := repos.Payments.GetByRegistrationID(ctx, reg.ID)
	if err != nil {
		return fmt.Errorf("load payment: %w", err)
	}
	tickets, err := repos.Tickets.ListByRegistrationID(ctx, reg.ID)
	if err != nil {
		return fmt.Errorf("load tickets: %w", err)
	}

	msg, err := s.compose(n, reg, payment, tickets, settings)
	if err != nil {
		s.recordOutcome(ctx, n, reg, msg, err)
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	sendErr := s.mailer.Send(sendCtx, msg)
	s.recordOutcome(ctx, n, reg, msg, sendErr)
	if sendErr != nil {
		return fmt.Errorf("send %s email: %w", n.Type, sendErr)
	}
	s.logger.Info("notification sent",
		zap.String("type", string(n.Type)),
		zap.Uint("registration_id", reg.ID),
		zap.String("to", reg.Email),
	)
	return nil
}

func (s *notificationService) compose(
	n Notification,
	reg *model.Registration,
	payment *model.Payment,
	tickets []model.Ticket,
	settings *model.EventSettings,
) (mail.Message, error) {
	data := mail.TemplateData{
		Name:             reg.Name,
		Email:            reg.Email,
		IsBulk:           reg.IsBulk(),
		EventName:        settings.EventName,
		EventType:        settings.EventType,
		EventDate:        formatEventDate(settings.EventDate),
		EventTime:        settings.EventTime,
		Venue:            settings.EventVenue,
		Location:         settings.EventLocation,
		OrganizationName: settings.OrganizationName,
		SupportEmail:     settings.SupportEmail,
		Amount:           payment.Amount,
		Currency:         settings.Currency,
		Reason:           n.Reason,
	}
	if reg.TeamName != nil {
		data.TeamName = *reg.TeamName
	}
	if data.Reason == "" && payment.RejectionReason != nil {
		data.Reason = *payment.RejectionReason
	}

	msg := mail.Message{To: reg.Email, ToName: reg.Name}
	var name string
	switch n.Type {
	case model.MessageTypeConfirmation:
		name = mail.TemplateConfirmation
		msg.Subject = fmt.Sprintf("Registration received - %s", settings.EventName)
	case model.MessageTypeApproval:
		name = mail.TemplateApproval
		msg.Subject = settings.ApprovalEmailSubject
		views, attachments, err := s.ticketImages(reg, tickets)
		if err != nil {
			return msg, err
		}
		data.Tickets, msg.Attachments = views, attachments
	case model.MessageTypeRejection:
		name = mail.TemplateRejection
		msg.Subject = settings.RejectionEmailSubject
	case model.MessageTypeReminder:
		name = mail.TemplateReminder
		msg.Subject = fmt.Sprintf("Reminder: %s is coming up", settings.EventName)
		data.StartsIn = s.startsIn(settings)
		for _, t := range tickets {
			data.Tickets = append(data.Tickets, mail.TicketView{Serial: t.SerialCode, MemberName: t.MemberName})
		}
	default:
		return msg, fmt.Errorf("unknown notification type %q", n.Type)
	}
	if msg.Subject == "" {
		msg.Subject = settings.EventName
	}

	html, err := s.templates.Render(name, data)
	if err != nil {
		return msg, err
	}
	msg.HTML = html
	return msg, nil
}

// ticketImages re-renders each ticket QR from its signed payload. An individual
// ticket is embedded inline; team tickets are attached one per member.
func (s *notificationService) ticketImages(reg *model.Registration, tickets []model.Ticket) ([]mail.TicketView, []mail.Attachment, error) {
	views := make([]mail.TicketView, 0, len(tickets))
	attachments := make([]mail.Attachment, 0, len(tickets))
	for _, t := range tickets {
		png, err := s.renderer.Render(s.signer.Sign(t.SerialCode, t.MemberName, reg.Email))
		if err != nil {
			return nil, nil, fmt.Errorf("render qr %s: %w", t.SerialCode, err)
		}
		filename := t.SerialCode + ".png"
		view := mail.TicketView{Serial: t.SerialCode, MemberName: t.MemberName}
		inline := !reg.IsBulk()
		if inline {
			view.ImageSrc = mail.InlineSrc(filename)
		}
		views = append(views, view)
		attachments = append(attachments, mail.Attachment{
			Filename:    filename,
			ContentType: "image/png",
			Data:        png,
			Inline:      inline,
		})
	}
	return views, attachments, nil
}

func (s *notificationService) startsIn(settings *model.EventSettings) string {
	at, err := eventStart(settings)
	if err != nil {
		return "soon"
	}
	return humanize.RelTime(at, s.now(), "ago", "from now")
}

func (s *notificationService) recordOutcome(ctx context.Context, n Notification, reg *model.Registration, msg mail.Message, sendErr error) {
	row := &model.Message{
		RegistrationID: reg.ID,
		MessageType:    n.Type,
		Subject:        msg.Subject,
		RecipientEmail: reg.Email,
		HasAttachment:  len(msg.Attachments) > 0,
		Sent:           sendErr == nil,
	}
	if sendErr == nil {
		sentAt := s.now()
		row.SentAt = &sentAt
	} else {
		errMsg := sendErr.Error()
		row.ErrorMessage = &errMsg
	}
	if err := s.store.Repositories().Messages.Create(ctx, row); err != nil {
		s.logger.Warn("failed to record message",
			zap.String("type", string(n.Type)),
			zap.Uint("registration_id", reg.ID),
			zap.Error(err),
		)
	}
}

// eventStart combines the settings date and time (UTC); the time defaults to midnight.
func eventStart(settings *model.EventSettings) (time.Time, error) {
	if settings.EventTime != "" {
		if t, err := time.Parse("2006-01-02 15:04", settings.EventDate+" "+settings.EventTime); err == nil {
			return t, nil
		}
	}
	return time.Parse("2006-01-02", settings.EventDate)
}

func formatEventDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Monday, 2 January 2006")
}

var _ NotificationService = (*notificationService)(nil)
