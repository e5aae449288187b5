package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"eventtix/registrar/internal/config"
	"eventtix/registrar/internal/mail"
	"eventtix/registrar/internal/model"
	"eventtix/registrar/internal/qr"
	"eventtix/registrar/internal/repository"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, data []byte, key, contentType string) (string, error) {
	args := m.Called(ctx, data, key, contentType)
	return args.String(0), args.Error(1)
}

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(p qr.Payload) ([]byte, error) {
	args := m.Called(p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg mail.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, body []byte) error {
	args := m.Called(ctx, body)
	return args.Error(0)
}

// recordingNotifier captures dispatched notifications without sending anything.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
}

func (n *recordingNotifier) Dispatch(_ context.Context, note Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, note)
}

func (n *recordingNotifier) Deliver(_ context.Context, _ Notification) error { return nil }

func (n *recordingNotifier) types() []model.MessageType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]model.MessageType, 0, len(n.sent))
	for _, s := range n.sent {
		out = append(out, s.Type)
	}
	return out
}

// failingAuditRepo rejects every write.
type failingAuditRepo struct {
	repository.AuditLogRepository
}

func (failingAuditRepo) Create(context.Context, *model.AuditLog) error {
	return errors.New("audit table unavailable")
}

var testEventConfig = config.EventConfig{
	Name:                  "DevFest",
	Type:                  "Conference",
	Date:                  "2025-11-20",
	Time:                  "09:30",
	Venue:                 "Main Hall",
	IndividualPrice:       300,
	BulkPrice:             1000,
	BulkTeamSize:          4,
	Currency:              "INR",
	OrganizationName:      "GDG",
	SupportEmail:          "support@example.com",
	ApprovalEmailSubject:  "You're in!",
	RejectionEmailSubject: "Registration update",
}

var (
	superadmin = Actor{AdminID: 1, Username: "root", Role: model.AdminRoleSuperadmin, IP: "10.0.0.1", UserAgent: "test"}
	reviewer   = Actor{AdminID: 2, Username: "rev", Role: model.AdminRoleReviewer}
)

type fixture struct {
	store        repository.Store
	uploader     *MockUploader
	renderer     *MockRenderer
	notifier     *recordingNotifier
	audit        AuditService
	settings     SettingsService
	registration *registrationService
	review       *reviewService
	tickets      *ticketService
	now          time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop()
	store := repository.NewMemoryStore()
	f := &fixture{
		store:    store,
		uploader: new(MockUploader),
		renderer: new(MockRenderer),
		notifier: &recordingNotifier{},
		now:      time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC),
	}
	f.audit = NewAuditService(store.Repositories().AuditLogs, logger)
	f.settings = NewSettingsService(store, f.audit, testEventConfig)

	f.registration = NewRegistrationService(store, f.settings, f.uploader, f.notifier, 1<<20, time.Second, logger).(*registrationService)
	f.registration.now = func() time.Time { return f.now }

	f.review = NewReviewService(store, f.renderer, qr.NewSigner("qr-key"), f.uploader, time.Second, f.notifier, f.audit, logger).(*reviewService)
	f.review.now = func() time.Time { return f.now }

	f.tickets = NewTicketService(store, f.audit, logger).(*ticketService)
	f.tickets.now = func() time.Time { return f.now }
	return f
}

// allowScreenshots accepts any screenshot upload.
func (f *fixture) allowScreenshots() {
	f.uploader.On("Upload", mock.Anything, mock.Anything, mock.MatchedBy(func(key string) bool {
		return len(key) > 9 && key[:9] == "payments/"
	}), mock.Anything).Return("https://files.test/screenshot.png", nil)
}

// allowQRCodes renders and uploads every ticket QR successfully.
func (f *fixture) allowQRCodes() {
	f.renderer.On("Render", mock.Anything).Return([]byte("png"), nil)
	f.uploader.On("Upload", mock.Anything, mock.Anything, mock.MatchedBy(func(key string) bool {
		return len(key) > 9 && key[:9] == "qr-codes/"
	}), "image/png").Return("https://files.test/qr.png", nil)
}

func (f *fixture) submitIndividual(t *testing.T, name, email string) *SubmitResult {
	t.Helper()
	res, err := f.registration.Submit(context.Background(), SubmitInput{
		Name:        name,
		Email:       email,
		Phone:       "9876543210",
		PaymentType: model.PaymentTypeIndividual,
		Amount:      300,
		Screenshot:  Screenshot{Filename: "pay.png", Data: pngHeader},
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) submitTeam(t *testing.T, email string, members string) *SubmitResult {
	t.Helper()
	res, err := f.registration.Submit(context.Background(), SubmitInput{
		Name:        "Team Lead",
		Email:       email,
		Phone:       "9876543210",
		TeamName:    "Rockets",
		Members:     members,
		PaymentType: model.PaymentTypeBulk,
		Amount:      1000,
		Screenshot:  Screenshot{Filename: "pay.png", Data: pngHeader},
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) auditActions(t *testing.T) []model.AuditAction {
	t.Helper()
	entries, err := f.audit.List(context.Background(), AuditQuery{})
	require.NoError(t, err)
	out := make([]model.AuditAction, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Action)
	}
	return out
}
