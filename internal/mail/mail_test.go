package mail

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sendgrid/rest"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"eventtix/registrar/internal/config"
)

func TestNew_SelectsBackend(t *testing.T) {
	m, err := New(config.MailConfig{Backend: "log"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &logMailer{}, m)

	_, err = New(config.MailConfig{Backend: "smtp", FromEmail: "a@x.com"}, zap.NewNop())
	assert.Error(t, err, "missing host")

	_, err = New(config.MailConfig{Backend: "sendgrid", FromEmail: "a@x.com"}, zap.NewNop())
	assert.Error(t, err, "missing api key")

	_, err = New(config.MailConfig{Backend: "pigeon"}, zap.NewNop())
	assert.Error(t, err)
}

func TestLogMailer_ValidatesRecipient(t *testing.T) {
	m := NewLogMailer(zap.NewNop())
	assert.Error(t, m.Send(context.Background(), Message{To: "not-an-email", Subject: "s"}))
	assert.NoError(t, m.Send(context.Background(), Message{To: "a@x.com", Subject: "s"}))
}

type fakeDialer struct {
	sent  []*gomail.Message
	err   error
	delay time.Duration
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	time.Sleep(f.delay)
	f.sent = append(f.sent, m...)
	return f.err
}

func TestSMTPMailer_BuildsAttachments(t *testing.T) {
	d := &fakeDialer{}
	s := &smtpMailer{dialer: d, from: "noreply@x.com", fromName: "Events"}

	err := s.Send(context.Background(), Message{
		To:      "alice@x.com",
		Subject: "Registration Confirmed",
		HTML:    `<img src="cid:EVT25-000001.png">`,
		Attachments: []Attachment{
			{Filename: "EVT25-000001.png", ContentType: "image/png", Data: []byte("png"), Inline: true},
		},
	})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	var buf bytes.Buffer
	_, err = d.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Content-ID: <EVT25-000001.png>")
	assert.Contains(t, buf.String(), "Subject: Registration Confirmed")
}

func TestSMTPMailer_Errors(t *testing.T) {
	s := &smtpMailer{dialer: &fakeDialer{err: errors.New("535 auth failed")}, from: "noreply@x.com"}
	err := s.Send(context.Background(), Message{To: "a@x.com", Subject: "s", HTML: "x"})
	assert.ErrorContains(t, err, "535")

	slow := &smtpMailer{dialer: &fakeDialer{delay: 200 * time.Millisecond}, from: "noreply@x.com"}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err = slow.Send(ctx, Message{To: "a@x.com", Subject: "s", HTML: "x"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type fakeSendClient struct {
	got    *sgmail.SGMailV3
	status int
}

func (f *fakeSendClient) SendWithContext(_ context.Context, email *sgmail.SGMailV3) (*rest.Response, error) {
	f.got = email
	return &rest.Response{StatusCode: f.status, Body: "body"}, nil
}

func TestSendGridMailer_Send(t *testing.T) {
	c := &fakeSendClient{status: http.StatusAccepted}
	s := &sendGridMailer{client: c, from: "noreply@x.com", fromName: "Events"}

	err := s.Send(context.Background(), Message{
		To: "alice@x.com", Subject: "s", HTML: "<p>hi</p>",
		Attachments: []Attachment{{Filename: "TEAM001-A.png", ContentType: "image/png", Data: []byte("png")}},
	})
	require.NoError(t, err)
	require.Len(t, c.got.Attachments, 1)
	assert.Equal(t, "attachment", c.got.Attachments[0].Disposition)

	c.status = http.StatusUnauthorized
	err = s.Send(context.Background(), Message{To: "alice@x.com", Subject: "s", HTML: "x"})
	assert.ErrorContains(t, err, "401")
}
