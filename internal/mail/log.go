package mail

import (
	"context"

	"go.uber.org/zap"
)

type logMailer struct {
	logger *zap.Logger
}

// NewLogMailer returns a Mailer that only logs; used in development.
func NewLogMailer(logger *zap.Logger) Mailer {
	return &logMailer{logger: logger}
}

func (l *logMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	names := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		names = append(names, a.Filename)
	}
	l.logger.Info("email (log backend)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("html_bytes", len(msg.HTML)),
		zap.Strings("attachments", names),
	)
	return nil
}
