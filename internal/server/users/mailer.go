package users

import (
	"context"

	"github.com/dmitrijs2005/wsauth/internal/logging"
)

// Mailer delivers verification codes.
type Mailer interface {
	SendVerification(ctx context.Context, email, code string) error
}

// LogMailer writes the code to the log instead of sending mail.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(logger logging.Logger) *LogMailer {
	return &LogMailer{logger: logger.With("module", "mailer")}
}

func (m *LogMailer) SendVerification(ctx context.Context, email, code string) error {
	m.logger.Info(ctx, "verification email", "to", email, "code", code)
	return nil
}
