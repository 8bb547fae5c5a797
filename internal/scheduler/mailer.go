package scheduler

import (
	"context"
	"log/slog"
)

// LogMailer records outgoing survey invitations in the log instead of delivering them.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendSurvey(ctx context.Context, email, subject, message, surveyLink string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.logger.InfoContext(ctx, "survey invitation",
		"to", email,
		"subject", subject,
		"message", message,
		"link", surveyLink,
	)
	return nil
}
