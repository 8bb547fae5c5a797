package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"
	"html"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"surveysphere/internal/config"

	"github.com/jordan-wright/email"
)

// SMTPMailer delivers survey invitations through a pooled SMTP connection.
type SMTPMailer struct {
	pool    *email.Pool
	from    string
	timeout time.Duration
}

func NewSMTPMailer(cfg config.SMTPConfig) (*SMTPMailer, error) {
	var auth smtp.Auth
	if cfg.Username != "" || cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	connections := cfg.Connections
	if connections < 1 {
		connections = 1
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	pool, err := email.NewPool(addr, connections, auth, &tls.Config{ServerName: cfg.Host})
	if err != nil {
		return nil, fmt.Errorf("smtp pool %s: %w", addr, err)
	}

	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SMTPMailer{pool: pool, from: cfg.From, timeout: timeout}, nil
}

func (m *SMTPMailer) SendSurvey(ctx context.Context, to, subject, message, surveyLink string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.pool.Send(invitation(m.from, to, subject, message, surveyLink), m.timeout); err != nil {
		slog.Error("send survey invitation failed", "err", err, "to", to)
		return fmt.Errorf("send invitation: %w", err)
	}
	return nil
}

func (m *SMTPMailer) Close() {
	m.pool.Close()
}

func invitation(from, to, subject, message, surveyLink string) *email.Email {
	e := email.NewEmail()
	e.From = from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(message + "\n\n" + surveyLink + "\n")
	e.HTML = []byte(fmt.Sprintf("<p>%s</p><p><a href=\"%s\">%s</a></p>",
		html.EscapeString(message), html.EscapeString(surveyLink), html.EscapeString(surveyLink)))
	return e
}
