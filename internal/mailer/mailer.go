// Package mailer delivers composed pitch emails over SMTP.
package mailer

import (
	"context"
	"log/slog"
	"strings"

	"github.com/opencrew/pitchboard/internal/errors"
	"github.com/wneessen/go-mail"
)

// Message is a fully composed outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a message. Implementations must not mutate the message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender sends through an authenticated SMTP submission endpoint.
type SMTPSender struct {
	host     string
	port     int
	from     string
	password string
	logger   *slog.Logger
}

func NewSMTPSender(host string, port int, from, password string, logger *slog.Logger) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		from:     from,
		password: password,
		logger:   logger.With("source", "mailer.SMTPSender"),
	}
}

// htmlBody converts the plain-text body to minimal HTML, preserving line
// breaks the way the composed email shows them.
func htmlBody(body string) string {
	return strings.ReplaceAll(body, "\n", "<br>")
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return errors.Wrap(err, "set from address")
	}
	if err := m.To(msg.To); err != nil {
		return errors.Wrap(err, "set to address", slog.String("to", msg.To))
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, htmlBody(msg.Body))

	client, err := mail.NewClient(s.host,
		mail.WithPort(s.port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.from),
		mail.WithPassword(s.password),
	)
	if err != nil {
		return errors.Wrap(err, "configure smtp client")
	}

	if err = client.DialAndSendWithContext(ctx, m); err != nil {
		return errors.Wrap(err, "send email", slog.String("to", msg.To))
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "email sent", slog.String("to", msg.To))
	return nil
}
