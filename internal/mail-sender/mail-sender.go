package mailSender

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	sl "campus_delivery/internal/lib/logger/sl"
	"campus_delivery/internal/lib/resetmail"
	"campus_delivery/internal/models"

	"gopkg.in/gomail.v2"
)

type Mailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (m *Mailer) Send(to, subject, htmlBody string) error {
	from := m.From
	if from == "" {
		from = m.Username
	}

	msg := gomail.NewMessage()
	msg.SetHeader("To", to)
	msg.SetHeader("From", from)
	msg.SetHeader("Subject", subject)

	msg.SetBody("text/html", htmlBody)

	dialer := gomail.NewDialer(m.Host, m.Port, m.Username, m.Password)
	return dialer.DialAndSend(msg)
}

type Sender interface {
	Send(to, subject, htmlBody string) error
}

// Handler decodes a queued models.EmailMessage and delivers it through sender.
func Handler(log *slog.Logger, sender Sender) func(ctx context.Context, body []byte) error {
	return func(_ context.Context, body []byte) error {
		const op = "mailSender.Handler"

		log := log.With(slog.String("op", op))

		var msg models.EmailMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			log.Error("failed to unmarshal message", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}

		if msg.Purpose != models.PurposePasswordReset {
			log.Warn("unknown message purpose", slog.String("purpose", msg.Purpose))
			return fmt.Errorf("%s: unknown purpose %q", op, msg.Purpose)
		}

		html, err := resetmail.Body(msg)
		if err != nil {
			log.Error("failed to render message", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}

		if err := sender.Send(msg.Email, msg.Subject, html); err != nil {
			log.Error("failed to send message", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}

		log.Info("message sent successfully")

		return nil
	}
}
