package resetmail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"strings"

	sl "campus_delivery/internal/lib/logger/sl"
	"campus_delivery/internal/models"
)

const Subject = "Reset Your Campus Delivery Password"

type Publisher interface {
	SendMessage(ctx context.Context, msg models.EmailMessage) error
}

// Link builds <frontendURL>/reset-password?token=<token>.
func Link(frontendURL, token string) string {
	return fmt.Sprintf("%s/reset-password?token=%s",
		strings.TrimRight(frontendURL, "/"),
		url.QueryEscape(token),
	)
}

func SendResetLink(
	ctx context.Context,
	log *slog.Logger,
	pub Publisher,
	frontendURL, email, token string,
) error {
	msg := models.EmailMessage{
		Email:   email,
		Subject: Subject,
		Link:    Link(frontendURL, token),
		Purpose: models.PurposePasswordReset,
	}

	if err := pub.SendMessage(ctx, msg); err != nil {
		log.Error("failed to publish reset link", sl.Err(err))

		return fmt.Errorf("resetmail.SendResetLink: %w", err)
	}

	return nil
}

var resetBody = template.Must(template.New("reset").Parse(`<p>Hello,</p>
<p>Someone requested a password reset for your Campus Delivery account.</p>
<p>Click <a href="{{.Link}}">here</a> to reset your password. This link will expire in 1 hour.</p>
<p>If you didn't request this, you can safely ignore this email.</p>
`))

// Body renders the HTML body the mail sender delivers for msg.
func Body(msg models.EmailMessage) (string, error) {
	var buf bytes.Buffer

	if err := resetBody.Execute(&buf, msg); err != nil {
		return "", fmt.Errorf("resetmail.Body: %w", err)
	}

	return buf.String(), nil
}
