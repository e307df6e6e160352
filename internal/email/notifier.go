// Package email sends staff notifications for new contact messages through
// the Resend API.
package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/mail"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"

	"github.com/Togather-Foundation/gallery/internal/config"
	"github.com/Togather-Foundation/gallery/internal/domain/messages"
)

const sendTimeout = 10 * time.Second

var contactTemplate = template.Must(template.New("contact").Parse(`<p><strong>{{.Name}}</strong> &lt;{{.Email}}&gt; wrote:</p>
<blockquote style="white-space: pre-wrap">{{.Message}}</blockquote>
<p style="color:#888">Received {{.CreatedAt.Format "2006-01-02 15:04 MST"}}</p>
`))

// Notifier implements messages.Notifier. When disabled it only logs.
type Notifier struct {
	client  *resend.Client
	from    string
	to      string
	enabled bool
	logger  zerolog.Logger
}

var _ messages.Notifier = (*Notifier)(nil)

func NewNotifier(cfg config.EmailConfig, logger zerolog.Logger) (*Notifier, error) {
	n := &Notifier{
		enabled: cfg.Enabled,
		from:    cfg.From,
		to:      cfg.NotifyTo,
		logger:  logger.With().Str("component", "email").Logger(),
	}
	if !cfg.Enabled {
		return n, nil
	}
	if cfg.ResendAPIKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY is required when email is enabled")
	}
	if err := validateAddress(cfg.From); err != nil {
		return nil, fmt.Errorf("invalid EMAIL_FROM: %w", err)
	}
	if err := validateAddress(cfg.NotifyTo); err != nil {
		return nil, fmt.Errorf("invalid EMAIL_NOTIFY_TO: %w", err)
	}
	n.client = resend.NewClient(cfg.ResendAPIKey)
	return n, nil
}

func (n *Notifier) NotifyContactMessage(ctx context.Context, msg messages.Message) error {
	if !n.enabled {
		n.logger.Debug().Str("message_id", msg.ID.String()).Msg("email disabled, skipping contact notification")
		return nil
	}

	var body bytes.Buffer
	if err := contactTemplate.Execute(&body, msg); err != nil {
		return fmt.Errorf("render contact notification: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{n.to},
		ReplyTo: replyTo(msg.Email),
		Subject: "New contact message from " + singleLine(msg.Name),
		Html:    body.String(),
	}
	sent, err := n.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		var rateLimitErr *resend.RateLimitError
		if errors.As(err, &rateLimitErr) {
			return fmt.Errorf("resend rate limited (resets in %ss): %w", rateLimitErr.Reset, err)
		}
		return fmt.Errorf("send contact notification: %w", err)
	}

	n.logger.Info().Str("email_id", sent.Id).Str("message_id", msg.ID.String()).Msg("contact notification sent")
	return nil
}

func validateAddress(address string) error {
	if strings.ContainsAny(address, "\r\n") {
		return errors.New("address contains newline characters")
	}
	if _, err := mail.ParseAddress(address); err != nil {
		return err
	}
	return nil
}

// replyTo is empty when the visitor address would not survive as a header.
func replyTo(address string) string {
	if validateAddress(address) != nil {
		return ""
	}
	return address
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
