package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/Shivanand-hulikatti/event-ticketing/internal/config"
	"github.com/Shivanand-hulikatti/event-ticketing/internal/model"
)

// Mailer sends confirmation emails over SMTP.
type Mailer struct {
	client   *mail.Client
	from     string
	fromName string
}

// NewMailer builds an SMTP client. Authentication is only configured when a
// username is set.
func NewMailer(cfg config.MailConfig) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is not configured")
	}
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	c, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &Mailer{client: c, from: cfg.FromAddress, fromName: cfg.FromName}, nil
}

// SendConfirmation emails the attendee their registration details.
func (m *Mailer) SendConfirmation(ctx context.Context, p ConfirmationPayload) error {
	msg, err := buildConfirmation(m.fromName, m.from, p)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send confirmation %s: %w", p.RegistrationID, err)
	}
	return nil
}

func buildConfirmation(fromName, from string, p ConfirmationPayload) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(fromName, from); err != nil {
		return nil, fmt.Errorf("set from address: %w", err)
	}
	if err := msg.AddToFormat(p.FullName, p.Email); err != nil {
		return nil, fmt.Errorf("set to address: %w", err)
	}
	msg.Subject(confirmationSubject(p))
	msg.SetBodyString(mail.TypeTextPlain, confirmationBody(p))
	return msg, nil
}

func confirmationSubject(p ConfirmationPayload) string {
	return fmt.Sprintf("Your %s registration is confirmed", p.TicketTypeName)
}

func confirmationBody(p ConfirmationPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", p.FullName)
	fmt.Fprintf(&b, "You are registered for %d x %s.\n", p.Quantity, p.TicketTypeName)
	fmt.Fprintf(&b, "Unit price: %s\n", model.FormatCents(p.PriceCents))
	fmt.Fprintf(&b, "Total: %s\n\n", model.FormatCents(p.PriceCents*int64(p.Quantity)))
	fmt.Fprintf(&b, "Registration reference: %s\n", p.RegistrationID)
	b.WriteString("\nThis is a system-generated message. Do not reply to this email.\n")
	return b.String()
}
