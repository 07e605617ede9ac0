package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// SMTPMailer delivers invite emails over plain SMTP.
type SMTPMailer struct {
	Addr string
	From string
}

// SendInvite sends the event invitation email.
func (m *SMTPMailer) SendInvite(ctx context.Context, to, eventID string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: Event invitation\r\n\r\n")
	fmt.Fprintf(&msg, "You have been invited to event %s.\r\n", eventID)

	if err := smtp.SendMail(m.Addr, nil, m.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send invite mail: %w", err)
	}
	return nil
}

// LogMailer records invites in the log instead of sending them. Used when no
// SMTP relay is configured.
type LogMailer struct {
	Logger *slog.Logger
}

// SendInvite logs the invitation.
func (m *LogMailer) SendInvite(ctx context.Context, to, eventID string) error {
	m.Logger.Info("invite email (dry run)",
		slog.String("to", to), slog.String("event_id", eventID))
	return nil
}

var (
	_ Mailer = (*SMTPMailer)(nil)
	_ Mailer = (*LogMailer)(nil)
)
