package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer delivers outbound notifications. It is treated as an external
// collaborator and mocked in tests.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer sends mail over SMTP.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// Ensure SMTPMailer implements Mailer
var _ Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer creates a mailer for the given SMTP server.
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// Send delivers a single HTML message. Blocks until the server accepts it.
func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// ResetPasswordBody renders the password-reset notification for the given link.
func ResetPasswordBody(resetURL string) string {
	return fmt.Sprintf(`
      <h1>You have requested a password reset</h1>
      <p>Please go to this link to reset your password:</p>
      <a href=%s clicktracking=off>%s</a>
    `, resetURL, resetURL)
}
