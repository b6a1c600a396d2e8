package services

import (
	"fmt"
	"log"

	"github.com/wneessen/go-mail"
)

// Mailer delivers one HTML email. The magic-link flow treats a send failure
// as a recoverable, user-visible error, never a server error.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer sends through a real SMTP relay.
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.From); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	client, err := mail.NewClient(m.Host,
		mail.WithPort(m.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.Username),
		mail.WithPassword(m.Password),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSend(msg)
}

// LogMailer prints the email instead of sending it. Used in development so
// the magic-link flow works without SMTP credentials.
type LogMailer struct{}

func (m *LogMailer) Send(to, subject, htmlBody string) error {
	log.Printf("[MAIL] would send to %s: %s\n%s", to, subject, htmlBody)
	return nil
}
