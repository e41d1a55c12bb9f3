// Package mailer is the outbound email half of the messaging port.
// Failures are returned to the notifier, which logs and swallows them;
// they never reach the caller of a business operation.
package mailer

import (
	"os"
	"strconv"

	gomail "gopkg.in/gomail.v2"
)

// Email is a single outbound message. The body is plain text; HTML
// templating belongs to the template catalog, not this core.
type Email struct {
	To      string
	ToName  string
	Subject string
	Body    string
}

type Mailer interface {
	Send(email Email) error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewFromEnv builds an SMTP mailer from MAIL_HOST, MAIL_PORT,
// MAIL_USER, MAIL_PASSWORD and MAIL_FROM, with local-dev defaults.
func NewFromEnv() Mailer {
	host := envOr("MAIL_HOST", "localhost")
	port, err := strconv.Atoi(envOr("MAIL_PORT", "587"))
	if err != nil {
		port = 587
	}
	user := os.Getenv("MAIL_USER")
	password := os.Getenv("MAIL_PASSWORD")
	from := envOr("MAIL_FROM", "no-reply@travelhub.local")

	return &smtpMailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (m *smtpMailer) Send(email Email) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetAddressHeader("To", email.To, email.ToName)
	msg.SetHeader("Subject", email.Subject)
	msg.SetBody("text/plain", email.Body)
	return m.dialer.DialAndSend(msg)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
