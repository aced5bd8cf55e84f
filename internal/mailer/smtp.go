package mailer

import (
	"fmt"
	"time"

	mail "gopkg.in/mail.v2"
)

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
}

type SMTPMailer struct {
	dialer    *mail.Dialer
	fromEmail string
	backoff   time.Duration
}

func NewSMTP(cfg SMTPConfig) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.FromEmail == "" {
		return nil, fmt.Errorf("mailer: smtp host and from address are required")
	}
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.Timeout = 10 * time.Second
	return &SMTPMailer{dialer: d, fromEmail: cfg.FromEmail, backoff: time.Second}, nil
}

func (m *SMTPMailer) Send(templateFile, username, email string, data any) (int, error) {
	subject, body, err := Render(templateFile, data)
	if err != nil {
		return 0, fmt.Errorf("mailer: render %s: %w", templateFile, err)
	}

	msg := mail.NewMessage()
	msg.SetAddressHeader("From", m.fromEmail, FromName)
	msg.SetAddressHeader("To", email, username)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	var retryErr error
	for i := 0; i < maxRetries; i++ {
		retryErr = m.dialer.DialAndSend(msg)
		if retryErr == nil {
			return i + 1, nil
		}
		if i < maxRetries-1 {
			// exponential backoff
			time.Sleep(m.backoff * time.Duration(1<<i))
		}
	}

	return maxRetries, fmt.Errorf("mailer: failed to send email after %d attempts: %w", maxRetries, retryErr)
}
