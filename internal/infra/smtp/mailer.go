// Package smtp delivers one-time codes over plain SMTP.
package smtp

import (
	"context"
	"fmt"
	"net/smtp"
)

// Config holds the outbound mail settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer implements otp.Deliverer over net/smtp.
type Mailer struct {
	cfg Config
}

func NewMailer(cfg Config) *Mailer {
	return &Mailer{cfg: cfg}
}

// Deliver sends the code in a plain-text message. The call is synchronous;
// a failure is reported to the caller without retry.
func (m *Mailer) Deliver(_ context.Context, email, code string) error {
	var auth smtp.Auth
	if m.cfg.Username != "" || m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	msg := m.buildMessage(email, code)
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{email}, []byte(msg)); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}
	return nil
}

func (m *Mailer) buildMessage(to, code string) string {
	msg := fmt.Sprintf("From: %s\r\n", m.cfg.From)
	msg += fmt.Sprintf("To: %s\r\n", to)
	msg += "Subject: Your Quiznix OTP Code\r\n"
	msg += "Content-Type: text/plain; charset=UTF-8\r\n"
	msg += "\r\n"
	msg += fmt.Sprintf("Hello,\n\nYour OTP code is: %s\n\nDon't share this code.\n\n- Quiznix Team\n", code)
	return msg
}
