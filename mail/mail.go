// Package mail is the outbound email boundary. The reset flow only
// ever talks to Sender; delivery details stay here.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// Sender delivers one email.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTP sends mail through a plain-auth SMTP relay.
//
// The pack has no third-party mail client and neither does this
// service; net/smtp covers a single relay with PLAIN auth.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (s *SMTP) Send(_ context.Context, to, subject, htmlBody string) error {
	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	if err := smtp.SendMail(addr, auth, s.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// Log is a development sender that records instead of delivering.
// It never logs the message body; reset links are credentials.
type Log struct {
	Logger *slog.Logger
}

func (l *Log) Send(_ context.Context, to, subject, _ string) error {
	if l.Logger != nil {
		l.Logger.Info("mail suppressed (no SMTP configured)", "to", to, "subject", subject)
	}
	return nil
}

// ResetMessage builds the password reset email. The link is valid for
// one hour; the copy says so.
func ResetMessage(username, resetLink string) (subject, htmlBody string) {
	subject = "Password reset request"
	htmlBody = fmt.Sprintf(`<div style="font-family: Arial, sans-serif; padding: 20px;">
  <h2>Password reset</h2>
  <p>Hello %s,</p>
  <p>A password reset was requested for your account. Use the link below to choose a new password:</p>
  <p><a href="%s">Reset my password</a></p>
  <p>Or copy this link into your browser:</p>
  <p style="color: #666;">%s</p>
  <p style="color: red;">This link is valid for 1 hour.</p>
  <p>If you did not request this, you can ignore this email.</p>
</div>`, username, resetLink, resetLink)
	return subject, htmlBody
}
