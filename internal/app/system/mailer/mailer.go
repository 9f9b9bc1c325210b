// Package mailer sends transactional email. Sending is a side channel:
// callers fire it from a goroutine and only ever log failures, so a
// broken SMTP relay can never fail a request.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Email is one outbound message with both body forms.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender delivers email. The SMTP implementation is used in
// production; tests substitute a recording fake.
type Sender interface {
	Send(e Email) error
}

// SMTPSender delivers over a plain SMTP relay (Mailpit locally, SES or
// similar in production).
type SMTPSender struct {
	Host     string
	Port     int
	User     string
	Pass     string
	From     string
	FromName string
}

// Send delivers e as a multipart/alternative message. User/Pass empty
// means the relay accepts unauthenticated mail (local dev).
func (s *SMTPSender) Send(e Email) error {
	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)

	var auth smtp.Auth
	if s.User != "" {
		auth = smtp.PlainAuth("", s.User, s.Pass, s.Host)
	}

	msg := s.buildMessage(e)
	if err := smtp.SendMail(addr, auth, s.From, []string{e.To}, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", e.To, err)
	}
	return nil
}

const mimeBoundary = "=_localfind_alt"

func (s *SMTPSender) buildMessage(e Email) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.FromName, s.From)
	fmt.Fprintf(&b, "To: %s\r\n", e.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", e.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mimeBoundary)

	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n", mimeBoundary, e.TextBody)
	if e.HTMLBody != "" {
		fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n", mimeBoundary, e.HTMLBody)
	}
	fmt.Fprintf(&b, "--%s--\r\n", mimeBoundary)
	return []byte(b.String())
}
