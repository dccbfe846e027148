package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

type smtpSender struct {
	addr string
	auth smtp.Auth
	from string
}

func newSMTPSender(cfg Config) (Sender, error) {
	if cfg.SMTPHost == "" || cfg.SMTPPort == "" || cfg.From == "" {
		return nil, fmt.Errorf("incomplete smtp configuration")
	}

	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}

	return &smtpSender{
		addr: fmt.Sprintf("%s:%s", cfg.SMTPHost, cfg.SMTPPort),
		auth: auth,
		from: cfg.From,
	}, nil
}

func (s *smtpSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("no recipients")
	}

	body := msg.HTML
	contentType := "text/html; charset=utf-8"
	if body == "" {
		body = msg.Text
		contentType = "text/plain; charset=utf-8"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "MIME-Version: 1.0\r\nContent-Type: %s\r\n\r\n", contentType)
	b.WriteString(body)

	if err := smtp.SendMail(s.addr, s.auth, s.from, msg.To, []byte(b.String())); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
