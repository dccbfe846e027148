package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

const mailgunSendTimeout = 30 * time.Second

type mailgunSender struct {
	client *mailgun.MailgunImpl
	from   string
}

func newMailgunSender(cfg Config) (Sender, error) {
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.From == "" {
		return nil, fmt.Errorf("incomplete mailgun configuration")
	}

	return &mailgunSender{
		client: mailgun.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey),
		from:   cfg.From,
	}, nil
}

func (s *mailgunSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("no recipients")
	}

	ctx, cancel := context.WithTimeout(ctx, mailgunSendTimeout)
	defer cancel()

	message := s.client.NewMessage(s.from, msg.Subject, msg.Text, msg.To...)
	if msg.HTML != "" {
		message.SetHtml(msg.HTML)
	}

	if _, _, err := s.client.Send(ctx, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
