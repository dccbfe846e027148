// Package mailer sends transactional email through a configured
// provider. Providers share one Sender interface; the provider is
// chosen once at startup.
package mailer

import (
	"context"
	"fmt"
)

// Message is a single outgoing email.
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers messages through a concrete provider.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Config selects and configures the provider.
type Config struct {
	Provider      string
	From          string
	SMTPHost      string
	SMTPPort      string
	SMTPUser      string
	SMTPPassword  string
	MailgunDomain string
	MailgunAPIKey string
}

// New returns the Sender for the configured provider.
func New(cfg Config) (Sender, error) {
	switch cfg.Provider {
	case "smtp":
		return newSMTPSender(cfg)
	case "mailgun":
		return newMailgunSender(cfg)
	default:
		return nil, fmt.Errorf("unknown mailer provider %q", cfg.Provider)
	}
}
