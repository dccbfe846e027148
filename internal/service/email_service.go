package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dmorandi/auth-backend/internal/dto"
	"github.com/dmorandi/auth-backend/pkg/mailer"
)

// emailService implements EmailService over a configured mail provider
type emailService struct {
	sender mailer.Sender
	logger *zap.Logger
}

// NewEmailService creates a new email service
func NewEmailService(sender mailer.Sender, logger *zap.Logger) EmailService {
	return &emailService{
		sender: sender,
		logger: logger,
	}
}

// Send delivers a transactional email through the configured provider.
func (s *emailService) Send(ctx context.Context, req *dto.SendEmailRequest) error {
	msg := mailer.Message{
		To:      req.To,
		Subject: req.Subject,
		HTML:    req.HTML,
		Text:    req.Text,
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Error("failed to send email",
			zap.Strings("to", req.To),
			zap.String("subject", req.Subject),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent",
		zap.Strings("to", req.To),
		zap.String("subject", req.Subject),
	)
	return nil
}
