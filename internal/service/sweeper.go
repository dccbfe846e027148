package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dmorandi/auth-backend/internal/repository"
)

// TokenSweeper periodically deletes expired tokens. The sweep is
// background maintenance, never triggered by a request.
type TokenSweeper struct {
	tokenRepo repository.TokenRepository
	interval  time.Duration
	logger    *zap.Logger
}

// NewTokenSweeper creates a new token sweeper
func NewTokenSweeper(tokenRepo repository.TokenRepository, interval time.Duration, logger *zap.Logger) *TokenSweeper {
	return &TokenSweeper{
		tokenRepo: tokenRepo,
		interval:  interval,
		logger:    logger,
	}
}

// Run sweeps on the configured interval until the context is cancelled.
func (s *TokenSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Token sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *TokenSweeper) sweep(ctx context.Context) {
	removed, err := s.tokenRepo.DeleteExpired(ctx)
	if err != nil {
		s.logger.Error("Token sweep failed", zap.Error(err))
		return
	}
	if removed {
		s.logger.Info("Expired tokens removed")
	}
}
