package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	healthCheckTimeout = 2 * time.Second
	appVersion         = "1.0.0"
)

// HealthChecker pings the selected store and Redis and reports process
// health.
type HealthChecker struct {
	infra     Infrastructure
	env       string
	startedAt time.Time
}

func NewHealthChecker(infra Infrastructure, env string) *HealthChecker {
	return &HealthChecker{
		infra:     infra,
		env:       env,
		startedAt: time.Now(),
	}
}

func (h *HealthChecker) check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		if pg := h.infra.Postgres(); pg != nil {
			errs <- pg.Ping(ctx)
			return
		}
		errs <- h.infra.Mongo().Ping(ctx)
	}()

	go func() {
		errs <- h.infra.Redis().Ping(ctx)
	}()

	return errors.Join(<-errs, <-errs)
}

func (h *HealthChecker) Handler(c *gin.Context) {
	status := http.StatusOK
	state := "OK"

	if err := h.check(c.Request.Context()); err != nil {
		status = http.StatusServiceUnavailable
		state = "ERROR"
	}

	c.JSON(status, gin.H{
		"status":      state,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"uptime":      time.Since(h.startedAt).Round(time.Second).String(),
		"environment": h.env,
		"version":     appVersion,
	})
}
