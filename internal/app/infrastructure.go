package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"

	"github.com/dmorandi/auth-backend/internal/config"
	"github.com/dmorandi/auth-backend/internal/repository"
	"github.com/dmorandi/auth-backend/pkg/database"
	"github.com/dmorandi/auth-backend/pkg/observability"
)

// Infrastructure bundles the process-wide dependencies. Exactly one of
// Postgres/Mongo is non-nil, decided by the configured driver.
type Infrastructure interface {
	Postgres() *database.Postgres
	Mongo() *database.Mongo
	Redis() *database.Redis
	Logger() *zap.Logger
	MetricsHandler() http.Handler
	MeterProvider() *metric.MeterProvider

	Shutdown(ctx context.Context) error
}

type infrastructure struct {
	postgres       *database.Postgres
	mongo          *database.Mongo
	redis          *database.Redis
	logger         *zap.Logger
	metricsHandler http.Handler
	meterProvider  *metric.MeterProvider
}

var _ Infrastructure = &infrastructure{}

func NewInfrastructure(ctx context.Context, cfg config.Config) (*infrastructure, error) {
	i := &infrastructure{}

	logger, err := observability.InitLogger(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	i.logger = logger

	switch cfg.Database.Driver {
	case "postgres":
		postgres, err := database.NewPostgres(cfg.Postgres.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		if cfg.Postgres.MigrationsPath != "" {
			if err := postgres.Migrate(cfg.Postgres.MigrationsPath); err != nil {
				_ = postgres.Close()
				return nil, fmt.Errorf("failed to migrate database: %w", err)
			}
		}
		i.postgres = postgres
	case "mongo":
		mongo, err := database.NewMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		if err := repository.EnsureMongoIndexes(ctx, mongo); err != nil {
			_ = mongo.Close(ctx)
			return nil, fmt.Errorf("failed to ensure mongo indexes: %w", err)
		}
		i.mongo = mongo
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	redis, err := database.NewRedis(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		i.closeStore(ctx)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	i.redis = redis

	meterProvider, metricsHandler, err := observability.InitTelemetry("auth-backend")
	if err != nil {
		i.closeStore(ctx)
		_ = i.redis.Close()
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	i.meterProvider = meterProvider
	i.metricsHandler = metricsHandler

	return i, nil
}

func (i *infrastructure) closeStore(ctx context.Context) {
	if i.postgres != nil {
		_ = i.postgres.Close()
	}
	if i.mongo != nil {
		_ = i.mongo.Close(ctx)
	}
}

func (i *infrastructure) Postgres() *database.Postgres {
	return i.postgres
}

func (i *infrastructure) Mongo() *database.Mongo {
	return i.mongo
}

func (i *infrastructure) Redis() *database.Redis {
	return i.redis
}

func (i *infrastructure) Logger() *zap.Logger {
	return i.logger
}

func (i *infrastructure) MetricsHandler() http.Handler {
	return i.metricsHandler
}

func (i *infrastructure) MeterProvider() *metric.MeterProvider {
	return i.meterProvider
}

func (i *infrastructure) Shutdown(ctx context.Context) error {
	errs := make(chan error, 4)

	go func() {
		if i.postgres != nil {
			errs <- i.postgres.Close()
			return
		}
		errs <- i.mongo.Close(ctx)
	}()
	go func() { errs <- i.redis.Close() }()
	go func() { errs <- i.logger.Sync() }()
	go func() { errs <- observability.Shutdown(ctx, i.meterProvider, i.logger) }()

	return errors.Join(<-errs, <-errs, <-errs, <-errs)
}
