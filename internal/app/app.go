package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/dmorandi/auth-backend/internal/config"
	"github.com/dmorandi/auth-backend/internal/domain"
	"github.com/dmorandi/auth-backend/internal/handler"
	"github.com/dmorandi/auth-backend/internal/repository"
	"github.com/dmorandi/auth-backend/internal/service"
	"github.com/dmorandi/auth-backend/internal/utils"
	"github.com/dmorandi/auth-backend/pkg/mailer"
	"github.com/dmorandi/auth-backend/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra   Infrastructure
	config  *config.Config
	router  *gin.Engine
	server  *http.Server
	sweeper *service.TokenSweeper
}

// NewApp wires the whole service graph explicitly: repositories for the
// selected store, services, handlers, routes.
func NewApp(infra Infrastructure, cfg *config.Config) (*App, error) {
	repos, err := repository.New(cfg.Database.Driver, infra.Postgres(), infra.Mongo())
	if err != nil {
		return nil, fmt.Errorf("failed to build repositories: %w", err)
	}

	tokenManager := utils.NewTokenManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry.Duration,
		cfg.JWT.RefreshTokenExpiry.Duration,
	)

	sender, err := mailer.New(mailer.Config{
		Provider:      cfg.Mailer.Provider,
		From:          cfg.Mailer.From,
		SMTPHost:      cfg.Mailer.SMTPHost,
		SMTPPort:      cfg.Mailer.SMTPPort,
		SMTPUser:      cfg.Mailer.SMTPUser,
		SMTPPassword:  cfg.Mailer.SMTPPassword,
		MailgunDomain: cfg.Mailer.MailgunDomain,
		MailgunAPIKey: cfg.Mailer.MailgunAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build mailer: %w", err)
	}

	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra, cfg.Env)

	authService := service.NewAuthService(
		repos.User,
		repos.Token,
		tokenManager,
		cfg.Security.BCryptCost,
	)
	userService := service.NewUserService(repos.User, repos.Token)
	emailService := service.NewEmailService(sender, infra.Logger())

	sweeper := service.NewTokenSweeper(
		repos.Token,
		cfg.Security.TokenSweepInterval.Duration,
		infra.Logger(),
	)

	authHandler := handler.NewAuthHandler(authService, userService)
	userHandler := handler.NewUserHandler(userService)
	emailHandler := handler.NewEmailHandler(emailService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("auth-backend"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, authHandler, userHandler, emailHandler, authService, userService, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:   infra,
		config:  cfg,
		router:  router,
		server:  srv,
		sweeper: sweeper,
	}, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	emailHandler *handler.EmailHandler,
	authService service.AuthService,
	userService service.UserService,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	guard := handler.AuthMiddleware(authService, userService)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register",
				handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey),
				authHandler.Register,
			)
			auth.POST("/login",
				handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey),
				authHandler.Login,
			)
			auth.POST("/refresh-token", authHandler.Refresh)
			auth.POST("/logout", guard, authHandler.Logout)
			auth.GET("/me", guard, authHandler.GetMe)
		}

		users := api.Group("/users", guard)
		{
			users.GET("", userHandler.List)
			users.GET("/:id", userHandler.Get)
			users.PUT("/:id", userHandler.Update)
			users.DELETE("/:id", userHandler.Delete)
			users.POST("/:id/roles", userHandler.AddRole)
			users.DELETE("/:id/roles", userHandler.RemoveRole)
		}

		email := api.Group("/email", guard, handler.RequireRole(domain.RoleAdmin))
		{
			email.POST("/send", emailHandler.Send)
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go a.sweeper.Run(ctx)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
			zap.String("driver", a.config.Database.Driver),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
