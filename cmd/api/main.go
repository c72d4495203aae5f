package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tucredito/tu-credito-api-go/internal/config"
	"github.com/tucredito/tu-credito-api-go/internal/domain"
	"github.com/tucredito/tu-credito-api-go/internal/handler"
	"github.com/tucredito/tu-credito-api-go/internal/infra/mail"
	"github.com/tucredito/tu-credito-api-go/internal/infra/memory"
	"github.com/tucredito/tu-credito-api-go/internal/infra/observability"
	"github.com/tucredito/tu-credito-api-go/internal/infra/postgres"
	"github.com/tucredito/tu-credito-api-go/internal/port"
	"github.com/tucredito/tu-credito-api-go/internal/service"
)

func main() {
	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("database_configured", cfg.DatabaseURL != ""),
		zap.Bool("smtp_configured", cfg.SMTPHost != ""),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Duration("jwt_refresh_ttl", cfg.JWTRefreshTTL),
	)

	// --- Tracing ---
	if cfg.TracesEnabled {
		shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "tu-credito-api")
		if err != nil {
			logger.Fatal("failed to init tracer", zap.Error(err))
		}
		defer shutdown(context.Background())
	}

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Store ---
	var (
		store  port.Store
		pinger handler.Pinger
	)
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		pg, err := postgres.Connect(ctx, cfg.DatabaseURL, logger)
		cancel()
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pg.Close()

		if err := pg.Migrate(context.Background()); err != nil {
			logger.Fatal("failed to apply schema", zap.Error(err))
		}
		if cfg.AdminPassword != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
			if err != nil {
				logger.Fatal("failed to hash admin password", zap.Error(err))
			}
			if err := pg.EnsureUser(context.Background(), cfg.AdminUsername, string(hash)); err != nil {
				logger.Fatal("failed to seed admin user", zap.Error(err))
			}
		}

		store = pg
		pinger = pg
		logger.Info("using Postgres store")
	} else {
		mem := memory.NewStore()
		if cfg.AdminPassword != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
			if err != nil {
				logger.Fatal("failed to hash admin password", zap.Error(err))
			}
			mem.SeedUser(domain.User{Username: cfg.AdminUsername, PasswordHash: string(hash)})
		} else {
			logger.Warn("in-memory store without ADMIN_PASSWORD: no account can log in")
		}

		store = mem
		logger.Warn("DATABASE_URL not set, using in-memory store")
	}

	// --- Notifier ---
	var notifier port.Notifier
	if cfg.SMTPHost != "" {
		notifier = mail.NewMailer(mail.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		}, logger)
		logger.Info("mail notifier enabled", zap.String("smtp_host", cfg.SMTPHost))
	} else {
		notifier = mail.NewConsoleNotifier(logger)
		logger.Info("SMTP not configured, notifications go to the log")
	}

	// --- Services ---
	bankSvc := service.NewBankService(store, metrics, logger)
	clientSvc := service.NewClientService(store, store, metrics, logger)
	creditSvc := service.NewCreditService(store, store, store, notifier, metrics, logger)
	authSvc := service.NewAuthService(store, cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, logger)

	// --- Router ---
	router := handler.NewRouter(handler.Services{
		Banks:   bankSvc,
		Clients: clientSvc,
		Credits: creditSvc,
		Auth:    authSvc,
	}, pinger, metrics, logger, cfg.AllowedOrigins)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
