package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"account-service/internal/application/services"
	"account-service/internal/config"
	"account-service/internal/delivery/handler"
	"account-service/internal/infrastructure"
	"account-service/internal/messaging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reporter, err := infrastructure.NewErrorReporter(cfg.Sentry)
	if err != nil {
		return fmt.Errorf("init sentry: %w", err)
	}
	defer reporter.Flush(2 * time.Second)

	userRepo, closeStore, err := openUserRepository(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	defer closeStore()

	mailer, err := infrastructure.NewMailer(cfg.Mail, logger)
	if err != nil {
		return err
	}

	var sessionBackend infrastructure.SessionBackend
	if cfg.Redis.Enabled() {
		redisService, err := infrastructure.NewRedisService(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer redisService.Close()
		sessionBackend = redisService
	} else {
		logger.Warn("redis not configured, sessions are stored on the local filesystem")
	}
	sessionStore := infrastructure.NewSessionStore(cfg.Session, sessionBackend)

	uploadStore, err := infrastructure.NewUploadStore(ctx, cfg.Upload)
	if err != nil {
		return fmt.Errorf("init upload store: %w", err)
	}

	var publisher messaging.EventPublisher = messaging.NopPublisher{}
	if cfg.NATSURL != "" {
		natsPublisher, err := messaging.ConnectNats(cfg.NATSURL)
		if err != nil {
			return fmt.Errorf("connect nats: %w", err)
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
	}

	userService := services.NewUserService(
		userRepo,
		infrastructure.NewJWTService(cfg.JWT.Secret, cfg.JWT.TTL),
		infrastructure.NewOTPService(mailer),
		services.WithLogger(logger),
		services.WithPublisher(publisher),
		services.WithOTPExpiry(cfg.OTP.Expiry),
		services.WithOTPMatch(cfg.OTP.EnforceMatch),
	)
	uploadService := services.NewUploadService(uploadStore, logger)

	h := handler.NewHandler(
		userService,
		uploadService,
		infrastructure.NewSessionManager(sessionStore, cfg.Session.CookieName),
		logger,
	)

	var limiter *rate.Limiter
	if cfg.RateLimit.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
	}

	e := handler.NewServer(h, handler.ServerOptions{
		Logger:   logger,
		Reporter: reporter,
		Limiter:  limiter,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "store", cfg.Store.Driver)
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
