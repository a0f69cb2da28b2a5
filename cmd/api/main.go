package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-otp-auth/internal/application/auth"
	"github.com/go-otp-auth/internal/application/session"
	"github.com/go-otp-auth/internal/config"
	"github.com/go-otp-auth/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-otp-auth/internal/infrastructure/jwt"
	"github.com/go-otp-auth/internal/infrastructure/smtp"
	"github.com/go-otp-auth/internal/infrastructure/sns"
	"github.com/go-otp-auth/internal/pkg/clock"
	"github.com/go-otp-auth/internal/pkg/hash"
	"github.com/go-otp-auth/internal/pkg/otpcode"
	transporthttp "github.com/go-otp-auth/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)})))
	if envErr != nil {
		slog.Info("no .env file found, reading from environment")
	}

	if err := run(cfg); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx := context.Background()
	clk := clock.New()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("dynamodb client: %w", err)
	}
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	hasher, err := hash.NewHMAC(cfg.OTP.HashSecret)
	if err != nil {
		return err
	}
	jwtProvider, err := jwtinfra.NewProvider(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiry, clk)
	if err != nil {
		return err
	}

	// SNS login events (optional, no-op without a topic).
	publisher, err := sns.NewPublisher(ctx, cfg)
	if err != nil {
		slog.Warn("SNS publisher not available", "err", err)
	}

	sessionSvc := session.NewService(dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users), jwtProvider, clk)
	authSvc := auth.NewService(auth.ServiceDeps{
		OTPRepo:   dynamo.NewOTPRepo(dynamoClient, cfg.DynamoTables.OTPRecords),
		Generator: otpcode.New(),
		Hasher:    hasher,
		Mailer:    smtp.NewMailer(cfg),
		Issuer:    sessionSvc,
		Publisher: publisher,
		Clock:     clk,
		Policy:    cfg.OTP,
		SiteName:  cfg.SiteName,
	})

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{
		AuthService:    authSvc,
		SessionService: sessionSvc,
		Verifier:       jwtProvider,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
