package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/anonto42/tweetline/backend/internal/cache"
	"github.com/anonto42/tweetline/backend/internal/handlers"
	"github.com/anonto42/tweetline/backend/internal/router"
	"github.com/anonto42/tweetline/backend/internal/services"
	"github.com/anonto42/tweetline/backend/pkg/config"
	"github.com/anonto42/tweetline/backend/pkg/firebase"
	applog "github.com/anonto42/tweetline/backend/pkg/logger"
	"github.com/anonto42/tweetline/backend/pkg/token"
	"github.com/anonto42/tweetline/backend/validators"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := applog.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, Environment: cfg.Env}); err != nil {
			logger.Warn("sentry disabled", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Initialize database connection
	db, err := config.InitDB(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer config.CloseDB(db, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var counts cache.CountCache = cache.NoopCountCache{}
	if cfg.RedisAddr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn("count cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			counts = cache.NewRedisCountCache(client, cfg.CountCacheTTL)
			logger.Info("count cache enabled", zap.String("addr", cfg.RedisAddr))
		}
	}

	// Initialize Firebase
	var verifier services.FirebaseVerifier
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			logger.Warn("firebase login disabled", zap.Error(err))
		} else {
			verifier = firebaseApp
		}
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	v := validators.NewValidator()
	e.Validator = v
	e.HTTPErrorHandler = handlers.HTTPErrorHandler(logger)

	// Setup global middleware
	config.SetupMiddleware(e, cfg, logger)

	// Setup routes and dependencies
	tokens := token.NewManager(cfg.JWTSecret, cfg.JWTExpiresIn)
	router.SetupRoutes(e, router.Dependencies{
		DB:        db,
		Counts:    counts,
		Tokens:    tokens,
		Issuer:    tokens,
		Firebase:  verifier,
		Validator: v,
		Logger:    logger,
	})

	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("metrics server listening", zap.String("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()

	// Start server
	go func() {
		logger.Info("http server listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown failed", zap.Error(err))
	}
}
