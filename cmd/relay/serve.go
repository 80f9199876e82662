package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/johnquangdev/webhook-relay/internal/adapter/handler"
	"github.com/johnquangdev/webhook-relay/internal/adapter/repository"
	"github.com/johnquangdev/webhook-relay/internal/domain/repositories"
	"github.com/johnquangdev/webhook-relay/internal/infrastructure/auditlog"
	"github.com/johnquangdev/webhook-relay/internal/infrastructure/external/openclaw"
	"github.com/johnquangdev/webhook-relay/internal/infrastructure/lock"
	"github.com/johnquangdev/webhook-relay/internal/infrastructure/storage"
	"github.com/johnquangdev/webhook-relay/internal/usecase/meeting"
	"github.com/johnquangdev/webhook-relay/pkg/config"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the webhook HTTP(S) server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

// newLogger builds the process logger for the configured environment
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.IsDevelopment() {
		zcfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.Server.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	zcfg.Level = level

	return zcfg.Build()
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// TLS material is resolved first so a bad certificate aborts startup
	tlsCfg, err := cfg.ServerTLS()
	if err != nil {
		return fmt.Errorf("loading TLS: %w", err)
	}

	logger.Info("🔧 Initializing dependencies...")

	locker, closeLocker, err := newLocker(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLocker()

	var mirror repositories.ObjectMirror
	if cfg.Storage.Enabled {
		logger.Info("📦 Connecting to object storage...", zap.String("endpoint", cfg.Storage.Endpoint))
		minioClient, err := storage.NewMinIOClient(ctx, &cfg.Storage)
		if err != nil {
			return fmt.Errorf("connecting to object storage: %w", err)
		}
		mirror = minioClient
		logger.Info("✅ Mirroring meeting files", zap.String("bucket", minioClient.Bucket()))
	}

	events := auditlog.NewLogger(cfg.Data.LogDir)
	meetingRepo := repository.NewMeetingRepository(cfg.Data.MeetingDir, mirror, logger)

	notifier := openclaw.NewClient(&cfg.Notify, logger)
	if !notifier.Enabled() {
		logger.Warn("⚠️  OPENCLAW_TOKEN not set, notifications are disabled")
	}

	meetingService := meeting.NewMeetingService(meetingRepo, locker, notifier, logger)

	e := newEcho(cfg, logger)
	handler.NewRouter(cfg,
		handler.NewGitHubWebhookHandler(cfg.Webhook.GitHubSecret, events, notifier, logger),
		handler.NewKrispWebhookHandler(meetingService, events, logger),
		handler.NewHubSpotWebhookHandler(logger),
		logger,
	).Setup(e)

	if cfg.Webhook.SharedSecret == "" {
		logger.Warn("⚠️  WEBHOOK_SECRET not set, webhook routes are open")
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		TLSConfig:         tlsCfg,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		scheme := "http"
		if tlsCfg != nil {
			scheme = "https"
		}
		logger.Info("🚀 Starting server",
			zap.String("addr", server.Addr),
			zap.String("environment", cfg.Server.Environment),
			zap.String("health", fmt.Sprintf("%s://%s/health", scheme, server.Addr)),
			zap.String("notify", notifier.String()),
		)
		if err := e.StartServer(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit.Done():
	}

	logger.Info("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("✅ Server stopped gracefully")
	return nil
}

// newEcho configures the echo instance and the global middleware chain
func newEcho(cfg *config.Config, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogMethod:    true,
		LogURI:       true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("request_id", v.RequestID),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				logger.Warn("http.request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Info("http.request", fields...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	return e
}

// newLocker picks the Redis lock when REDIS_ADDR is set, the in-process lock
// otherwise
func newLocker(ctx context.Context, cfg *config.Config, logger *zap.Logger) (lock.Locker, func(), error) {
	if cfg.Redis.Addr == "" {
		logger.Info("🔒 Using in-process meeting lock")
		return lock.NewMemoryLocker(), func() {}, nil
	}

	logger.Info("📦 Connecting to Redis...", zap.String("addr", cfg.Redis.Addr))
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	rl := lock.NewRedisLocker(client, cfg.Redis.LockTTL, logger)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rl.Ping(pingCtx); err != nil {
		_ = rl.Close()
		return nil, nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	logger.Info("✅ Redis meeting lock ready")
	return rl, func() {
		if err := rl.Close(); err != nil {
			logger.Warn("Failed to close Redis client", zap.Error(err))
		}
	}, nil
}
