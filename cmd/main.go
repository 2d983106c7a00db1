package main

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-nudge-engine/internal/config"
	"github.com/KasumiMercury/primind-nudge-engine/internal/handler"
	"github.com/KasumiMercury/primind-nudge-engine/internal/health"
	"github.com/KasumiMercury/primind-nudge-engine/internal/infra/eventsink"
	"github.com/KasumiMercury/primind-nudge-engine/internal/infra/issuesource"
	"github.com/KasumiMercury/primind-nudge-engine/internal/infra/nudgerecorder"
	"github.com/KasumiMercury/primind-nudge-engine/internal/infra/prefstore"
	"github.com/KasumiMercury/primind-nudge-engine/internal/infra/repository"
	"github.com/KasumiMercury/primind-nudge-engine/internal/observability/logging"
	"github.com/KasumiMercury/primind-nudge-engine/internal/observability/metrics"
	"github.com/KasumiMercury/primind-nudge-engine/internal/observability/middleware"
	"github.com/KasumiMercury/primind-nudge-engine/internal/service/analytics"
	"github.com/KasumiMercury/primind-nudge-engine/internal/service/content"
	"github.com/KasumiMercury/primind-nudge-engine/internal/service/delivery"
	"github.com/KasumiMercury/primind-nudge-engine/internal/service/engine"
	"github.com/KasumiMercury/primind-nudge-engine/internal/service/schedule"
	"github.com/KasumiMercury/primind-nudge-engine/internal/service/tone"
)

// Version is set via ldflags at build time
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	obs, err := initObservability(ctx)
	if err != nil {
		slog.Error("failed to initialize observability", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			slog.Warn("observability shutdown error", slog.String("error", err.Error()))
		}
	}()

	slog.SetDefault(obs.Logger())

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		return 1
	}

	if err := config.ValidateForRun(cfg); err != nil {
		slog.Error("configuration validation error", slog.String("error", err.Error()))
		return 1
	}

	if err := cfg.Dispatch.Validate(); err != nil {
		slog.Error("dispatch configuration error", slog.String("error", err.Error()))
		return 1
	}

	httpMetrics, err := metrics.NewHTTPMetrics()
	if err != nil {
		slog.Error("failed to initialize HTTP metrics", slog.String("error", err.Error()))
		return 1
	}

	engineMetrics, err := metrics.NewEngineMetrics()
	if err != nil {
		slog.Error("failed to initialize engine metrics", slog.String("error", err.Error()))
		return 1
	}

	// Nudge result recorder (InfluxDB for local, BigQuery for gcloud)
	recorderCfg := nudgerecorder.LoadConfig()
	resultRecorder, err := nudgerecorder.NewRecorder(ctx, recorderCfg)
	if err != nil {
		slog.Error("failed to initialize nudge result recorder", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := resultRecorder.Close(); err != nil {
			slog.Warn("failed to close nudge result recorder", slog.String("error", err.Error()))
		}
	}()

	dispatchQueue, cleanup, err := initDispatchQueue(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize dispatch queue", slog.String("error", err.Error()))
		return 1
	}
	if cleanup != nil {
		defer func() {
			if err := cleanup(); err != nil {
				slog.Error("dispatch queue cleanup error", slog.String("error", err.Error()))
			}
		}()
	}

	redisOpts := &redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	if cfg.Redis.TLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)

	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		slog.Error("failed to instrument redis tracing",
			slog.String("event", "redis.otel.tracing.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	if err := redisotel.InstrumentMetrics(redisClient); err != nil {
		slog.Error("failed to instrument redis metrics",
			slog.String("event", "redis.otel.metrics.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Error("failed to connect redis",
			slog.String("event", "redis.connect.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	defer func() {
		if err := redisClient.Close(); err != nil {
			slog.Warn("failed to close redis client", slog.String("error", err.Error()))
		}
	}()

	slog.Info("redis connected",
		slog.String("addr", cfg.Redis.Addr),
	)

	notificationRepo := repository.NewNotificationRepository(redisClient)
	preferenceStore := prefstore.NewStore(redisClient)
	issueSource := issuesource.NewClient(cfg.IssueTrackerURL,
		cfg.Engine.IssueSourceRatePerSec, cfg.Engine.IssueSourceBurst)

	sink := eventsink.NewChannelSink(0)
	go drainEvents(ctx, sink)

	scheduler := schedule.NewService()
	toneAnalyzer := tone.NewAnalyzer()
	contentGenerator := content.NewGenerator()

	deliveryManager := delivery.NewManager(
		notificationRepo,
		preferenceStore,
		dispatchQueue,
		sink,
		scheduler,
		cfg.Engine,
		engineMetrics,
	)
	aggregator := analytics.NewAggregator(notificationRepo)

	nudgeEngine := engine.New(
		issueSource,
		preferenceStore,
		notificationRepo,
		scheduler,
		toneAnalyzer,
		contentGenerator,
		deliveryManager,
		aggregator,
		resultRecorder,
		cfg.Engine,
		engineMetrics,
	)

	scanRunner := engine.NewScanRunner(nudgeEngine, deliveryManager, preferenceStore, resultRecorder, cfg.Scan)
	if err := scanRunner.Start(ctx); err != nil {
		slog.Error("failed to start scan runner", slog.String("error", err.Error()))
		return 1
	}

	nudgeHandler := handler.NewNudgeHandler(nudgeEngine)
	deliveredHandler := handler.NewDeliveredHandler(deliveryManager)
	preferencesHandler := handler.NewPreferencesHandler(preferenceStore)

	// Setup router with observability middleware
	r := gin.New()
	r.Use(middleware.Gin(middleware.GinConfig{
		SkipPaths:   []string{"/health", "/health/live", "/health/ready", "/metrics"},
		Module:      logging.Module("nudge-engine"),
		TracerName:  "github.com/KasumiMercury/primind-nudge-engine/internal/observability/middleware",
		HTTPMetrics: httpMetrics,
	}))
	r.Use(middleware.PanicRecoveryGin())

	// Health check endpoints
	healthChecker := health.NewChecker(redisClient, Version)
	r.GET("/health/live", healthChecker.LiveHandler())
	r.GET("/health/ready", healthChecker.ReadyHandler())
	r.GET("/health", healthChecker.Handler())

	// API routes
	v1 := r.Group("/api/v1")
	{
		v1.POST("/scan/stale", nudgeHandler.HandleStaleScan)
		v1.POST("/scan/deadline", nudgeHandler.HandleDeadlineScan)
		v1.POST("/notifications", nudgeHandler.HandleCreateNotification)
		v1.POST("/notifications/:id/response", nudgeHandler.HandleResponse)
		v1.POST("/notifications/:id/delivered", deliveredHandler.HandleDelivered)
		v1.POST("/achievements", nudgeHandler.HandleCreateAchievement)
		v1.GET("/analytics/:user_id", nudgeHandler.HandleAnalytics)
		v1.GET("/preferences/:user_id", preferencesHandler.HandleGet)
		v1.PUT("/preferences/:user_id", preferencesHandler.HandlePut)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Port),
			slog.Duration("retention", cfg.Engine.Retention),
			slog.Int("scan_parallelism", cfg.Scan.Parallelism),
			slog.Bool("scans_disabled", cfg.Scan.Disabled),
		)
		serverErr <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := scanRunner.Stop(shutdownCtx); err != nil {
			slog.Warn("scan runner did not stop cleanly", slog.String("error", err.Error()))
		}

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", slog.String("error", err.Error()))
			return 1
		}

		slog.Info("server exited properly")
		return 0

	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return 0
		}
		slog.Error("server exited with error", slog.String("error", err.Error()))
		return 1
	}
}

// drainEvents logs the outbound event stream. A real deployment would
// forward these to the presentation service.
func drainEvents(ctx context.Context, sink *eventsink.ChannelSink) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-sink.Events():
			slog.DebugContext(ctx, "notification event",
				slog.String("kind", string(event.Kind)),
				slog.String("record_id", event.Record.ID),
				slog.String("state", event.Record.State.String()),
			)
		}
	}
}
