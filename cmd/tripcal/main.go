package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"tripcal/internal/backend"
	"tripcal/internal/cache"
	"tripcal/internal/cli"
	apphttp "tripcal/internal/http"
	applog "tripcal/internal/log"
	"tripcal/internal/metrics"
	"tripcal/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger.Logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger).
		CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize overlay backend", "error", err, "backend", backendCfg.Type)
		os.Exit(1)
	}

	var m *metrics.Collector
	if cfg.MetricsEnabled {
		m = metrics.NewCollector()
	}

	svc := services.NewItineraryService(services.FileSource{Path: cfg.DocumentPath}, res.Backend, services.Options{
		ReferenceCurrency: cfg.ReferenceCurrency,
		CacheSize:         cfg.CacheSize,
		CacheTTL:          cfg.CacheTTL,
		Publisher:         res.Publisher,
		Metrics:           m,
	})
	if err := svc.Ready(context.Background()); err != nil {
		// The document may be fixed while running; /readyz reports it.
		logger.Warn("Trip document not loadable yet", "error", err, "path", cfg.DocumentPath)
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Logger:            logger,
		Metrics:           m,
		Ping:              res.Backend.Ping,
		RequestsPerMinute: cfg.RateLimitPerMinute,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", "error", err)
			}
		}
	})

	caches := cache.NewManager(logger.WithComponent(applog.ComponentCache).Logger)
	caches.Register(svc.Cache())
	go caches.Run(ctx, time.Minute)

	logger.Info("Starting tripcal server",
		"port", cfg.Port,
		"document", cfg.DocumentPath,
		"overlay_backend", backendCfg.Type,
		"amqp", res.Publisher != nil,
		"metrics", m != nil)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server failed to start", "error", err)
		os.Exit(1)
	}
	cli.WaitForShutdown(ctx, done)
}
