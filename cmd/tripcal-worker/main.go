package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"tripcal/internal/amqp"
	"tripcal/internal/cli"
	applog "tripcal/internal/log"
	"tripcal/internal/metrics"
	"tripcal/internal/services"
	gsheet "tripcal/internal/sheets/google"
	"tripcal/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger.Logger)

	logger.Info("Starting tripcal-worker")

	// The worker always reads the SQLite overlay the server writes.
	repo := cli.InitSQLite(logger.Logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var m *metrics.Collector
	if cfg.MetricsEnabled {
		m = metrics.NewCollector()
	}

	svc := services.NewItineraryService(services.FileSource{Path: cfg.DocumentPath}, repo, services.Options{
		ReferenceCurrency: cfg.ReferenceCurrency,
		CacheSize:         cfg.CacheSize,
		CacheTTL:          cfg.CacheTTL,
		Metrics:           m,
	})
	snapshots := worker.NewSnapshotWorker(svc, repo, m)

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
	} else {
		logger.Info("AMQP disabled - overlay snapshots come from the schedule only")
	}

	var syncProcessor *services.SyncProcessor
	if cfg.SheetsEnabled() {
		sheetsClient, err := gsheet.New(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		syncCfg := services.DefaultSyncProcessorConfig()
		syncCfg.BatchSize = cfg.SnapshotBatchSize
		syncProcessor = services.NewSyncProcessor(repo, sheetsClient, m, syncCfg)
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	var metricsSrv *http.Server
	if m != nil && cfg.WorkerMetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("GET /metrics", m.Handler())
		metricsSrv = &http.Server{
			Addr:              cfg.WorkerMetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()
		if syncProcessor != nil {
			if err := syncProcessor.Stop(shutdownCtx); err != nil {
				logger.Error("Failed to stop sync processor", "error", err)
			}
		}
		if metricsSrv != nil {
			if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Metrics server shutdown error", "error", err)
			}
		}
	})

	logger.Info("Performing startup snapshot check...")
	if taken, err := snapshots.StartupCheck(ctx); err != nil {
		// Don't exit - the schedule or the next overlay change retries
		logger.Error("Startup snapshot check failed", "error", err)
	} else if taken {
		logger.Info("Startup snapshot stored")
	}

	if syncProcessor != nil {
		if err := syncProcessor.Start(ctx); err != nil {
			logger.Error("Failed to start sync processor", "error", err)
			os.Exit(1)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	if cfg.SnapshotSchedule != "" {
		g.Go(func() error {
			return snapshots.RunSchedule(gctx, cfg.SnapshotSchedule)
		})
	}
	if amqpClient != nil {
		g.Go(func() error {
			err := amqpClient.ConsumeOverlayChanges(gctx, snapshots.HandleOverlayChanged)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	if metricsSrv != nil {
		g.Go(func() error {
			logger.Info("Serving worker metrics", "addr", metricsSrv.Addr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	cli.WaitForShutdown(ctx, done)
	logger.Info("tripcal-worker stopped")
}
