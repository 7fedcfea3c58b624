package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/finboard/finboard/internal/app"
	"github.com/finboard/finboard/internal/observability"
	recordshttp "github.com/finboard/finboard/internal/records/http"
	"github.com/finboard/finboard/internal/reports"
	reportshttp "github.com/finboard/finboard/internal/reports/http"
	"github.com/finboard/finboard/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		logger.Error("open store", slog.String("driver", cfg.StoreDriver), slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()

	redisClient := app.ConnectRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()
	reportService, err := app.NewReportService(cfg, store.Reader, redisClient, metrics, logger)
	if err != nil {
		logger.Error("init report service", slog.Any("error", err))
		os.Exit(1)
	}
	if err := reportService.Cache().ListenForInvalidation(ctx, reports.BumpChannel); err != nil {
		logger.Warn("listen for cache invalidation", slog.Any("error", err))
	}

	var jobHandler *jobs.Handler
	if redisClient != nil {
		inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		defer inspector.Close()
		jobHandler = jobs.NewHandler(inspector, logger)
	}

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		ReportsHandler: reportshttp.NewHandler(logger, reportService).WithTimeout(cfg.AppRequestTimeout),
		RecordsHandler: recordshttp.NewHandler(logger, store.Reader),
		JobHandler:     jobHandler,
		Store:          store.Ping,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server",
			slog.String("addr", cfg.AppAddr),
			slog.String("driver", cfg.StoreDriver),
			slog.String("schema", cfg.StoreSchema),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
