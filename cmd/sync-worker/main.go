package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vetsuite/clinic-crm/cmd/mainconfig"
	"github.com/vetsuite/clinic-crm/internal/appointments"
	appconfig "github.com/vetsuite/clinic-crm/internal/config"
	"github.com/vetsuite/clinic-crm/internal/crm"
	"github.com/vetsuite/clinic-crm/internal/crmsync"
	"github.com/vetsuite/clinic-crm/internal/observability/metrics"
	"github.com/vetsuite/clinic-crm/pkg/logging"
)

func main() {
	// Load .env file for local development.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting crm sync worker", "env", cfg.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.SyncQueueURL == "" {
		logger.Error("sync worker requires SYNC_QUEUE_URL")
		os.Exit(1)
	}
	if cfg.CRMAPIKey == "" {
		logger.Error("sync worker requires CRM_API_KEY")
		os.Exit(1)
	}

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	sqsClient := sqs.NewFromConfig(awsCfg)
	queue := crmsync.NewSQSQueue(sqsClient, cfg.SyncQueueURL)

	crmClient := crm.NewClient(cfg.CRMBaseURL, cfg.CRMAPIKey, cfg.CRMLocationID, cfg.CRMTimeout, logger)

	// The backfiller is optional: without postgres the worker still mirrors,
	// it just cannot record CRM appointment ids locally.
	var backfiller crmsync.AppointmentBackfiller
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		backfiller = appointments.NewPostgresRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, crm appointment ids will not be backfilled")
	}

	registry := prometheus.NewRegistry()
	syncMetrics := metrics.NewSyncMetrics(registry)

	worker := crmsync.NewWorker(queue, crmClient, backfiller, syncMetrics, logger,
		crmsync.WithWorkerCount(cfg.WorkerCount))
	worker.Start(ctx)

	// Metrics endpoint for scraping.
	metricsSrv := &http.Server{Addr: ":" + cfg.Port, Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{})}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("crm sync worker shutting down")
	cancel()
	worker.Wait()
	_ = metricsSrv.Close()
}
