package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/vetsuite/clinic-crm/cmd/mainconfig"
	"github.com/vetsuite/clinic-crm/internal/api/router"
	"github.com/vetsuite/clinic-crm/internal/appointments"
	"github.com/vetsuite/clinic-crm/internal/clinic"
	appconfig "github.com/vetsuite/clinic-crm/internal/config"
	"github.com/vetsuite/clinic-crm/internal/crmsync"
	"github.com/vetsuite/clinic-crm/internal/dashboard"
	"github.com/vetsuite/clinic-crm/internal/events"
	"github.com/vetsuite/clinic-crm/internal/identity"
	"github.com/vetsuite/clinic-crm/internal/notify"
	"github.com/vetsuite/clinic-crm/internal/observability/metrics"
	"github.com/vetsuite/clinic-crm/internal/pets"
	"github.com/vetsuite/clinic-crm/internal/storage"
	"github.com/vetsuite/clinic-crm/pkg/logging"
)

func main() {
	// Load .env file for local development.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic-crm API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := prometheus.NewRegistry()
	bookingMetrics := metrics.NewBookingMetrics(registry)

	// Persistence. Without DATABASE_URL the server runs fully in memory,
	// which is how the dev stack and e2e suites use it.
	var (
		petRepo     pets.Repository
		apptRepo    appointments.Repository
		outboxStore *events.OutboxStore
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		petRepo = pets.NewPostgresRepository(pool)
		apptRepo = appointments.NewPostgresRepository(pool)
		outboxStore = events.NewOutboxStore(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory repositories")
		petRepo = pets.NewInMemoryRepository()
		apptRepo = appointments.NewInMemoryRepository()
	}

	// Scheduling policy lives in redis so staff edits apply without a deploy.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()
	settingsStore := clinic.NewStore(redisClient, schedulingDefaults(cfg, logger))

	useSQS := !cfg.UseMemoryQueue && cfg.SyncQueueURL != ""
	var awsCfg aws.Config
	if useSQS || cfg.PetImageBucket != "" {
		loaded, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		awsCfg = loaded
	}

	// CRM mirror queue.
	var queuePublisher *crmsync.Publisher
	if useSQS {
		sqsClient := sqs.NewFromConfig(awsCfg)
		queuePublisher = crmsync.NewPublisher(crmsync.NewSQSQueue(sqsClient, cfg.SyncQueueURL), logger)
	} else {
		logger.Warn("using in-memory crm sync queue, jobs are lost on restart")
		queuePublisher = crmsync.NewPublisher(crmsync.NewMemoryQueue(256), logger)
	}

	// Pet image storage (optional).
	var imageStore pets.ImageStore
	if cfg.PetImageBucket != "" {
		imageStore = storage.NewImageStore(s3.NewFromConfig(awsCfg), cfg.PetImageBucket, logger)
	}

	// Outbox deliverer forwards committed booking events onto the queue.
	if outboxStore != nil {
		deliverer := events.NewDeliverer(outboxStore, queuePublisher, logger).
			WithBatchSize(25).
			WithInterval(2 * time.Second)
		go deliverer.Start(ctx)
	}

	// Owner login provisioning (optional).
	var provisioner *identity.Provisioner
	if cfg.AuthAdminBaseURL != "" {
		var mail notify.EmailSender
		if cfg.SendGridAPIKey != "" {
			mail = notify.NewSendGridSender(notify.SendGridConfig{
				APIKey:    cfg.SendGridAPIKey,
				FromEmail: cfg.SendGridFromEmail,
				FromName:  cfg.SendGridFromName,
			}, logger)
		} else {
			mail = notify.NewStubEmailSender(logger)
		}
		accounts := identity.NewAdminClient(cfg.AuthAdminBaseURL, cfg.AuthAdminServiceKey, logger)
		provisioner = identity.NewProvisioner(accounts, mail, logger)
	}

	petService := pets.NewService(petRepo, logger)
	petsHandler := pets.NewHandler(petService, provisioner, queuePublisher, imageStore, logger)

	var outboxInserter appointments.OutboxInserter
	if outboxStore != nil {
		outboxInserter = outboxStore
	}
	apptService := appointments.NewService(apptRepo, petRepo, settingsStore, outboxInserter, bookingMetrics, logger)
	apptHandler := appointments.NewHandler(apptService, logger)

	dash := dashboard.NewHandler(apptService, petService, logger)
	settingsHandler := clinic.NewHandler(settingsStore, logger)

	r := router.New(&router.Config{
		Logger:              logger,
		PetsHandler:         petsHandler,
		AppointmentsHandler: apptHandler,
		Dashboard:           dash,
		SettingsHandler:     settingsHandler,
		AuthSecret:          cfg.AuthJWTSecret,
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// schedulingDefaults builds the policy served before staff save one,
// from the WORKDAY_*/SLOT_MINUTES/DISABLED_WEEKDAY env knobs.
func schedulingDefaults(cfg *appconfig.Config, logger *logging.Logger) *clinic.Settings {
	defaults := clinic.DefaultSettings()
	defaults.OpenTime = cfg.WorkdayOpen
	defaults.CloseTime = cfg.WorkdayClose
	defaults.SlotMinutes = cfg.SlotMinutes
	defaults.DefaultDurationMinutes = cfg.DefaultDurationMinutes
	if cfg.DisabledWeekday == "" {
		defaults.DisabledWeekdays = nil
	} else {
		defaults.DisabledWeekdays = []string{cfg.DisabledWeekday}
	}
	if err := defaults.Validate(); err != nil {
		logger.Warn("invalid scheduling config, falling back to stock defaults", "error", err)
		return clinic.DefaultSettings()
	}
	return defaults
}
