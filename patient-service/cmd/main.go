package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BigPhilsnr/patient-management-system/patient-service/internal/billing"
	"github.com/BigPhilsnr/patient-management-system/patient-service/internal/command"
	"github.com/BigPhilsnr/patient-management-system/patient-service/internal/config"
	"github.com/BigPhilsnr/patient-management-system/patient-service/internal/handler"
	"github.com/BigPhilsnr/patient-management-system/patient-service/internal/query"
	"github.com/BigPhilsnr/patient-management-system/patient-service/internal/reconciler"
	"github.com/BigPhilsnr/patient-management-system/patient-service/internal/repository"
	"github.com/BigPhilsnr/patient-management-system/shared/database"
	"github.com/BigPhilsnr/patient-management-system/shared/events"
	"github.com/BigPhilsnr/patient-management-system/shared/logging"
	"github.com/BigPhilsnr/patient-management-system/shared/middleware"
	redisClient "github.com/BigPhilsnr/patient-management-system/shared/redis"
	"github.com/BigPhilsnr/patient-management-system/shared/rpc"
	"github.com/BigPhilsnr/patient-management-system/shared/telemetry"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New("patient-service", "info")
		bootLog.Fatal().Err(err).Msg("Failed to load config")
	}
	log := logging.New("patient-service", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "patient-service", cfg.OTelEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up tracing")
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	// Write store
	dialect, err := database.ParseDialect(cfg.StoreDriver)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid store driver")
	}
	db, err := database.Open(ctx, dialect, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	store, err := repository.NewPatientStore(ctx, db, dialect)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare patient store")
	}

	// Redis connection (read model store + event streaming)
	redis, err := redisClient.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redis.Close()

	// Billing service
	billingConn, err := rpc.Dial(cfg.BillingAddr)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to dial billing service")
	}
	defer billingConn.Close()
	go func() {
		waitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := rpc.WaitForHealth(waitCtx, billingConn, rpc.BillingServiceName, func(format string, args ...any) {
			log.Debug().Msgf(format, args...)
		}); err != nil {
			log.Warn().Err(err).Str("addr", cfg.BillingAddr).Msg("Billing service not healthy yet")
			return
		}
		log.Info().Str("addr", cfg.BillingAddr).Msg("Billing service is serving")
	}()

	// --- CQRS wiring ---
	publisher := events.NewPublisher(redis.Client, cfg.StreamMaxLen)
	readRepo := repository.NewPatientReadRepository(store, redis.Client, cfg.PatientViewTTL, log)
	billingClient := billing.NewClient(billingConn, billing.Config{
		MaxAttempts:    cfg.BillingMaxAttempts,
		InitialBackoff: cfg.BillingInitialBackoff,
	}, log)

	orchestrator := command.NewPatientOrchestrator(store, billingClient, publisher, command.Options{
		BillingTimeout: cfg.BillingTimeout,
		PublishTimeout: cfg.PublishTimeout,
		Views:          readRepo,
		Reporter:       repository.NewPublishFailureCounter(redis.Client, log),
	}, log)
	querySvc := query.NewPatientQueryService(readRepo)
	patientHandler := handler.NewPatientHandler(orchestrator, querySvc)

	go func() {
		r := reconciler.New(store, orchestrator, reconciler.Config{
			Interval:  cfg.ReconcileInterval,
			MinAge:    cfg.ReconcileMinAge,
			BatchSize: cfg.ReconcileBatchSize,
		}, log)
		if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Reconciler stopped")
		}
	}()

	// Setup router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.LoggingMiddleware(log))

	patients := router.Group("/patients")
	{
		patients.GET("", patientHandler.ListPatients)
		patients.GET("/:id", patientHandler.GetPatient)
		patients.POST("", patientHandler.CreatePatient)
		patients.PUT("/:id", patientHandler.UpdatePatient)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Patient service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
