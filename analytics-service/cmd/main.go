package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/BigPhilsnr/patient-management-system/analytics-service/internal/command"
	"github.com/BigPhilsnr/patient-management-system/analytics-service/internal/config"
	"github.com/BigPhilsnr/patient-management-system/analytics-service/internal/handler"
	"github.com/BigPhilsnr/patient-management-system/analytics-service/internal/query"
	"github.com/BigPhilsnr/patient-management-system/analytics-service/internal/repository"
	"github.com/BigPhilsnr/patient-management-system/shared/events"
	"github.com/BigPhilsnr/patient-management-system/shared/logging"
	"github.com/BigPhilsnr/patient-management-system/shared/middleware"
	redisClient "github.com/BigPhilsnr/patient-management-system/shared/redis"
	"github.com/BigPhilsnr/patient-management-system/shared/telemetry"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New("analytics-service", "info")
		bootLog.Fatal().Err(err).Msg("Failed to load config")
	}
	log := logging.New("analytics-service", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "analytics-service", cfg.OTelEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up tracing")
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	redis, err := redisClient.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redis.Close()

	projector := command.NewProjector(repository.NewCounterRepository(redis.Client), cfg.DedupeTTL, log)
	statsHandler := handler.NewStatsHandler(query.NewStatsQueryService(redis.Client))

	var wg sync.WaitGroup
	for stream, handle := range map[string]events.Handler{
		events.PatientEventsStream: projector.HandlePatientEvent,
		events.BillingEventsStream: projector.HandleBillingEvent,
	} {
		subscriber := events.NewSubscriber(redis.Client, events.SubscriberConfig{
			Group:        cfg.ConsumerGroup,
			Consumer:     cfg.ConsumerName,
			Stream:       stream,
			Handler:      handle,
			ClaimMinIdle: cfg.ClaimMinIdle,
		}, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := subscriber.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Str("stream", stream).Msg("Subscriber stopped")
			}
		}()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.LoggingMiddleware(log))
	router.GET("/stats", statsHandler.GetSummary)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Analytics service starting")
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
	wg.Wait()
}
