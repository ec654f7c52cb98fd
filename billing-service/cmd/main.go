package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BigPhilsnr/patient-management-system/billing-service/internal/command"
	"github.com/BigPhilsnr/patient-management-system/billing-service/internal/config"
	"github.com/BigPhilsnr/patient-management-system/billing-service/internal/handler"
	"github.com/BigPhilsnr/patient-management-system/billing-service/internal/query"
	"github.com/BigPhilsnr/patient-management-system/billing-service/internal/repository"
	"github.com/BigPhilsnr/patient-management-system/shared/database"
	"github.com/BigPhilsnr/patient-management-system/shared/events"
	"github.com/BigPhilsnr/patient-management-system/shared/logging"
	"github.com/BigPhilsnr/patient-management-system/shared/middleware"
	redisClient "github.com/BigPhilsnr/patient-management-system/shared/redis"
	"github.com/BigPhilsnr/patient-management-system/shared/rpc"
	"github.com/BigPhilsnr/patient-management-system/shared/telemetry"
	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New("billing-service", "info")
		bootLog.Fatal().Err(err).Msg("Failed to load config")
	}
	log := logging.New("billing-service", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "billing-service", cfg.OTelEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up tracing")
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	dialect, err := database.ParseDialect(cfg.StoreDriver)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid store driver")
	}
	db, err := database.Open(ctx, dialect, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	store, err := repository.NewBillingAccountStore(ctx, db, dialect)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare billing store")
	}

	var publisher command.EventPublisher
	if cfg.PublishEvents {
		redis, err := redisClient.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redis.Close()
		publisher = events.NewPublisher(redis.Client, cfg.StreamMaxLen)
	}

	commandSvc := command.NewBillingCommandService(store, publisher, log)
	querySvc := query.NewBillingQueryService(store)

	// gRPC
	grpcServer := grpc.NewServer(rpc.DefaultServerOptions()...)
	rpc.RegisterBillingServiceServer(grpcServer, handler.NewBillingGRPCServer(commandSvc))
	healthServer := health.NewServer()
	healthServer.SetServingStatus(rpc.BillingServiceName, healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Fatal().Err(err).Str("port", cfg.GRPCPort).Msg("Failed to listen")
	}
	go func() {
		log.Info().Str("port", cfg.GRPCPort).Msg("Billing gRPC server starting")
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("gRPC server stopped")
		}
	}()

	// HTTP
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.LoggingMiddleware(log))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/billing-accounts/:patientId", handler.NewBillingHTTPHandler(querySvc).GetAccount)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("Billing HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down...")
	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown failed")
	}
	grpcServer.GracefulStop()
}
