package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BigPhilsnr/patient-management-system/auth-service/internal/command"
	"github.com/BigPhilsnr/patient-management-system/auth-service/internal/config"
	"github.com/BigPhilsnr/patient-management-system/auth-service/internal/handler"
	authqry "github.com/BigPhilsnr/patient-management-system/auth-service/internal/query"
	"github.com/BigPhilsnr/patient-management-system/auth-service/internal/repository"
	"github.com/BigPhilsnr/patient-management-system/shared/database"
	"github.com/BigPhilsnr/patient-management-system/shared/logging"
	"github.com/BigPhilsnr/patient-management-system/shared/middleware"
	"github.com/BigPhilsnr/patient-management-system/shared/telemetry"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New("auth-service", "info")
		bootLog.Fatal().Err(err).Msg("Failed to load config")
	}
	log := logging.New("auth-service", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "auth-service", cfg.OTelEndpoint)
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

	userRepo, err := repository.NewUserRepository(ctx, db, dialect)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare user store")
	}
	if cfg.SeedUser {
		if err := command.SeedUser(ctx, userRepo, cfg.SeedUserEmail, cfg.SeedUserPassword, cfg.SeedUserRole, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed user")
		}
	}

	tokens, err := middleware.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid token settings")
	}

	// CQRS: auth is read-only apart from seeding
	querySvc := authqry.NewAuthQueryService(userRepo, tokens)
	authHandler := handler.NewAuthHandler(querySvc)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.LoggingMiddleware(log))

	router.POST("/login", authHandler.Login)
	router.GET("/validate", authHandler.Validate)
	router.POST("/refresh", authHandler.RefreshToken)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Auth service starting")
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
