package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BigPhilsnr/patient-management-system/api-gateway/internal/authcheck"
	"github.com/BigPhilsnr/patient-management-system/api-gateway/internal/config"
	"github.com/BigPhilsnr/patient-management-system/api-gateway/internal/proxy"
	"github.com/BigPhilsnr/patient-management-system/shared/logging"
	"github.com/BigPhilsnr/patient-management-system/shared/middleware"
	"github.com/BigPhilsnr/patient-management-system/shared/telemetry"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New("api-gateway", "info")
		bootLog.Fatal().Err(err).Msg("Failed to load config")
	}
	log := logging.New("api-gateway", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "api-gateway", cfg.OTelEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up tracing")
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	upstream := &http.Client{Timeout: cfg.UpstreamTimeout}

	var validator middleware.TokenValidator
	switch cfg.AuthValidation {
	case config.ValidationLocal:
		tokens, err := middleware.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid token settings")
		}
		validator = tokens
	default:
		validator = authcheck.NewRemoteValidator(upstream, cfg.AuthServiceURL)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.LoggingMiddleware(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "api-gateway"})
	})

	proxy.Register(router, proxy.NewForwarder(upstream, log), proxy.Upstreams{
		AuthServiceURL:    cfg.AuthServiceURL,
		PatientServiceURL: cfg.PatientServiceURL,
	}, validator)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.Port).Str("auth_validation", cfg.AuthValidation).Msg("API Gateway starting")
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
