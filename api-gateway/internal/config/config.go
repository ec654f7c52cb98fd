// Package config holds the api-gateway settings.
package config

import (
	"fmt"
	"strings"
	"time"

	sharedconfig "github.com/BigPhilsnr/patient-management-system/shared/config"
)

const (
	ValidationRemote = "remote"
	ValidationLocal  = "local"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"4004"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	AuthServiceURL    string        `env:"AUTH_SERVICE_URL" envDefault:"http://localhost:4005"`
	PatientServiceURL string        `env:"PATIENT_SERVICE_URL" envDefault:"http://localhost:4000"`
	UpstreamTimeout   time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"15s"`

	// AuthValidation is "remote" (ask auth-service /validate) or "local"
	// (verify the HS256 signature with JWT_SECRET).
	AuthValidation string        `env:"AUTH_VALIDATION" envDefault:"remote"`
	JWTSecret      string        `env:"JWT_SECRET"`
	TokenTTL       time.Duration `env:"TOKEN_TTL" envDefault:"10h"`

	OTelEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

func Load() (Config, error) {
	var cfg Config
	if err := sharedconfig.Load(&cfg); err != nil {
		return Config{}, err
	}
	cfg.AuthServiceURL = strings.TrimSuffix(cfg.AuthServiceURL, "/")
	cfg.PatientServiceURL = strings.TrimSuffix(cfg.PatientServiceURL, "/")
	cfg.AuthValidation = strings.ToLower(strings.TrimSpace(cfg.AuthValidation))

	switch cfg.AuthValidation {
	case ValidationRemote:
	case ValidationLocal:
		if cfg.JWTSecret == "" {
			return Config{}, fmt.Errorf("JWT_SECRET is required when AUTH_VALIDATION=%s", ValidationLocal)
		}
	default:
		return Config{}, fmt.Errorf("unknown AUTH_VALIDATION %q", cfg.AuthValidation)
	}
	return cfg, nil
}
