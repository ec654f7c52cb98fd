// Package config loads service configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Load reads an optional .env file and then parses environment variables into
// target. Variables already set in the process environment win over .env.
func Load(target any) error {
	_ = godotenv.Load()
	return ParseEnv(target)
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
