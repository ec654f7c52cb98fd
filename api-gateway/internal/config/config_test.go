package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "4004", cfg.Port)
	assert.Equal(t, "http://localhost:4005", cfg.AuthServiceURL)
	assert.Equal(t, "http://localhost:4000", cfg.PatientServiceURL)
	assert.Equal(t, ValidationRemote, cfg.AuthValidation)
}

func TestLoad_TrimsTrailingSlash(t *testing.T) {
	t.Setenv("PATIENT_SERVICE_URL", "http://patients:4000/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://patients:4000", cfg.PatientServiceURL)
}

func TestLoad_LocalValidationNeedsSecret(t *testing.T) {
	t.Setenv("AUTH_VALIDATION", "local")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ValidationLocal, cfg.AuthValidation)
}

func TestLoad_UnknownValidationMode(t *testing.T) {
	t.Setenv("AUTH_VALIDATION", "maybe")

	_, err := Load()
	assert.Error(t, err)
}
