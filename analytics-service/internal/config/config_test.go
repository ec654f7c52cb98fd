package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "4002", cfg.Port)
	assert.Equal(t, "analytics-service", cfg.ConsumerGroup)
	assert.Equal(t, 24*time.Hour, cfg.DedupeTTL)
	assert.Equal(t, 30*time.Second, cfg.ClaimMinIdle)

	t.Setenv("CONSUMER_NAME", "analytics-consumer-7")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "analytics-consumer-7", cfg.ConsumerName)
}
