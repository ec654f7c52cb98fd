package repository

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	PublishFailuresKey    = "patient:publish_failures"
	LastPublishFailureKey = "patient:publish_failures:last"
)

// Incrementer is the slice of go-redis the counter writes through.
type Incrementer interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	HSet(ctx context.Context, key string, values ...any) *redis.IntCmd
}

// PublishFailureCounter records swallowed publish failures in Redis so
// operators can see them next to the stream they failed to reach.
type PublishFailureCounter struct {
	client Incrementer
	log    zerolog.Logger
}

func NewPublishFailureCounter(client Incrementer, log zerolog.Logger) *PublishFailureCounter {
	return &PublishFailureCounter{client: client, log: log}
}

func (c *PublishFailureCounter) ReportPublishFailure(ctx context.Context, patientID, eventType string, err error) {
	if incrErr := c.client.Incr(ctx, PublishFailuresKey).Err(); incrErr != nil {
		c.log.Warn().Err(incrErr).Str("patient_id", patientID).Msg("failed to count publish failure")
		return
	}
	if hsetErr := c.client.HSet(ctx, LastPublishFailureKey,
		"patient_id", patientID,
		"event_type", eventType,
		"error", err.Error(),
	).Err(); hsetErr != nil {
		c.log.Warn().Err(hsetErr).Str("patient_id", patientID).Msg("failed to record last publish failure")
	}
}
