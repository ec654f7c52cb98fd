package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// StreamAdder is the slice of the go-redis API the publisher writes through.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

type Publisher struct {
	client StreamAdder
	maxLen int64
	now    func() time.Time
}

// NewPublisher returns a Redis Streams publisher. maxLen caps each stream
// approximately; 0 leaves streams unbounded.
func NewPublisher(client StreamAdder, maxLen int64) *Publisher {
	return &Publisher{client: client, maxLen: maxLen, now: time.Now}
}

// Publish appends one event to stream. The entry carries the partition key
// and type as top-level fields next to the JSON envelope so consumers can
// route without decoding the payload.
func (p *Publisher) Publish(ctx context.Context, stream, key, eventType string, data any) error {
	event := Event{
		Type:      eventType,
		Key:       key,
		Timestamp: p.now().UTC(),
		Data:      data,
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{
			"key":   key,
			"type":  eventType,
			"event": eventJSON,
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	if _, err := p.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// DecodeData re-decodes an envelope's generic Data into target.
func DecodeData(event Event, target any) error {
	raw, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to re-encode event data: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("failed to decode %s event: %w", event.Type, err)
	}
	return nil
}
