package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type Handler func(ctx context.Context, event Event) error

// StreamGroupReader is the slice of the go-redis API a consumer-group
// subscriber needs.
type StreamGroupReader interface {
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
	XAutoClaim(ctx context.Context, a *redis.XAutoClaimArgs) *redis.XAutoClaimCmd
}

type Subscriber struct {
	client        StreamGroupReader
	group         string
	consumer      string
	stream        string
	handler       Handler
	batchSize     int64
	blockDuration time.Duration
	claimMinIdle  time.Duration
	log           zerolog.Logger
	lastClaim     time.Time
}

type SubscriberConfig struct {
	Group         string
	Consumer      string
	Stream        string
	Handler       Handler
	BatchSize     int64
	BlockDuration time.Duration
	// ClaimMinIdle is how long an entry must sit unacked in the group before
	// this consumer takes it over. It is also the reclaim interval.
	ClaimMinIdle time.Duration
}

func NewSubscriber(client StreamGroupReader, config SubscriberConfig, log zerolog.Logger) *Subscriber {
	if config.BatchSize == 0 {
		config.BatchSize = 10
	}
	if config.BlockDuration == 0 {
		config.BlockDuration = 5 * time.Second
	}
	if config.ClaimMinIdle == 0 {
		config.ClaimMinIdle = 30 * time.Second
	}

	return &Subscriber{
		client:        client,
		group:         config.Group,
		consumer:      config.Consumer,
		stream:        config.Stream,
		handler:       config.Handler,
		batchSize:     config.BatchSize,
		blockDuration: config.BlockDuration,
		claimMinIdle:  config.ClaimMinIdle,
		log: log.With().
			Str("stream", config.Stream).
			Str("group", config.Group).
			Str("consumer", config.Consumer).
			Logger(),
	}
}

func (s *Subscriber) Start(ctx context.Context) error {
	// Create consumer group if it doesn't exist
	err := s.client.XGroupCreateMkStream(ctx, s.stream, s.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	s.log.Info().Msg("subscriber started")

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("subscriber stopping")
			return ctx.Err()
		default:
			if time.Since(s.lastClaim) >= s.claimMinIdle {
				s.lastClaim = time.Now()
				if _, err := s.Reclaim(ctx); err != nil && ctx.Err() == nil {
					s.log.Error().Err(err).Msg("error reclaiming pending messages")
				}
			}
			if err := s.ReadOnce(ctx); err != nil {
				if ctx.Err() != nil {
					continue
				}
				s.log.Error().Err(err).Msg("error reading messages")
				select {
				case <-ctx.Done():
				case <-time.After(time.Second):
				}
			}
		}
	}
}

// ReadOnce reads and dispatches one batch of new entries. Handler failures
// are not acked; Reclaim picks them up again once they have idled.
func (s *Subscriber) ReadOnce(ctx context.Context) error {
	streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.group,
		Consumer: s.consumer,
		Streams:  []string{s.stream, ">"},
		Count:    s.batchSize,
		Block:    s.blockDuration,
	}).Result()

	if errors.Is(err, redis.Nil) {
		return nil // No messages
	}
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, stream := range streams {
		s.dispatch(ctx, stream.Messages)
	}

	return nil
}

// Reclaim takes over entries left pending in the group for at least
// ClaimMinIdle, by this or a crashed consumer, and dispatches them again.
// It returns how many entries were claimed.
func (s *Subscriber) Reclaim(ctx context.Context) (int, error) {
	claimed := 0
	start := "0-0"
	for {
		messages, next, err := s.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   s.stream,
			Group:    s.group,
			Consumer: s.consumer,
			MinIdle:  s.claimMinIdle,
			Start:    start,
			Count:    s.batchSize,
		}).Result()
		if errors.Is(err, redis.Nil) {
			return claimed, nil
		}
		if err != nil {
			return claimed, fmt.Errorf("failed to claim pending messages: %w", err)
		}

		claimed += len(messages)
		s.dispatch(ctx, messages)

		if next == "" || next == "0-0" || ctx.Err() != nil {
			break
		}
		start = next
	}
	if claimed > 0 {
		s.log.Info().Int("claimed", claimed).Msg("reclaimed pending messages")
	}
	return claimed, nil
}

func (s *Subscriber) dispatch(ctx context.Context, messages []redis.XMessage) {
	for _, message := range messages {
		if err := s.processMessage(ctx, message); err != nil {
			s.log.Error().Err(err).Str("messageId", message.ID).Msg("failed to process message")
			continue
		}

		if err := s.client.XAck(ctx, s.stream, s.group, message.ID).Err(); err != nil {
			s.log.Error().Err(err).Str("messageId", message.ID).Msg("failed to ack message")
		}
	}
}

func (s *Subscriber) processMessage(ctx context.Context, message redis.XMessage) error {
	eventData, ok := message.Values["event"].(string)
	if !ok {
		return fmt.Errorf("invalid message format")
	}

	var event Event
	if err := json.Unmarshal([]byte(eventData), &event); err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	return s.handler(ctx, event)
}
