package query

import (
	"context"
	"fmt"
	"strconv"

	"github.com/BigPhilsnr/patient-management-system/analytics-service/internal/command"
	"github.com/redis/go-redis/v9"
)

type CounterReader interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	SCard(ctx context.Context, key string) *redis.IntCmd
}

// Summary is the analytics read model.
type Summary struct {
	EventCounts    map[string]int64 `json:"eventCounts"`
	Patients       int64            `json:"patients"`
	BilledPatients int64            `json:"billedPatients"`
}

type StatsQueryService struct {
	counters CounterReader
}

func NewStatsQueryService(counters CounterReader) *StatsQueryService {
	return &StatsQueryService{counters: counters}
}

func (s *StatsQueryService) Summary(ctx context.Context) (*Summary, error) {
	raw, err := s.counters.HGetAll(ctx, command.EventCountsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read event counts: %w", err)
	}
	counts := make(map[string]int64, len(raw))
	for eventType, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad counter for %s: %w", eventType, err)
		}
		counts[eventType] = n
	}

	patients, err := s.counters.SCard(ctx, command.PatientsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to count patients: %w", err)
	}
	billed, err := s.counters.SCard(ctx, command.BilledPatientsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to count billed patients: %w", err)
	}
	return &Summary{EventCounts: counts, Patients: patients, BilledPatients: billed}, nil
}
