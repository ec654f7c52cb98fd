package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/BigPhilsnr/patient-management-system/analytics-service/internal/command"
	"github.com/redis/go-redis/v9"
)

// KEYS: marker, count hash[, set]. ARGV: marker ttl ms, count field[, member].
var applyProjection = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('HINCRBY', KEYS[2], ARGV[2], 1)
if #KEYS == 3 then
	redis.call('SADD', KEYS[3], ARGV[3])
end
redis.call('SET', KEYS[1], 1, 'PX', ARGV[1])
return 1
`)

// CounterRepository applies projections with a server-side script, so the
// counters and the delivery marker change together or not at all.
type CounterRepository struct {
	client redis.Scripter
}

func NewCounterRepository(client redis.Scripter) *CounterRepository {
	return &CounterRepository{client: client}
}

func (r *CounterRepository) Apply(ctx context.Context, pr command.Projection, markerTTL time.Duration) (bool, error) {
	keys := []string{pr.Marker, pr.CountKey}
	args := []any{markerTTL.Milliseconds(), pr.CountField}
	if pr.SetKey != "" {
		keys = append(keys, pr.SetKey)
		args = append(args, pr.Member)
	}

	n, err := applyProjection.Run(ctx, r.client, keys, args...).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to apply projection: %w", err)
	}
	return n == 1, nil
}

var _ command.CounterStore = (*CounterRepository)(nil)
