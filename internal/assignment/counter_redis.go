package assignment

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"bmmhub/pkg/platform/sentinel"
)

// Lua keeps the read-compare-increment atomic on the Redis side, so
// reservations from multiple processes cannot oversell a venue.
var reserveScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current >= tonumber(ARGV[1]) then
	return -1
end
return redis.call('INCR', KEYS[1])
`)

var releaseScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current <= 0 then
	return 0
end
return redis.call('DECR', KEYS[1])
`)

// RedisCounterStore keeps per-venue assigned counts in Redis so that
// multiple server instances share one capacity ledger.
type RedisCounterStore struct {
	client *redis.Client
	prefix string
}

func NewRedisCounterStore(client *redis.Client, eventID string) *RedisCounterStore {
	return &RedisCounterStore{
		client: client,
		prefix: "bmm:venue-count:" + eventID + ":",
	}
}

func (s *RedisCounterStore) key(venueName string) string {
	return s.prefix + venueName
}

func (s *RedisCounterStore) Reserve(ctx context.Context, venueName string, capacity int) error {
	n, err := reserveScript.Run(ctx, s.client, []string{s.key(venueName)}, capacity).Int64()
	if err != nil {
		return fmt.Errorf("reserve %s: %w", venueName, err)
	}
	if n < 0 {
		return fmt.Errorf("reserve %s: %w", venueName, sentinel.ErrCapacityFull)
	}
	return nil
}

func (s *RedisCounterStore) Release(ctx context.Context, venueName string) error {
	if err := releaseScript.Run(ctx, s.client, []string{s.key(venueName)}).Err(); err != nil {
		return fmt.Errorf("release %s: %w", venueName, err)
	}
	return nil
}

func (s *RedisCounterStore) Count(ctx context.Context, venueName string) (int, error) {
	n, err := s.client.Get(ctx, s.key(venueName)).Int()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("count %s: %w", venueName, err)
	}
	return n, nil
}
