package storage

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// incrementIfBelowScript reserves one unit of an item's stock atomically:
// the reserved counter is bumped only while it is below the item's limit.
// A missing or non-numeric value counts as zero.
var incrementIfBelowScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0') or 0
local limit = tonumber(ARGV[1])

if current < limit then
	redis.call('SET', KEYS[1], current + 1)
	return 1
end

return 0
`)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) GetCount(ctx context.Context, key string) (int64, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// Non-numeric values read as zero, same as an absent key.
		return 0, false, nil
	}

	return n, true, nil
}

func (r *RedisAdapter) SetCount(ctx context.Context, key string, value int64) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

func (r *RedisAdapter) IncrementIfBelow(ctx context.Context, key string, limit int64) (bool, error) {
	result, err := incrementIfBelowScript.Run(ctx, r.client, []string{key}, limit).Int()
	if err != nil {
		return false, err
	}

	return result == 1, nil
}
