package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	stockKeyPrefix    = "stock:"
	idempotencyKeyTTL = 24 * time.Hour
)

// Quantities are decimals (half an ampoule is a real entry), so the mirror
// compares and shifts with float arithmetic instead of DECRBY.
var decrementStockScript = redis.NewScript(`
local key = KEYS[1]
local qty = tonumber(ARGV[1])

local current = redis.call('GET', key)
if not current then
	return 0
end

current = tonumber(current)
if current >= qty then
	redis.call('INCRBYFLOAT', key, -qty)
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

func (r *RedisAdapter) DecrementStock(ctx context.Context, itemID string, qty decimal.Decimal) (bool, error) {
	key := stockKeyPrefix + itemID

	result, err := decrementStockScript.Run(ctx, r.client, []string{key}, qty.String()).Int()
	if err != nil {
		return false, err
	}

	return result == 1, nil
}

func (r *RedisAdapter) AdjustStock(ctx context.Context, itemID string, delta decimal.Decimal) error {
	key := stockKeyPrefix + itemID
	return r.client.IncrByFloat(ctx, key, delta.InexactFloat64()).Err()
}

func (r *RedisAdapter) SetStock(ctx context.Context, itemID string, qty decimal.Decimal) error {
	key := stockKeyPrefix + itemID
	return r.client.Set(ctx, key, qty.String(), 0).Err()
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}
