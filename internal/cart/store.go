package cart

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aryanbrs/packklite-sub001/internal/pricing"
)

// Store keeps carts in Redis as one hash per cart: field = SKU, value = quantity.
// Every write refreshes the TTL.
type Store struct {
	Client redis.UniversalClient
	TTL    time.Duration
}

func cartKey(id string) string { return "cart:" + id }

// addScript increments a line and snaps the sum to a valid quantity in one
// step, mirroring pricing.RoundToValidQuantity with the result capped at
// ARGV[5]. ARGV: sku, delta, moq, step, max, ttl ms.
var addScript = redis.NewScript(`local total = redis.call("HINCRBY", KEYS[1], ARGV[1], ARGV[2])
local moq, step, cap = tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])
local q = total
if q > cap then q = cap end
if q < moq then
  q = moq
else
  local r = (q - moq) % step
  if r ~= 0 then
    if r < step / 2 then q = q - r else q = q + (step - r) end
  end
end
if q ~= total then redis.call("HSET", KEYS[1], ARGV[1], q) end
redis.call("PEXPIRE", KEYS[1], ARGV[6])
return q`)

func (s Store) ttl() time.Duration {
	if s.TTL <= 0 {
		return 30 * 24 * time.Hour
	}
	return s.TTL
}

// Items returns the SKU to quantity map of a cart. A missing cart is empty.
func (s Store) Items(ctx context.Context, id string) (map[string]int64, error) {
	raw, err := s.Client.HGetAll(ctx, cartKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	items := make(map[string]int64, len(raw))
	for sku, v := range raw {
		qty, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		items[sku] = qty
	}
	return items, nil
}

// Quantity returns the current quantity of sku, or 0 when absent.
func (s Store) Quantity(ctx context.Context, id, sku string) (int64, error) {
	qty, err := s.Client.HGet(ctx, cartKey(id), sku).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return qty, err
}

// Add increments the line by qty and snaps the result to a valid quantity,
// atomically with respect to concurrent adds. Negative qty counts as zero.
func (s Store) Add(ctx context.Context, id, sku string, qty int64) (int64, error) {
	qty = min(max(qty, 0), pricing.MaxLineQuantity)
	normalized, err := addScript.Run(ctx, s.Client, []string{cartKey(id)},
		sku, qty, pricing.MOQ, pricing.Step, pricing.MaxLineQuantity, s.ttl().Milliseconds()).Int64()
	if err != nil {
		return 0, fmt.Errorf("add cart item: %w", err)
	}
	return normalized, nil
}

// Set overwrites the line quantity after snapping it to a valid quantity.
func (s Store) Set(ctx context.Context, id, sku string, qty int64) (int64, error) {
	key := cartKey(id)
	normalized := pricing.RoundToValidQuantity(min(qty, pricing.MaxLineQuantity))
	pipe := s.Client.TxPipeline()
	pipe.HSet(ctx, key, sku, normalized)
	pipe.Expire(ctx, key, s.ttl())
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("set cart item: %w", err)
	}
	return normalized, nil
}

// Remove deletes a line and reports whether it existed.
func (s Store) Remove(ctx context.Context, id, sku string) (bool, error) {
	n, err := s.Client.HDel(ctx, cartKey(id), sku).Result()
	if err != nil {
		return false, fmt.Errorf("remove cart item: %w", err)
	}
	return n > 0, nil
}

// Clear deletes the whole cart.
func (s Store) Clear(ctx context.Context, id string) error {
	return s.Client.Del(ctx, cartKey(id)).Err()
}
