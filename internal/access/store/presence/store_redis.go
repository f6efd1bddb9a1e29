// Package presence caches the inside/outside verdict per (visitor, facility)
// in Redis. The cache is strictly non-authoritative: the event ledger remains
// ground truth, and every miss or error reads through to it. Entries expire
// so a stale verdict cannot outlive a shift.
package presence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	id "garita/pkg/domain"
)

// RedisCache stores presence flags with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func key(visitorID id.VisitorID, facilityID id.FacilityID) string {
	return "garita:presence:" + facilityID.String() + ":" + visitorID.String()
}

// Get returns (inside, true) on a hit. Any error degrades to a miss; callers
// fall back to the ledger.
func (c *RedisCache) Get(ctx context.Context, visitorID id.VisitorID, facilityID id.FacilityID) (bool, bool) {
	val, err := c.client.Get(ctx, key(visitorID, facilityID)).Result()
	if err != nil {
		return false, false
	}
	return val == "1", true
}

// Set records the verdict after a committed transition.
func (c *RedisCache) Set(ctx context.Context, visitorID id.VisitorID, facilityID id.FacilityID, inside bool) error {
	val := "0"
	if inside {
		val = "1"
	}
	err := c.client.Set(ctx, key(visitorID, facilityID), val, c.ttl).Err()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
