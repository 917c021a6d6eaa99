package records

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/brightwell-health/frontdesk/pkg/logging"
)

const (
	departmentsKey  = "records:departments"
	doctorKeyPrefix = "records:doctors:"

	// Rosters change rarely; a short TTL keeps new hires visible without
	// an invalidation protocol.
	rosterTTL = 5 * time.Minute
)

// CachedStore fronts a Store with Redis for the roster lookups that back
// every filter dropdown. Cache failures degrade to the store; they are never
// surfaced to callers.
type CachedStore struct {
	Store
	client *redis.Client
	logger *logging.Logger
}

// NewCachedStore wraps store with a Redis roster cache.
func NewCachedStore(store Store, client *redis.Client, logger *logging.Logger) *CachedStore {
	if store == nil {
		panic("records: store required")
	}
	if client == nil {
		panic("records: redis client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CachedStore{Store: store, client: client, logger: logger}
}

// ListDepartments serves the department list from Redis when warm.
func (c *CachedStore) ListDepartments(ctx context.Context) ([]string, error) {
	var cached []string
	if c.lookup(ctx, departmentsKey, &cached) {
		return cached, nil
	}
	deps, err := c.Store.ListDepartments(ctx)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, departmentsKey, deps)
	return deps, nil
}

// ListDoctors serves per-department doctor lists from Redis when warm.
func (c *CachedStore) ListDoctors(ctx context.Context, department string) ([]Doctor, error) {
	key := doctorKeyPrefix + department
	var cached []Doctor
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}
	docs, err := c.Store.ListDoctors(ctx, department)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, key, docs)
	return docs, nil
}

func (c *CachedStore) lookup(ctx context.Context, key string, out any) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("roster cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Warn("roster cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (c *CachedStore) fill(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, rosterTTL).Err(); err != nil {
		c.logger.Warn("roster cache write failed", "key", key, "error", err)
	}
}
