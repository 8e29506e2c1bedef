package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/redmonkez12/go-tasks-api/internal/logging"
)

// CachedStore is a read-through Redis cache in front of a Store for single
// task lookups. Writes go straight to the backing store, which never reads
// the cached copy, and then drop the cached entry. Redis failures are logged
// and never surface to callers.
type CachedStore struct {
	Store
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

func NewCachedStore(next Store, client *redis.Client, ttl time.Duration, logger *logging.Logger) *CachedStore {
	return &CachedStore{Store: next, client: client, ttl: ttl, logger: logger}
}

// cacheKey is scoped by owner so a hit can never leak a foreign task.
func cacheKey(owner, id uuid.UUID) string {
	return fmt.Sprintf("task:%s:%s", owner, id)
}

func (c *CachedStore) GetByID(ctx context.Context, owner, id uuid.UUID) (*Task, error) {
	key := cacheKey(owner, id)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var t Task
		if jsonErr := json.Unmarshal(raw, &t); jsonErr == nil {
			return &t, nil
		}
		c.logger.Warn("dropping undecodable cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("task cache read failed", "key", key, "error", err.Error())
	}

	t, err := c.Store.GetByID(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(t); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("task cache write failed", "key", key, "error", err.Error())
		}
	}
	return t, nil
}

func (c *CachedStore) Update(ctx context.Context, owner, id uuid.UUID, ch Changes) (*Task, error) {
	t, err := c.Store.Update(ctx, owner, id, ch)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, cacheKey(owner, id))
	return t, nil
}

func (c *CachedStore) Toggle(ctx context.Context, owner, id uuid.UUID, at time.Time) (*Task, error) {
	t, err := c.Store.Toggle(ctx, owner, id, at)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, cacheKey(owner, id))
	return t, nil
}

func (c *CachedStore) Delete(ctx context.Context, owner, id uuid.UUID) error {
	if err := c.Store.Delete(ctx, owner, id); err != nil {
		return err
	}
	c.invalidate(ctx, cacheKey(owner, id))
	return nil
}

func (c *CachedStore) invalidate(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("task cache invalidation failed", "key", key, "error", err.Error())
	}
}
