package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a JSON get/set layer over redis used for third-party movie
// metadata. Entries expire on their own; there is no explicit eviction.
type Cache struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func New(client redis.Cmdable, ttl time.Duration) *Cache {
	return &Cache{
		client: client,
		prefix: "omdb:",
		ttl:    ttl,
	}
}

func (c *Cache) key(k string) string {
	return c.prefix + k
}

// Get unmarshals the cached value into dest. The bool reports a hit.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	val, err := c.client.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, fmt.Errorf("cache: failed to unmarshal %q: %w", key, err)
	}
	return true, nil
}

func (c *Cache) Set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: failed to marshal %q: %w", key, err)
	}
	return c.client.Set(ctx, c.key(key), data, c.ttl).Err()
}
