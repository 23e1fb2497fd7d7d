package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps pending exchanges in redis so callbacks can land on
// any instance. GETDEL gives the required check-and-consume atomicity.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "oauth_state:",
	}
}

func (r *RedisStore) key(state string) string {
	return r.prefix + state
}

func (r *RedisStore) Put(ctx context.Context, state string, e Entry, ttl time.Duration) error {
	if state == "" {
		return fmt.Errorf("exchange: missing state value")
	}
	if ttl <= 0 {
		return fmt.Errorf("exchange: ttl must be positive")
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("exchange: failed to marshal entry: %w", err)
	}

	return r.client.Set(ctx, r.key(state), data, ttl).Err()
}

func (r *RedisStore) Consume(ctx context.Context, state string) (*Entry, error) {
	val, err := r.client.GetDel(ctx, r.key(state)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var e Entry
	if err := json.Unmarshal([]byte(val), &e); err != nil {
		return nil, fmt.Errorf("exchange: failed to unmarshal entry: %w", err)
	}

	return &e, nil
}
