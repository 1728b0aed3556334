package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/phone-insights/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "validation:"

// ValidationCache shares validation results between instances. Staleness is
// enforced by the key TTL, so expired entries are simply absent.
type ValidationCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewValidationCache(client *redis.Client, ttl time.Duration) *ValidationCache {
	return &ValidationCache{client: client, ttl: ttl}
}

func (c *ValidationCache) Get(ctx context.Context, key domain.CacheKey) (domain.ValidationResult, error) {
	raw, err := c.client.Get(ctx, keyPrefix+key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.ValidationResult{}, domain.ErrCacheMiss
	}
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("redis get: %w", err)
	}

	var res domain.ValidationResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return domain.ValidationResult{}, fmt.Errorf("decode cached result: %w", err)
	}
	return res, nil
}

func (c *ValidationCache) Put(ctx context.Context, key domain.CacheKey, result domain.ValidationResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+key.String(), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
