//go:build integration

package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/ErlanBelekov/phone-insights/internal/domain"
	rediscache "github.com/ErlanBelekov/phone-insights/internal/infrastructure/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newTestCache(t *testing.T, ttl time.Duration) *rediscache.ValidationCache {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := rediscache.NewClient(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return rediscache.NewValidationCache(client, ttl)
}

func TestValidationCache_RoundTrip(t *testing.T) {
	c := newTestCache(t, time.Hour)
	ctx := context.Background()
	key := domain.CacheKey{CountryCode: "US", PhoneNumber: "+14155552671"}
	want := domain.ValidationResult{Valid: true, Number: "14155552671", Carrier: "Verizon", LineType: "mobile"}

	_, err := c.Get(ctx, key)
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	require.NoError(t, c.Put(ctx, key, want))

	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestValidationCache_Expires(t *testing.T) {
	c := newTestCache(t, time.Second)
	ctx := context.Background()
	key := domain.CacheKey{CountryCode: "US", PhoneNumber: "1"}

	require.NoError(t, c.Put(ctx, key, domain.ValidationResult{Valid: true}))

	assert.Eventually(t, func() bool {
		_, err := c.Get(ctx, key)
		return err == domain.ErrCacheMiss
	}, 5*time.Second, 100*time.Millisecond)
}
