package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ErlanBelekov/phone-insights/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestMemory(ttl time.Duration) (*Memory, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := NewMemory(ttl)
	c.now = clock.Now
	return c, clock
}

var sample = domain.ValidationResult{
	Valid:       true,
	Number:      "14155552671",
	CountryCode: "US",
	CountryName: "United States",
	Location:    "California",
	Carrier:     "Verizon",
	LineType:    "mobile",
}

func TestMemory_GetAfterPutReturnsSameResult(t *testing.T) {
	c, _ := newTestMemory(time.Hour)
	ctx := context.Background()
	key := domain.CacheKey{CountryCode: "US", PhoneNumber: "+14155552671"}

	require.NoError(t, c.Put(ctx, key, sample))

	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, sample, got)
}

func TestMemory_MissForUnknownKey(t *testing.T) {
	c, _ := newTestMemory(time.Hour)

	_, err := c.Get(context.Background(), domain.CacheKey{CountryCode: "US", PhoneNumber: "1"})
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestMemory_KeyIsExactPair(t *testing.T) {
	c, _ := newTestMemory(time.Hour)
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, domain.CacheKey{CountryCode: "US", PhoneNumber: "+14155552671"}, sample))

	for _, key := range []domain.CacheKey{
		{CountryCode: "US", PhoneNumber: "14155552671"},
		{CountryCode: "us", PhoneNumber: "+14155552671"},
		{CountryCode: "US", PhoneNumber: " +14155552671"},
		{CountryCode: "CA", PhoneNumber: "+14155552671"},
	} {
		_, err := c.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrCacheMiss, "key %+v", key)
	}
}

func TestMemory_ExpiresAfterTTL(t *testing.T) {
	c, clock := newTestMemory(time.Hour)
	ctx := context.Background()
	key := domain.CacheKey{CountryCode: "US", PhoneNumber: "+14155552671"}
	require.NoError(t, c.Put(ctx, key, sample))

	clock.Advance(59 * time.Minute)
	_, err := c.Get(ctx, key)
	require.NoError(t, err, "entry should still be fresh")

	clock.Advance(time.Minute)
	_, err = c.Get(ctx, key)
	assert.ErrorIs(t, err, domain.ErrCacheMiss, "entry is stale at exactly TTL")
	assert.Equal(t, 1, c.Len(), "lazy expiry keeps the record until swept")
}

func TestMemory_PutRefreshesInsertionTime(t *testing.T) {
	c, clock := newTestMemory(time.Hour)
	ctx := context.Background()
	key := domain.CacheKey{CountryCode: "US", PhoneNumber: "+14155552671"}

	require.NoError(t, c.Put(ctx, key, sample))
	clock.Advance(50 * time.Minute)
	require.NoError(t, c.Put(ctx, key, sample))
	clock.Advance(50 * time.Minute)

	_, err := c.Get(ctx, key)
	assert.NoError(t, err)
}

func TestMemory_SweepRemovesOnlyStale(t *testing.T) {
	c, clock := newTestMemory(time.Hour)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, domain.CacheKey{CountryCode: "US", PhoneNumber: "1"}, sample))
	clock.Advance(2 * time.Hour)
	require.NoError(t, c.Put(ctx, domain.CacheKey{CountryCode: "US", PhoneNumber: "2"}, sample))

	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 1, c.Len())

	_, err := c.Get(ctx, domain.CacheKey{CountryCode: "US", PhoneNumber: "2"})
	assert.NoError(t, err)
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	c := NewMemory(time.Hour)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := domain.CacheKey{CountryCode: "US", PhoneNumber: fmt.Sprintf("%d", i%5)}
			_ = c.Put(ctx, key, sample)
			_, _ = c.Get(ctx, key)
			c.Sweep()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, c.Len())
}

func TestNewSweeper_RejectsBadSchedule(t *testing.T) {
	_, err := NewSweeper(NewMemory(time.Hour), "not a schedule", slog.Default())
	assert.Error(t, err)
}

func TestSweeper_StopsOnCancel(t *testing.T) {
	s, err := NewSweeper(NewMemory(time.Hour), "@every 1s", slog.Default())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
