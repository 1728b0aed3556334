// Package lookup resolves phone validations through the cache and the
// external provider. Validate never fails: provider errors degrade to
// domain.SafeFailure.
package lookup

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/phone-insights/internal/domain"
	"github.com/ErlanBelekov/phone-insights/internal/metrics"
	"golang.org/x/sync/singleflight"
)

type Cache interface {
	Get(ctx context.Context, key domain.CacheKey) (domain.ValidationResult, error)
	Put(ctx context.Context, key domain.CacheKey, result domain.ValidationResult) error
}

type Provider interface {
	Lookup(ctx context.Context, phoneNumber, countryCode string) (domain.ValidationResult, error)
}

type Service struct {
	cache    Cache
	backend  string
	provider Provider
	group    singleflight.Group
	logger   *slog.Logger
}

// NewService wires cache and provider; backend labels cache metrics ("memory", "redis").
func NewService(cache Cache, backend string, provider Provider, logger *slog.Logger) *Service {
	return &Service{
		cache:    cache,
		backend:  backend,
		provider: provider,
		logger:   logger.With("component", "lookup"),
	}
}

// Validate returns the cached result for the exact (countryCode, phoneNumber)
// pair when fresh, otherwise asks the provider. Concurrent misses for the same
// key share a single provider call. Only provider answers are cached.
func (s *Service) Validate(ctx context.Context, phoneNumber, countryCode string) domain.ValidationResult {
	key := domain.CacheKey{CountryCode: countryCode, PhoneNumber: phoneNumber}

	res, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		metrics.CacheLookupsTotal.WithLabelValues(s.backend, "hit").Inc()
		s.logger.DebugContext(ctx, "returning cached result", "country_code", countryCode)
		return res
	case errors.Is(err, domain.ErrCacheMiss):
		metrics.CacheLookupsTotal.WithLabelValues(s.backend, "miss").Inc()
	default:
		metrics.CacheLookupsTotal.WithLabelValues(s.backend, "error").Inc()
		s.logger.WarnContext(ctx, "validation cache read failed", "error", err)
	}

	// The provider call outlives a disconnected client; its own timeout bounds it.
	callCtx := context.WithoutCancel(ctx)

	// Do reports shared to the leader too; only waiters count as coalesced.
	led := false
	v, err, shared := s.group.Do(key.String(), func() (any, error) {
		led = true
		return s.fetch(callCtx, key)
	})
	if shared && !led {
		metrics.LookupsCoalescedTotal.Inc()
	}
	if err != nil {
		s.logger.WarnContext(ctx, "phone validation provider unavailable",
			"country_code", countryCode, "error", err)
		return domain.SafeFailure(phoneNumber, countryCode)
	}
	return v.(domain.ValidationResult)
}

func (s *Service) fetch(ctx context.Context, key domain.CacheKey) (domain.ValidationResult, error) {
	start := time.Now()
	res, err := s.provider.Lookup(ctx, key.PhoneNumber, key.CountryCode)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.ProviderRequestDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.ValidationResult{}, err
	}

	if err := s.cache.Put(ctx, key, res); err != nil {
		s.logger.WarnContext(ctx, "validation cache write failed", "error", err)
	}
	s.logger.DebugContext(ctx, "provider answered", "country_code", key.CountryCode,
		"valid", res.Valid)
	return res, nil
}
