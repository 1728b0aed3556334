package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ErlanBelekov/phone-insights/internal/metrics"
	"github.com/robfig/cron/v3"
)

// Sweeper periodically evicts stale entries from a Memory cache on a cron schedule.
type Sweeper struct {
	cache    *Memory
	schedule cron.Schedule
	logger   *slog.Logger
}

func NewSweeper(cache *Memory, spec string, logger *slog.Logger) (*Sweeper, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse sweep schedule %q: %w", spec, err)
	}
	return &Sweeper{
		cache:    cache,
		schedule: schedule,
		logger:   logger.With("component", "cache_sweeper"),
	}, nil
}

// Start blocks until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	c := cron.New()
	c.Schedule(s.schedule, cron.FuncJob(s.sweep))
	c.Start()

	s.logger.Info("cache sweeper started")

	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("cache sweeper shut down")
}

func (s *Sweeper) sweep() {
	removed := s.cache.Sweep()
	remaining := s.cache.Len()

	metrics.CacheEvictionsTotal.Add(float64(removed))
	metrics.CacheEntries.Set(float64(remaining))

	if removed > 0 {
		s.logger.Debug("evicted stale cache entries", "removed", removed, "remaining", remaining)
	}
}
