package repository

import (
	"context"

	"github.com/ErlanBelekov/phone-insights/internal/domain"
)

// UseCase depends on interfaces, not on the storage engine behind them.
type SearchRepository interface {
	// Create persists s and applies its outcome to the owner's analytics in
	// one transaction. Returns domain.ErrAnalyticsNotFound (and persists
	// nothing) when the owner has no analytics snapshot.
	Create(ctx context.Context, s *domain.Search) (*domain.Search, *domain.Analytics, error)
	// ListByUser returns the newest searches first.
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Search, error)
}

type AnalyticsRepository interface {
	// GetByUserID returns domain.ErrAnalyticsNotFound when no snapshot exists.
	GetByUserID(ctx context.Context, userID string) (*domain.Analytics, error)
}
