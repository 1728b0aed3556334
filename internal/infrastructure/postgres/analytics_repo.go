package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ErlanBelekov/phone-insights/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AnalyticsRepository struct {
	pool *pgxpool.Pool
}

func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

func (r *AnalyticsRepository) GetByUserID(ctx context.Context, userID string) (*domain.Analytics, error) {
	return scanAnalytics(r.pool.QueryRow(ctx, `
		SELECT user_id, total_searches, recent_searches, valid_numbers_count, updated_at
		FROM analytics
		WHERE user_id = $1`, userID))
}

func scanAnalytics(row pgx.Row) (*domain.Analytics, error) {
	var a domain.Analytics
	err := row.Scan(&a.UserID, &a.TotalSearches, &a.RecentSearches, &a.ValidNumbersCount, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAnalyticsNotFound
		}
		return nil, fmt.Errorf("scan analytics: %w", err)
	}
	return &a, nil
}
