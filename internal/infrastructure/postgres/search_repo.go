package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ErlanBelekov/phone-insights/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const searchColumns = `id, user_id, phone_number, country_code, country, location,
	carrier, line_type, valid, ai_insight, created_at`

type SearchRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewSearchRepository(pool *pgxpool.Pool) *SearchRepository {
	return &SearchRepository{pool: pool, now: time.Now}
}

// Create inserts the search, then locks the owner's analytics row and applies
// the outcome. Both writes commit together or not at all.
func (r *SearchRepository) Create(ctx context.Context, s *domain.Search) (created *domain.Search, a *domain.Analytics, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	row := tx.QueryRow(ctx, `
		INSERT INTO searches (
			user_id, phone_number, country_code, country, location,
			carrier, line_type, valid, ai_insight
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+searchColumns,
		s.UserID, s.PhoneNumber, s.CountryCode, s.Country, s.Location,
		s.Carrier, s.LineType, s.Valid, s.AIInsight,
	)
	created, err = scanSearch(row)
	if err != nil {
		return nil, nil, fmt.Errorf("insert search: %w", err)
	}

	// FOR UPDATE serializes concurrent searches by the same user on this row.
	a, err = scanAnalytics(tx.QueryRow(ctx, `
		SELECT user_id, total_searches, recent_searches, valid_numbers_count, updated_at
		FROM analytics
		WHERE user_id = $1
		FOR UPDATE`, s.UserID))
	if err != nil {
		return nil, nil, err
	}

	a.Record(created.Valid, r.now())

	if _, err = tx.Exec(ctx, `
		UPDATE analytics
		SET total_searches      = $2,
		    recent_searches     = $3,
		    valid_numbers_count = $4,
		    updated_at          = $5
		WHERE user_id = $1`,
		a.UserID, a.TotalSearches, a.RecentSearches, a.ValidNumbersCount, a.UpdatedAt,
	); err != nil {
		return nil, nil, fmt.Errorf("update analytics: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit tx: %w", err)
	}
	return created, a, nil
}

func (r *SearchRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Search, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+searchColumns+`
		FROM searches
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list searches: %w", err)
	}
	defer rows.Close()

	searches := make([]*domain.Search, 0, limit)
	for rows.Next() {
		s, err := scanSearch(rows)
		if err != nil {
			return nil, err
		}
		searches = append(searches, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate searches: %w", err)
	}
	return searches, nil
}

func scanSearch(row pgx.Row) (*domain.Search, error) {
	var s domain.Search
	err := row.Scan(
		&s.ID, &s.UserID, &s.PhoneNumber, &s.CountryCode, &s.Country, &s.Location,
		&s.Carrier, &s.LineType, &s.Valid, &s.AIInsight, &s.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan search: %w", err)
	}
	return &s, nil
}
