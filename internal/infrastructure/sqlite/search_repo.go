package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/phone-insights/internal/domain"
	"github.com/google/uuid"
)

type SearchRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSearchRepository(db *sql.DB) *SearchRepository {
	return &SearchRepository{db: db, now: time.Now}
}

// Create inserts the search and applies its outcome to the owner's analytics
// in one transaction.
func (r *SearchRepository) Create(ctx context.Context, s *domain.Search) (*domain.Search, *domain.Analytics, error) {
	created := *s
	created.ID = uuid.NewString()
	created.CreatedAt = r.now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO searches (
			id, user_id, phone_number, country_code, country, location,
			carrier, line_type, valid, ai_insight, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		created.ID, created.UserID, created.PhoneNumber, created.CountryCode,
		created.Country, created.Location, created.Carrier, created.LineType,
		created.Valid, created.AIInsight, created.CreatedAt,
	); err != nil {
		return nil, nil, fmt.Errorf("insert search: %w", err)
	}

	a, err := scanAnalytics(tx.QueryRowContext(ctx, `
		SELECT user_id, total_searches, recent_searches, valid_numbers_count, updated_at
		FROM analytics WHERE user_id = ?`, created.UserID))
	if err != nil {
		return nil, nil, err
	}

	a.Record(created.Valid, created.CreatedAt)

	if _, err := tx.ExecContext(ctx, `
		UPDATE analytics
		SET total_searches = ?, recent_searches = ?, valid_numbers_count = ?, updated_at = ?
		WHERE user_id = ?`,
		a.TotalSearches, a.RecentSearches, a.ValidNumbersCount, a.UpdatedAt, a.UserID,
	); err != nil {
		return nil, nil, fmt.Errorf("update analytics: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit tx: %w", err)
	}
	return &created, a, nil
}

func (r *SearchRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Search, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, phone_number, country_code, country, location,
		       carrier, line_type, valid, ai_insight, created_at
		FROM searches
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list searches: %w", err)
	}
	defer rows.Close()

	var searches []*domain.Search
	for rows.Next() {
		var s domain.Search
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.PhoneNumber, &s.CountryCode, &s.Country, &s.Location,
			&s.Carrier, &s.LineType, &s.Valid, &s.AIInsight, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan search: %w", err)
		}
		searches = append(searches, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate searches: %w", err)
	}
	return searches, nil
}

type AnalyticsRepository struct {
	db *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

func (r *AnalyticsRepository) GetByUserID(ctx context.Context, userID string) (*domain.Analytics, error) {
	return scanAnalytics(r.db.QueryRowContext(ctx, `
		SELECT user_id, total_searches, recent_searches, valid_numbers_count, updated_at
		FROM analytics WHERE user_id = ?`, userID))
}

func scanAnalytics(row *sql.Row) (*domain.Analytics, error) {
	var a domain.Analytics
	if err := row.Scan(&a.UserID, &a.TotalSearches, &a.RecentSearches, &a.ValidNumbersCount, &a.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAnalyticsNotFound
		}
		return nil, fmt.Errorf("scan analytics: %w", err)
	}
	return &a, nil
}
