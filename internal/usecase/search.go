package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ErlanBelekov/phone-insights/internal/domain"
	"github.com/ErlanBelekov/phone-insights/internal/insight"
	"github.com/ErlanBelekov/phone-insights/internal/metrics"
	"github.com/ErlanBelekov/phone-insights/internal/repository"
)

const DefaultHistoryLimit = 50

type Validator interface {
	Validate(ctx context.Context, phoneNumber, countryCode string) domain.ValidationResult
}

type SearchUsecase struct {
	validator  Validator
	searches   repository.SearchRepository
	analytics  repository.AnalyticsRepository
	historyMax int
	logger     *slog.Logger
}

func NewSearchUsecase(
	validator Validator,
	searches repository.SearchRepository,
	analytics repository.AnalyticsRepository,
	historyMax int,
	logger *slog.Logger,
) *SearchUsecase {
	return &SearchUsecase{
		validator:  validator,
		searches:   searches,
		analytics:  analytics,
		historyMax: historyMax,
		logger:     logger.With("component", "search"),
	}
}

// Search validates the number, derives the insight, and persists the search
// together with the analytics update. Once validation starts the request runs
// to completion even if ctx is cancelled, so at most one search is stored.
func (u *SearchUsecase) Search(ctx context.Context, userID, phoneNumber, countryCode string) (*domain.Search, error) {
	ctx = context.WithoutCancel(ctx)

	res := u.validator.Validate(ctx, phoneNumber, countryCode)
	s := domain.NewSearch(userID, phoneNumber, countryCode, res, insight.Describe(res))

	created, _, err := u.searches.Create(ctx, s)
	if err != nil {
		if errors.Is(err, domain.ErrAnalyticsNotFound) {
			u.logger.ErrorContext(ctx, "analytics snapshot missing for known user", "user_id", userID)
		}
		return nil, fmt.Errorf("record search: %w", err)
	}

	metrics.SearchesRecordedTotal.WithLabelValues(strconv.FormatBool(created.Valid)).Inc()
	return created, nil
}

// History returns the newest searches first. Limits outside 1..historyMax are
// replaced by the default or clamped to the maximum.
func (u *SearchUsecase) History(ctx context.Context, userID string, limit int) ([]*domain.Search, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > u.historyMax {
		limit = u.historyMax
	}

	searches, err := u.searches.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list searches: %w", err)
	}
	return searches, nil
}

// Analytics returns the user's snapshot, or a zeroed one when none exists.
func (u *SearchUsecase) Analytics(ctx context.Context, userID string) (*domain.Analytics, error) {
	a, err := u.analytics.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrAnalyticsNotFound) {
			return &domain.Analytics{UserID: userID}, nil
		}
		return nil, fmt.Errorf("get analytics: %w", err)
	}
	return a, nil
}
