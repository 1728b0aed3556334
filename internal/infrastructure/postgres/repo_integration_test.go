//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ErlanBelekov/phone-insights/internal/domain"
	"github.com/ErlanBelekov/phone-insights/internal/infrastructure/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("phone_insights"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	pool, err := postgres.NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := postgres.Migrate(ctx, pool, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return pool
}

func TestUserRepository_CreateInitializesAnalytics(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	users := postgres.NewUserRepository(pool)
	analytics := postgres.NewAnalyticsRepository(pool)

	u, err := users.Create(ctx, "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == "" || u.CreatedAt.IsZero() {
		t.Fatalf("expected id and created_at, got %+v", u)
	}

	a, err := analytics.GetByUserID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if a.TotalSearches != 0 || a.RecentSearches != 0 || a.ValidNumbersCount != 0 {
		t.Errorf("expected zeroed snapshot, got %+v", a)
	}

	if _, err := users.Create(ctx, "alice@example.com", "hash"); !errors.Is(err, domain.ErrEmailTaken) {
		t.Errorf("want ErrEmailTaken, got %v", err)
	}

	byEmail, err := users.FindByEmail(ctx, "alice@example.com")
	if err != nil || byEmail.ID != u.ID {
		t.Errorf("FindByEmail = %+v, %v", byEmail, err)
	}
	if _, err := users.FindByEmail(ctx, "Alice@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("email lookup should be case-sensitive, got %v", err)
	}
}

func TestSearchRepository_CreateUpdatesAnalytics(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	users := postgres.NewUserRepository(pool)
	searches := postgres.NewSearchRepository(pool)

	u, err := users.Create(ctx, "bob@example.com", "hash")
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}

	carrier := "Verizon"
	created, a, err := searches.Create(ctx, &domain.Search{
		UserID: u.ID, PhoneNumber: "+14155552671", CountryCode: "US",
		Carrier: &carrier, Valid: true, AIInsight: "ok",
	})
	if err != nil {
		t.Fatalf("Create search: %v", err)
	}
	if created.ID == "" || created.Carrier == nil || *created.Carrier != "Verizon" || created.Country != nil {
		t.Errorf("unexpected search %+v", created)
	}
	if a.TotalSearches != 1 || a.ValidNumbersCount != 1 {
		t.Errorf("unexpected analytics %+v", a)
	}

	if _, _, err := searches.Create(ctx, &domain.Search{
		UserID: u.ID, PhoneNumber: "000", CountryCode: "US", AIInsight: "bad",
	}); err != nil {
		t.Fatalf("Create search: %v", err)
	}

	list, err := searches.ListByUser(ctx, u.ID, 50)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 2 || list[0].PhoneNumber != "000" {
		t.Errorf("expected newest first, got %+v", list)
	}
}

func TestSearchRepository_MissingAnalyticsRollsBack(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	users := postgres.NewUserRepository(pool)
	searches := postgres.NewSearchRepository(pool)

	u, err := users.Create(ctx, "carol@example.com", "hash")
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}
	if _, err := pool.Exec(ctx, `DELETE FROM analytics WHERE user_id = $1`, u.ID); err != nil {
		t.Fatalf("delete analytics: %v", err)
	}

	_, _, err = searches.Create(ctx, &domain.Search{UserID: u.ID, PhoneNumber: "1", CountryCode: "US", AIInsight: "x"})
	if !errors.Is(err, domain.ErrAnalyticsNotFound) {
		t.Fatalf("want ErrAnalyticsNotFound, got %v", err)
	}

	list, err := searches.ListByUser(ctx, u.ID, 50)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("search should have been rolled back, found %d", len(list))
	}
}

func TestSearchRepository_ConcurrentSearchesLoseNoIncrement(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	users := postgres.NewUserRepository(pool)
	searches := postgres.NewSearchRepository(pool)
	analytics := postgres.NewAnalyticsRepository(pool)

	u, err := users.Create(ctx, "dave@example.com", "hash")
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := searches.Create(ctx, &domain.Search{
				UserID: u.ID, PhoneNumber: fmt.Sprintf("%d", i), CountryCode: "US",
				Valid: i%2 == 0, AIInsight: "x",
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Create search: %v", err)
		}
	}

	a, err := analytics.GetByUserID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if a.TotalSearches != n || a.RecentSearches != n || a.ValidNumbersCount != n/2 {
		t.Errorf("lost increments: %+v", a)
	}
	if time.Since(a.UpdatedAt) > time.Minute {
		t.Errorf("updated_at not refreshed: %v", a.UpdatedAt)
	}
}
