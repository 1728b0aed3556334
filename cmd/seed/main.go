// seed creates a demo account with a few searches in the local dev database.
// Run: STORAGE=sqlite go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/ErlanBelekov/phone-insights/internal/auth"
	"github.com/ErlanBelekov/phone-insights/internal/domain"
	"github.com/ErlanBelekov/phone-insights/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/phone-insights/internal/infrastructure/sqlite"
	"github.com/ErlanBelekov/phone-insights/internal/insight"
	"github.com/ErlanBelekov/phone-insights/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const (
	seedEmail    = "demo@phone-insights.local"
	seedPassword = "demo1234"
)

// Canned provider answers so seeding never calls the real API.
var results = []domain.ValidationResult{
	{Valid: true, Number: "14155552671", CountryCode: "US", CountryName: "United States of America", Location: "Novato", Carrier: "Verizon", LineType: "mobile"},
	{Valid: true, Number: "442071838750", CountryCode: "GB", CountryName: "United Kingdom", Location: "London", LineType: "landline"},
	{Valid: true, Number: "4915123456789", CountryCode: "DE", CountryName: "Germany", Carrier: "Telekom"},
	domain.SafeFailure("0000000", "US"),
}

func main() {
	ctx := context.Background()

	users, searches, closeFn, err := open(ctx)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer closeFn()

	hash, err := auth.NewPasswordHasher(bcrypt.DefaultCost).Hash(seedPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	user, err := users.Create(ctx, seedEmail, hash)
	if errors.Is(err, domain.ErrEmailTaken) {
		fmt.Printf("User %s already exists, nothing to do\n", seedEmail)
		return
	}
	if err != nil {
		log.Fatalf("create user: %v", err)
	}

	for _, res := range results {
		phone := "+" + res.Number
		if !res.Valid {
			phone = res.Number
		}
		s := domain.NewSearch(user.ID, phone, res.CountryCode, res, insight.Describe(res))
		if _, _, err := searches.Create(ctx, s); err != nil {
			log.Fatalf("create search: %v", err)
		}
	}

	fmt.Printf("Seeded %s (password %q) with %d searches\n", seedEmail, seedPassword, len(results))
}

func open(ctx context.Context) (repository.UserRepository, repository.SearchRepository, func(), error) {
	if os.Getenv("STORAGE") == "sqlite" {
		path := os.Getenv("SQLITE_PATH")
		if path == "" {
			path = "phone-insights.db"
		}
		db, err := sqlite.Open(ctx, path)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := sqlite.Migrate(ctx, db, slog.Default()); err != nil {
			_ = db.Close()
			return nil, nil, nil, err
		}
		return sqlite.NewUserRepository(db), sqlite.NewSearchRepository(db), func() { _ = db.Close() }, nil
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, nil, nil, errors.New("DATABASE_URL is not set (or use STORAGE=sqlite)")
	}
	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := postgres.Migrate(ctx, pool, slog.Default()); err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	return postgres.NewUserRepository(pool), postgres.NewSearchRepository(pool), pool.Close, nil
}
