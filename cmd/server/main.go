package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/phone-insights/config"
	"github.com/ErlanBelekov/phone-insights/internal/auth"
	"github.com/ErlanBelekov/phone-insights/internal/cache"
	"github.com/ErlanBelekov/phone-insights/internal/email"
	"github.com/ErlanBelekov/phone-insights/internal/health"
	"github.com/ErlanBelekov/phone-insights/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/phone-insights/internal/infrastructure/redis"
	"github.com/ErlanBelekov/phone-insights/internal/infrastructure/sqlite"
	ctxlog "github.com/ErlanBelekov/phone-insights/internal/log"
	"github.com/ErlanBelekov/phone-insights/internal/lookup"
	"github.com/ErlanBelekov/phone-insights/internal/metrics"
	"github.com/ErlanBelekov/phone-insights/internal/numverify"
	"github.com/ErlanBelekov/phone-insights/internal/repository"
	httptransport "github.com/ErlanBelekov/phone-insights/internal/transport/http"
	"github.com/ErlanBelekov/phone-insights/internal/transport/http/handler"
	"github.com/ErlanBelekov/phone-insights/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		stop()
		log.Fatalf("storage: %v", err)
	}
	defer store.close()
	logger.Info("storage ready", "backend", cfg.Storage)

	deps := map[string]health.Pinger{cfg.Storage: store.ping}

	// Validation cache
	var validationCache lookup.Cache
	cacheBackend := "memory"
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			stop()
			log.Fatalf("redis: %v", err)
		}
		defer client.Close()
		validationCache = redis.NewValidationCache(client, cfg.CacheTTL)
		cacheBackend = "redis"
		deps["redis"] = health.PingerFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	} else {
		mem := cache.NewMemory(cfg.CacheTTL)
		sweeper, err := cache.NewSweeper(mem, cfg.CacheSweepSchedule, logger)
		if err != nil {
			stop()
			log.Fatalf("cache sweeper: %v", err)
		}
		go sweeper.Start(ctx)
		validationCache = mem
	}

	// Lookup
	provider := numverify.NewClient(cfg.NumverifyBaseURL, cfg.NumverifyAPIKey, cfg.LookupTimeout)
	validator := lookup.NewService(validationCache, cacheBackend, provider, logger)

	// Auth
	tokens := auth.NewTokenManager([]byte(cfg.JWTSecret), cfg.JWTTTL)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	emailSender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	authUsecase := usecase.NewAuthUsecase(store.users, store.analytics, hasher, tokens, emailSender, logger)
	authHandler := handler.NewAuthHandler(authUsecase, logger)

	// Searches
	searchUsecase := usecase.NewSearchUsecase(validator, store.searches, store.analytics, cfg.SearchHistoryMax, logger)
	searchHandler := handler.NewSearchHandler(searchUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(deps, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httptransport.NewRouter(logger, authHandler, searchHandler, tokens),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port, "cache", cacheBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

type store struct {
	users     repository.UserRepository
	searches  repository.SearchRepository
	analytics repository.AnalyticsRepository
	ping      health.Pinger
	close     func()
}

// openStore connects to the configured backend and applies pending migrations.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*store, error) {
	switch cfg.Storage {
	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := sqlite.Migrate(ctx, db, logger); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &store{
			users:     sqlite.NewUserRepository(db),
			searches:  sqlite.NewSearchRepository(db),
			analytics: sqlite.NewAnalyticsRepository(db),
			ping:      health.PingerFunc(db.PingContext),
			close:     func() { _ = db.Close() },
		}, nil
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, err
		}
		return &store{
			users:     postgres.NewUserRepository(pool),
			searches:  postgres.NewSearchRepository(pool),
			analytics: postgres.NewAnalyticsRepository(pool),
			ping:      pool,
			close:     pool.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
