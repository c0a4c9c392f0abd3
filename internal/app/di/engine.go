package di

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"signal_backend/internal/feature/signals/adapters"
	"signal_backend/internal/feature/signals/adapters/gemini"
	"signal_backend/internal/feature/signals/usecase"
	"signal_backend/internal/platform/lock"
	"signal_backend/internal/shared/ratelimiter"
)

// NewEngineUsecase wires the engine against Postgres, Redis and the market
// providers. Redis enables the symbol claim lock and notification fan-out;
// without it the engine falls back to log-only dispatch and no claims.
func NewEngineUsecase(ctx context.Context, db *gorm.DB, rdb *redis.Client, market usecase.MarketRepository) (*usecase.EngineUsecase, error) {
	var dispatcher usecase.Dispatcher = adapters.NewLogDispatcher()
	if rdb != nil {
		dispatcher = adapters.NewRedisDispatcher(rdb)
	}

	uc := usecase.NewEngineUsecase(
		market,
		adapters.NewSignalRepository(db),
		adapters.NewPreferenceRepository(db),
		dispatcher,
		NewRateLimiter(),
	)

	if rdb != nil {
		uc.WithClaimer(lock.NewClaimRedis(rdb, lock.DefaultPrefix, claimOwner()))
	}

	if os.Getenv("GEMINI_NARRATION") == "true" {
		n, err := gemini.NewNarrator(ctx)
		if err != nil {
			return nil, err
		}
		uc.WithNarrator(n)
		slog.Info("gemini narration enabled", "model", gemini.DefaultModel)
	}

	bots, err := NewBots()
	if err != nil {
		return nil, err
	}
	if bots != nil {
		uc.WithBots(bots)
	}

	return uc, nil
}

// NewBots loads the bot definitions named by BOTS_FILE, or returns nil when unset.
func NewBots() (*adapters.BotFileRepository, error) {
	path := os.Getenv("BOTS_FILE")
	if path == "" {
		return nil, nil
	}
	bots, err := adapters.LoadBotFile(path)
	if err != nil {
		return nil, fmt.Errorf("load bots from %s: %w", path, err)
	}
	slog.Info("bot definitions loaded", "path", path, "bots", len(bots.All()))
	return bots, nil
}

// NewRateLimiter paces provider calls by PROVIDER_DELAY_MS (default 100ms).
func NewRateLimiter() *ratelimiter.RateLimiter {
	spacing := ratelimiter.DefaultSpacing
	if v := os.Getenv("PROVIDER_DELAY_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 0 {
			slog.Warn("invalid PROVIDER_DELAY_MS; using default", "value", v, "default", spacing)
		} else {
			spacing = time.Duration(ms) * time.Millisecond
		}
	}
	return ratelimiter.NewRateLimiter(spacing)
}

func claimOwner() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return fmt.Sprintf("%s/%d", host, os.Getpid())
}
