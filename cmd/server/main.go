package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"signal_backend/internal/app/di"
	"signal_backend/internal/app/router"
	signalhandler "signal_backend/internal/feature/signals/transport/handler"
	infradb "signal_backend/internal/platform/db"
	healthhandler "signal_backend/internal/platform/http/handler"
	jwtmw "signal_backend/internal/platform/jwt"
	"signal_backend/internal/platform/logging"
	infraredis "signal_backend/internal/platform/redis"
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env not found; using system environment variables")
	}
	logging.Setup()

	ctx := context.Background()

	// db
	db, err := infradb.OpenDB()
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("database handle unavailable", "error", err)
		os.Exit(1)
	}
	checks := []healthhandler.Check{{Name: "db", Ping: sqlDB.PingContext}}

	// Redis
	var rdb *redisv9.Client
	if cfg := infraredis.LoadConfigFromEnv(); cfg.Enabled() {
		if tmp, err := infraredis.NewRedisClient(ctx, cfg); err != nil {
			slog.Warn("Redis unavailable. Running without cache, claims or notification fan-out.")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
			checks = append(checks, healthhandler.Check{Name: "redis", Ping: func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			}})
		}
	}

	// Usecase
	engineUC, err := di.NewEngineUsecase(ctx, db, rdb, di.NewMarket(rdb))
	if err != nil {
		slog.Error("failed to build engine", "error", err)
		os.Exit(1)
	}

	// ルータ生成
	r := router.NewRouter(signalhandler.NewEngineHandler(engineUC), checks...)

	// JWT_SECRETチェック（開発中の注意喚起）
	if os.Getenv(jwtmw.EnvKeyJWTSecret) == "" {
		slog.Warn("JWT_SECRET is not set. Bearer tokens are ignored and run_bot needs an explicit actor_id.")
	}

	addr := ":" + envOr("PORT", "8080")
	slog.Info("server listening", "addr", addr)
	if err := r.Run(addr); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
