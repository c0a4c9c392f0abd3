// Command signalbot runs every bot in BOTS_FILE once and exits. It is meant
// to be scheduled (cron, Cloud Scheduler) like a batch job.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"signal_backend/internal/app/di"
	infradb "signal_backend/internal/platform/db"
	"signal_backend/internal/platform/logging"
	infraredis "signal_backend/internal/platform/redis"
)

func main() {
	botID := flag.String("bot", "", "run only the bot with this id")
	fresh := flag.Bool("fresh", false, "drop cached bars for every pair before running")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall run timeout")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Debug(".env not found; using system environment variables")
	}
	logging.Setup()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, *botID, *fresh); err != nil {
		slog.Error("signalbot failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, botID string, fresh bool) error {
	bots, err := di.NewBots()
	if err != nil {
		return err
	}
	if bots == nil {
		slog.Warn("BOTS_FILE is not set; nothing to run")
		return nil
	}

	db, err := infradb.OpenDB()
	if err != nil {
		return err
	}

	var rdb *redisv9.Client
	if cfg := infraredis.LoadConfigFromEnv(); cfg.Enabled() {
		if tmp, err := infraredis.NewRedisClient(ctx, cfg); err == nil {
			rdb = tmp
			defer rdb.Close()
		}
	}

	market := di.NewMarket(rdb)
	uc, err := di.NewEngineUsecase(ctx, db, rdb, market)
	if err != nil {
		return err
	}

	total := 0
	for _, bot := range bots.All() {
		if botID != "" && bot.ID != botID {
			continue
		}
		if fresh {
			for _, pair := range bot.Pairs {
				if err := market.Invalidate(ctx, pair); err != nil {
					slog.Warn("failed to drop cached bars", "symbol", pair, "error", err)
				}
			}
		}
		res, err := uc.RunBot(ctx, bot)
		if err != nil {
			// 1つのボットの失敗で他のボットを止めない
			slog.Error("bot run failed", "bot", bot.ID, "error", err)
			continue
		}
		total += res.Count
	}

	slog.Info("signalbot ok", "signals", total)
	return nil
}
