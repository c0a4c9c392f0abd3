package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"signal_backend/internal/feature/signals/domain/entity"
	"signal_backend/internal/feature/signals/usecase"
)

// NotifyChannel is the Redis channel signal notifications are published on.
const NotifyChannel = "signals:notify"

// Notification is the payload published for each dispatched signal.
type Notification struct {
	Signal  entity.Signal `json:"signal"`
	UserIDs []string      `json:"user_ids"`
}

type redisDispatcher struct {
	rdb     *redis.Client
	channel string
}

var _ usecase.Dispatcher = (*redisDispatcher)(nil)

// NewRedisDispatcher publishes notifications on NotifyChannel. Delivery to
// end users is the subscribers' job.
func NewRedisDispatcher(rdb *redis.Client) *redisDispatcher {
	return &redisDispatcher{rdb: rdb, channel: NotifyChannel}
}

func (d *redisDispatcher) Dispatch(ctx context.Context, s entity.Signal, userIDs []string) error {
	if userIDs == nil {
		userIDs = []string{}
	}
	payload, err := json.Marshal(Notification{Signal: s, UserIDs: userIDs})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	receivers, err := d.rdb.Publish(ctx, d.channel, payload).Result()
	if err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	slog.Debug("notification published", "id", s.ID, "channel", d.channel, "subscribers", receivers)
	return nil
}

type logDispatcher struct{}

var _ usecase.Dispatcher = logDispatcher{}

// NewLogDispatcher returns a dispatcher that only logs. It stands in when
// Redis is not configured.
func NewLogDispatcher() logDispatcher {
	return logDispatcher{}
}

func (logDispatcher) Dispatch(ctx context.Context, s entity.Signal, userIDs []string) error {
	slog.Info("signal notification", "id", s.ID, "symbol", s.Symbol, "direction", s.Direction, "users", len(userIDs))
	return nil
}
