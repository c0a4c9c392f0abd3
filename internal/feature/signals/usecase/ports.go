package usecase

import (
	"context"
	"time"

	"signal_backend/internal/feature/signals/domain/entity"
)

// Following Go convention, the interfaces below are defined by the consumer
// (usecase), not the provider (adapters).

// MarketRepository returns time-ordered bars, oldest first.
type MarketRepository interface {
	GetTimeSeries(ctx context.Context, symbol string, tf entity.Timeframe, outputsize int) ([]entity.Bar, error)
}

// SignalStore persists emitted signals.
type SignalStore interface {
	// FindPending returns unresolved bot-generated signals created at or after since.
	FindPending(ctx context.Context, since time.Time) ([]entity.PendingSignal, error)
	Create(ctx context.Context, s *entity.Signal) error
	// FindByID returns ErrSignalNotFound when no signal has the ID.
	FindByID(ctx context.Context, id string) (*entity.Signal, error)
	MarkBroadcast(ctx context.Context, id string, userIDs []string) error
}

// PreferenceStore is a read-only source of user trading preferences.
type PreferenceStore interface {
	ListAll(ctx context.Context) ([]entity.UserPreference, error)
}

// Dispatcher delivers a finalized signal to users. Delivery is best effort.
type Dispatcher interface {
	Dispatch(ctx context.Context, s entity.Signal, userIDs []string) error
}

// SymbolClaimer reserves a symbol for one bot run so concurrent runs do not
// both emit for it.
type SymbolClaimer interface {
	Claim(ctx context.Context, symbol string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, symbol string) error
}

// Narrator produces an optional prose summary of a candidate.
type Narrator interface {
	Narrate(ctx context.Context, c entity.Candidate) (string, error)
}

// BotRepository looks up stored bot definitions.
type BotRepository interface {
	// FindByID returns ErrBotNotFound when no bot has the ID.
	FindByID(ctx context.Context, id string) (*entity.BotConfig, error)
}
