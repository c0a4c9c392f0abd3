package usecase

import (
	"context"
	"errors"
	"time"

	"signal_backend/internal/feature/signals/domain/entity"
)

var (
	ErrMarketAPI = errors.New("market API error")
	ErrDB        = errors.New("database error")
)

// flatBars returns n identical bars with no tradable structure.
func flatBars(n int) []entity.Bar {
	bars := make([]entity.Bar, n)
	for i := range bars {
		bars[i] = entity.Bar{Open: 1.1045, High: 1.1050, Low: 1.1040, Close: 1.1045, Volume: 100}
	}
	return bars
}

// trapBars ends a flat range with a rejected breakout, a SELL at 85.
func trapBars() []entity.Bar {
	bars := flatBars(60)
	bars[59] = entity.Bar{Open: 1.1070, High: 1.1080, Low: 1.1045, Close: 1.1055, Volume: 100}
	return bars
}

type mockMarketRepository struct {
	GetTimeSeriesFunc  func(ctx context.Context, symbol string, tf entity.Timeframe, outputsize int) ([]entity.Bar, error)
	GetTimeSeriesCalls int
	Symbols            []string
}

func (m *mockMarketRepository) GetTimeSeries(ctx context.Context, symbol string, tf entity.Timeframe, outputsize int) ([]entity.Bar, error) {
	m.GetTimeSeriesCalls++
	m.Symbols = append(m.Symbols, symbol)
	if m.GetTimeSeriesFunc != nil {
		return m.GetTimeSeriesFunc(ctx, symbol, tf, outputsize)
	}
	return nil, errors.New("GetTimeSeriesFunc is not implemented")
}

type mockRateLimiter struct {
	WaitCalls int
}

func (m *mockRateLimiter) Wait(ctx context.Context) error {
	m.WaitCalls++
	return nil
}

type mockSignalStore struct {
	FindPendingFunc   func(ctx context.Context, since time.Time) ([]entity.PendingSignal, error)
	CreateFunc        func(ctx context.Context, s *entity.Signal) error
	FindByIDFunc      func(ctx context.Context, id string) (*entity.Signal, error)
	MarkBroadcastFunc func(ctx context.Context, id string, userIDs []string) error

	FindPendingCalls   int
	Created            []entity.Signal
	MarkBroadcastCalls int
}

func (m *mockSignalStore) FindPending(ctx context.Context, since time.Time) ([]entity.PendingSignal, error) {
	m.FindPendingCalls++
	if m.FindPendingFunc != nil {
		return m.FindPendingFunc(ctx, since)
	}
	return nil, nil
}

func (m *mockSignalStore) Create(ctx context.Context, s *entity.Signal) error {
	if m.CreateFunc != nil {
		if err := m.CreateFunc(ctx, s); err != nil {
			return err
		}
	}
	m.Created = append(m.Created, *s)
	return nil
}

func (m *mockSignalStore) FindByID(ctx context.Context, id string) (*entity.Signal, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, ErrSignalNotFound
}

func (m *mockSignalStore) MarkBroadcast(ctx context.Context, id string, userIDs []string) error {
	m.MarkBroadcastCalls++
	if m.MarkBroadcastFunc != nil {
		return m.MarkBroadcastFunc(ctx, id, userIDs)
	}
	return nil
}

type mockPreferenceStore struct {
	ListAllFunc  func(ctx context.Context) ([]entity.UserPreference, error)
	ListAllCalls int
}

func (m *mockPreferenceStore) ListAll(ctx context.Context) ([]entity.UserPreference, error) {
	m.ListAllCalls++
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return nil, nil
}

type mockDispatcher struct {
	DispatchFunc  func(ctx context.Context, s entity.Signal, userIDs []string) error
	DispatchCalls int
	LastUserIDs   []string
}

func (m *mockDispatcher) Dispatch(ctx context.Context, s entity.Signal, userIDs []string) error {
	m.DispatchCalls++
	m.LastUserIDs = userIDs
	if m.DispatchFunc != nil {
		return m.DispatchFunc(ctx, s, userIDs)
	}
	return nil
}

type mockClaimer struct {
	ClaimFunc    func(ctx context.Context, symbol string, ttl time.Duration) (bool, error)
	ReleaseFunc  func(ctx context.Context, symbol string) error
	ClaimCalls   int
	Released     []string
	LastClaimTTL time.Duration
}

func (m *mockClaimer) Claim(ctx context.Context, symbol string, ttl time.Duration) (bool, error) {
	m.ClaimCalls++
	m.LastClaimTTL = ttl
	if m.ClaimFunc != nil {
		return m.ClaimFunc(ctx, symbol, ttl)
	}
	return true, nil
}

func (m *mockClaimer) Release(ctx context.Context, symbol string) error {
	m.Released = append(m.Released, symbol)
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, symbol)
	}
	return nil
}

// newExclusiveClaimer grants a symbol only while no other holder has it,
// the way SET NX and DEL behave.
func newExclusiveClaimer() *mockClaimer {
	held := make(map[string]struct{})
	return &mockClaimer{
		ClaimFunc: func(ctx context.Context, symbol string, ttl time.Duration) (bool, error) {
			if _, ok := held[symbol]; ok {
				return false, nil
			}
			held[symbol] = struct{}{}
			return true, nil
		},
		ReleaseFunc: func(ctx context.Context, symbol string) error {
			delete(held, symbol)
			return nil
		},
	}
}

type mockNarrator struct {
	NarrateFunc func(ctx context.Context, c entity.Candidate) (string, error)
}

func (m *mockNarrator) Narrate(ctx context.Context, c entity.Candidate) (string, error) {
	return m.NarrateFunc(ctx, c)
}

type mockBotRepository struct {
	bots map[string]entity.BotConfig
}

func (m *mockBotRepository) FindByID(ctx context.Context, id string) (*entity.BotConfig, error) {
	b, ok := m.bots[id]
	if !ok {
		return nil, ErrBotNotFound
	}
	return &b, nil
}
