package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal_backend/internal/feature/signals/domain/entity"
)

func candidateWith(confidence int) *entity.Candidate {
	return &entity.Candidate{Symbol: "EURUSD", Confidence: confidence}
}

func TestSelectBest(t *testing.T) {
	t.Parallel()

	tfs := []entity.Timeframe{entity.Timeframe15m, entity.Timeframe1h, entity.Timeframe4h}

	tests := []struct {
		name       string
		results    map[entity.Timeframe]*entity.Candidate
		wantConf   int
		wantTF     entity.Timeframe
		wantNil    bool
		wantCalled []entity.Timeframe
	}{
		{
			name: "early exit once a candidate reaches 85",
			results: map[entity.Timeframe]*entity.Candidate{
				entity.Timeframe15m: candidateWith(87),
				entity.Timeframe1h:  candidateWith(90),
			},
			wantConf:   87,
			wantTF:     entity.Timeframe15m,
			wantCalled: []entity.Timeframe{entity.Timeframe15m},
		},
		{
			name: "first seen wins a tie",
			results: map[entity.Timeframe]*entity.Candidate{
				entity.Timeframe15m: candidateWith(70),
				entity.Timeframe1h:  candidateWith(70),
				entity.Timeframe4h:  candidateWith(65),
			},
			wantConf:   70,
			wantTF:     entity.Timeframe15m,
			wantCalled: tfs,
		},
		{
			name: "later strictly higher candidate replaces the best",
			results: map[entity.Timeframe]*entity.Candidate{
				entity.Timeframe15m: candidateWith(60),
				entity.Timeframe4h:  candidateWith(75),
			},
			wantConf:   75,
			wantTF:     entity.Timeframe4h,
			wantCalled: tfs,
		},
		{
			name: "exit after the timeframe that crosses the threshold",
			results: map[entity.Timeframe]*entity.Candidate{
				entity.Timeframe15m: candidateWith(60),
				entity.Timeframe1h:  candidateWith(85),
				entity.Timeframe4h:  candidateWith(95),
			},
			wantConf:   85,
			wantTF:     entity.Timeframe1h,
			wantCalled: []entity.Timeframe{entity.Timeframe15m, entity.Timeframe1h},
		},
		{
			name:       "no candidate on any timeframe",
			results:    map[entity.Timeframe]*entity.Candidate{},
			wantNil:    true,
			wantCalled: tfs,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var called []entity.Timeframe
			best, tf := SelectBest(tfs, func(tf entity.Timeframe) *entity.Candidate {
				called = append(called, tf)
				return tt.results[tf]
			})

			assert.Equal(t, tt.wantCalled, called)
			if tt.wantNil {
				assert.Nil(t, best)
				assert.Empty(t, tf)
				return
			}
			require.NotNil(t, best)
			assert.Equal(t, tt.wantConf, best.Confidence)
			assert.Equal(t, tt.wantTF, tf)
		})
	}
}

func TestSelector_Select(t *testing.T) {
	t.Parallel()

	t.Run("skips failing and short timeframes", func(t *testing.T) {
		t.Parallel()

		market := &mockMarketRepository{
			GetTimeSeriesFunc: func(ctx context.Context, symbol string, tf entity.Timeframe, outputsize int) ([]entity.Bar, error) {
				switch tf {
				case entity.Timeframe15m:
					return nil, ErrMarketAPI
				case entity.Timeframe1h:
					return flatBars(49), nil
				default:
					return trapBars(), nil
				}
			},
		}
		rl := &mockRateLimiter{}

		c, tf := NewSelector(market, rl).Select(context.Background(), "EURUSD", entity.DefaultTimeframes)

		require.NotNil(t, c)
		assert.Equal(t, entity.Timeframe4h, tf)
		assert.Equal(t, entity.DirectionSell, c.Direction)
		assert.Equal(t, 3, market.GetTimeSeriesCalls)
		assert.Equal(t, 3, rl.WaitCalls, "every provider call is paced")
	})

	t.Run("stops fetching after a high-confidence candidate", func(t *testing.T) {
		t.Parallel()

		market := &mockMarketRepository{
			GetTimeSeriesFunc: func(ctx context.Context, symbol string, tf entity.Timeframe, outputsize int) ([]entity.Bar, error) {
				assert.Equal(t, barsOutputSize, outputsize)
				return trapBars(), nil
			},
		}

		c, tf := NewSelector(market, &mockRateLimiter{}).Select(context.Background(), "EURUSD", entity.DefaultTimeframes)

		require.NotNil(t, c)
		assert.Equal(t, 85, c.Confidence)
		assert.Equal(t, entity.Timeframe15m, tf)
		assert.Equal(t, 1, market.GetTimeSeriesCalls)
	})

	t.Run("no setup anywhere", func(t *testing.T) {
		t.Parallel()

		market := &mockMarketRepository{
			GetTimeSeriesFunc: func(ctx context.Context, symbol string, tf entity.Timeframe, outputsize int) ([]entity.Bar, error) {
				return flatBars(60), nil
			},
		}

		c, _ := NewSelector(market, &mockRateLimiter{}).Select(context.Background(), "EURUSD", entity.DefaultTimeframes)
		assert.Nil(t, c)
	})
}
