package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal_backend/internal/feature/signals/domain/entity"
)

type stubMarket struct {
	name  string
	calls []string
}

func (s *stubMarket) GetTimeSeries(ctx context.Context, symbol string, tf entity.Timeframe, outputsize int) ([]entity.Bar, error) {
	s.calls = append(s.calls, symbol)
	return []entity.Bar{{Close: 1}}, nil
}

func TestMarketRouter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("crypto goes to the crypto provider", func(t *testing.T) {
		t.Parallel()

		fx, crypto := &stubMarket{name: "fx"}, &stubMarket{name: "crypto"}
		r := NewMarketRouter(fx, crypto)

		for _, s := range []string{"BTCUSD", "ETH/USDT", "EURUSD", "XAUUSD"} {
			_, err := r.GetTimeSeries(ctx, s, entity.Timeframe1h, 100)
			require.NoError(t, err)
		}

		assert.Equal(t, []string{"BTCUSD", "ETH/USDT"}, crypto.calls)
		assert.Equal(t, []string{"EURUSD", "XAUUSD"}, fx.calls)
	})

	t.Run("without a crypto provider everything uses the fallback", func(t *testing.T) {
		t.Parallel()

		fx := &stubMarket{name: "fx"}
		r := NewMarketRouter(fx, nil)

		_, err := r.GetTimeSeries(ctx, "BTCUSD", entity.Timeframe1h, 100)
		require.NoError(t, err)
		assert.Equal(t, []string{"BTCUSD"}, fx.calls)
	})
}
