package adapters

import (
	"context"

	"signal_backend/internal/feature/signals/domain/entity"
	"signal_backend/internal/feature/signals/domain/instrument"
	"signal_backend/internal/feature/signals/usecase"
)

// marketRouter sends crypto symbols to a dedicated provider when one is
// configured and everything else to the default provider.
type marketRouter struct {
	fallback usecase.MarketRepository
	crypto   usecase.MarketRepository
}

var _ usecase.MarketRepository = (*marketRouter)(nil)

// NewMarketRouter returns a router. crypto may be nil.
func NewMarketRouter(fallback, crypto usecase.MarketRepository) *marketRouter {
	return &marketRouter{fallback: fallback, crypto: crypto}
}

func (r *marketRouter) GetTimeSeries(ctx context.Context, symbol string, tf entity.Timeframe, outputsize int) ([]entity.Bar, error) {
	if r.crypto != nil && instrument.IsCrypto(symbol) {
		return r.crypto.GetTimeSeries(ctx, symbol, tf, outputsize)
	}
	return r.fallback.GetTimeSeries(ctx, symbol, tf, outputsize)
}
