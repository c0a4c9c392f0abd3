// Package di provides dependency injection factories for creating application components.
package di

import (
	"log/slog"

	"github.com/redis/go-redis/v9"

	"signal_backend/internal/feature/signals/adapters"
	"signal_backend/internal/feature/signals/usecase"
	"signal_backend/internal/platform/cache"
	"signal_backend/internal/platform/externalapi/binance"
	"signal_backend/internal/platform/externalapi/twelvedata"
	infrahttp "signal_backend/internal/platform/http"
)

// NewMarket creates the market data provider: Twelve Data for every symbol,
// Binance for crypto when enabled, behind a Redis bar cache. A nil rdb
// disables caching.
func NewMarket(rdb *redis.Client) *cache.CachingMarketRepository {
	tdCfg := twelvedata.LoadConfig()
	if tdCfg.TwelveDataAPIKey == "" {
		slog.Warn("TWELVE_DATA_API_KEY is not set; Twelve Data requests will be rejected")
	}
	td := twelvedata.NewTwelveDataMarket(tdCfg, infrahttp.NewHTTPClient(tdCfg.Timeout))

	var crypto usecase.MarketRepository
	if bnCfg := binance.LoadConfig(); bnCfg.Enabled {
		crypto = binance.NewBinanceMarket(bnCfg, infrahttp.NewHTTPClient(bnCfg.Timeout))
		slog.Info("binance provider enabled for crypto symbols")
	}

	return cache.NewCachingMarketRepository(rdb, 0, adapters.NewMarketRouter(td, crypto), "bars")
}
