package binance

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	gobinance "github.com/adshao/go-binance/v2"

	"signal_backend/internal/feature/signals/domain/entity"
	"signal_backend/internal/feature/signals/domain/instrument"
	"signal_backend/internal/feature/signals/usecase"
)

// maxKlines is the largest page the klines endpoint returns.
const maxKlines = 1000

// BinanceMarket fetches bars from the Binance spot klines endpoint.
type BinanceMarket struct {
	client *gobinance.Client
	now    func() time.Time
}

var _ usecase.MarketRepository = (*BinanceMarket)(nil)

// NewBinanceMarket returns a market backed by a go-binance client using httpClient.
func NewBinanceMarket(cfg Config, httpClient *http.Client) *BinanceMarket {
	client := gobinance.NewClient(cfg.APIKey, cfg.SecretKey)
	if cfg.BaseURL != "" {
		client.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if httpClient != nil {
		client.HTTPClient = httpClient
	}
	return &BinanceMarket{client: client, now: time.Now}
}

// WithClock replaces the clock used to detect the forming candle.
func (b *BinanceMarket) WithClock(now func() time.Time) *BinanceMarket {
	b.now = now
	return b
}

// GetTimeSeries returns up to outputsize closed bars, oldest first. The
// still-forming candle is dropped.
func (b *BinanceMarket) GetTimeSeries(ctx context.Context, symbol string, tf entity.Timeframe, outputsize int) ([]entity.Bar, error) {
	if outputsize <= 0 || outputsize > maxKlines {
		outputsize = maxKlines
	}
	// one extra so the window stays full once the forming candle is dropped
	limit := min(outputsize+1, maxKlines)

	klines, err := b.client.NewKlinesService().
		Symbol(Pair(symbol)).
		Interval(string(tf)).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance klines %s %s: %w", symbol, tf, err)
	}

	nowMs := b.now().UnixMilli()
	bars := make([]entity.Bar, 0, len(klines))
	for _, k := range klines {
		if k.CloseTime >= nowMs {
			continue
		}
		bars = append(bars, entity.Bar{
			Time:   time.UnixMilli(k.OpenTime).UTC(),
			Open:   parsePrice(k.Open),
			High:   parsePrice(k.High),
			Low:    parsePrice(k.Low),
			Close:  parsePrice(k.Close),
			Volume: parseVolume(k.Volume),
		})
	}
	if len(bars) > outputsize {
		bars = bars[len(bars)-outputsize:]
	}
	return bars, nil
}

// Pair maps an internal symbol to a Binance spot pair. USD quotes trade
// against USDT on Binance.
func Pair(symbol string) string {
	s := instrument.Normalize(symbol)
	if strings.HasSuffix(s, "USD") {
		return s + "T"
	}
	return s
}

func parsePrice(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func parseVolume(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0
	}
	return f
}
