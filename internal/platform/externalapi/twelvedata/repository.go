package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"signal_backend/internal/feature/signals/domain/entity"
	"signal_backend/internal/feature/signals/usecase"
	"signal_backend/internal/platform/externalapi/twelvedata/dto"
)

// TwelveDataMarket はTwelve Data外部APIからローソク足を取得するMarketRepository実装です。
type TwelveDataMarket struct {
	cfg    Config
	client *http.Client
	now    func() time.Time
}

// TwelveDataMarketがMarketRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MarketRepository = (*TwelveDataMarket)(nil)

// NewTwelveDataMarket は指定された設定とHTTPクライアントでTwelveDataMarketの新しいインスタンスを生成します。
func NewTwelveDataMarket(cfg Config, client *http.Client) *TwelveDataMarket {
	return &TwelveDataMarket{cfg: cfg, client: client, now: time.Now}
}

// WithClock は形成中の足の判定に使う時計を差し替えます。
func (t *TwelveDataMarket) WithClock(now func() time.Time) *TwelveDataMarket {
	t.now = now
	return t
}

// GetTimeSeries はTwelve Data APIから時系列データを取得し、古い順のバーとして返します。
// 欠損または数値でない価格はNaNとして返され、正規化の段階で除外されます。
// まだ確定していない最新の足は返しません。
func (t *TwelveDataMarket) GetTimeSeries(ctx context.Context, symbol string, tf entity.Timeframe, outputsize int) ([]entity.Bar, error) {
	q := url.Values{}
	q.Set("symbol", Ticker(symbol))
	q.Set("interval", Interval(tf))
	// 形成中の足を除いても件数が揃うよう1本多く要求する
	q.Set("outputsize", strconv.Itoa(outputsize+1))
	q.Set("timezone", "UTC")
	q.Set("apikey", t.cfg.TwelveDataAPIKey)

	u := fmt.Sprintf("%s/time_series?%s", strings.TrimRight(t.cfg.BaseURL, "/"), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	res, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("twelvedata http %d", res.StatusCode)
	}

	var body dto.TimeSeriesResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.Status == "error" {
		return nil, fmt.Errorf("twelvedata: %s", body.Message)
	}

	// APIは新しい順に返すため、末尾から走査して古い順に並べる
	now := t.now()
	bars := make([]entity.Bar, 0, len(body.Values))
	for i := len(body.Values) - 1; i >= 0; i-- {
		v := body.Values[i]
		tm, err := parseDatetime(v.Datetime)
		if err != nil {
			return nil, fmt.Errorf("parse time %q: %w", v.Datetime, err)
		}
		if tm.Add(tf.Duration()).After(now) {
			continue
		}
		bars = append(bars, entity.Bar{
			Time:   tm,
			Open:   parsePrice(v.Open),
			High:   parsePrice(v.High),
			Low:    parsePrice(v.Low),
			Close:  parsePrice(v.Close),
			Volume: parseVolume(v.Volume),
		})
	}
	if outputsize > 0 && len(bars) > outputsize {
		bars = bars[len(bars)-outputsize:]
	}
	return bars, nil
}

func parseDatetime(s string) (time.Time, error) {
	tm, err := time.Parse(time.DateTime, s)
	if err == nil {
		return tm, nil
	}
	return time.Parse(time.DateOnly, s)
}

func parsePrice(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// parseVolume は出来高を返します。FXなど出来高のない銘柄では0になります。
func parseVolume(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0
	}
	return f
}
