package cache

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"

	"signal_backend/internal/feature/signals/domain/entity"
)

// mockMarketRepository はテスト用のMarketRepositoryモック実装です。
type mockMarketRepository struct {
	getTimeSeriesFn func(ctx context.Context, symbol string, tf entity.Timeframe, outputsize int) ([]entity.Bar, error)
	calls           int
}

// GetTimeSeries はモックのGetTimeSeries関数を呼び出します。
func (m *mockMarketRepository) GetTimeSeries(ctx context.Context, symbol string, tf entity.Timeframe, outputsize int) ([]entity.Bar, error) {
	m.calls++
	if m.getTimeSeriesFn != nil {
		return m.getTimeSeriesFn(ctx, symbol, tf, outputsize)
	}
	return nil, nil
}

var fixedNow = time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)

func testBars() []entity.Bar {
	return []entity.Bar{
		{Time: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), Open: 1.1, High: 1.2, Low: 1.0, Close: 1.15, Volume: 10},
		{Time: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), Open: 1.15, High: 1.25, Low: 1.1, Close: 1.2, Volume: 0},
	}
}

// newTestRepo は時刻を固定したキャッシュリポジトリを生成します。
func newTestRepo(t *testing.T, inner *mockMarketRepository) (*CachingMarketRepository, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	repo := NewCachingMarketRepository(db, 0, inner, "")
	repo.now = func() time.Time { return fixedNow }
	return repo, mock
}

// TestNewCachingMarketRepository_Defaults はデフォルト値（TTLとnamespace）が正しく設定されることを検証します。
func TestNewCachingMarketRepository_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		ttl               time.Duration
		namespace         string
		expectedTTL       time.Duration
		expectedNamespace string
	}{
		{"default values when zero/empty", 0, "", 5 * time.Minute, "bars"},
		{"negative ttl uses default", -1 * time.Minute, "", 5 * time.Minute, "bars"},
		{"custom values preserved", 10 * time.Minute, "custom", 10 * time.Minute, "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := NewCachingMarketRepository(nil, tt.ttl, &mockMarketRepository{}, tt.namespace)

			if repo.ttl != tt.expectedTTL {
				t.Errorf("expected TTL %v, got %v", tt.expectedTTL, repo.ttl)
			}
			if repo.namespace != tt.expectedNamespace {
				t.Errorf("expected namespace %s, got %s", tt.expectedNamespace, repo.namespace)
			}
		})
	}
}

// TestGetTimeSeries_NilRedis はRedisが未設定の場合に直接プロバイダを呼ぶことを検証します。
func TestGetTimeSeries_NilRedis(t *testing.T) {
	t.Parallel()

	inner := &mockMarketRepository{
		getTimeSeriesFn: func(ctx context.Context, symbol string, tf entity.Timeframe, outputsize int) ([]entity.Bar, error) {
			return testBars(), nil
		},
	}
	repo := NewCachingMarketRepository(nil, 0, inner, "")

	got, err := repo.GetTimeSeries(context.Background(), "EURUSD", entity.Timeframe1h, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 bars, got %d", len(got))
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 provider call, got %d", inner.calls)
	}
}

// TestGetTimeSeries_CacheHit はキャッシュヒット時にプロバイダを呼ばないことを検証します。
func TestGetTimeSeries_CacheHit(t *testing.T) {
	t.Parallel()

	inner := &mockMarketRepository{}
	repo, mock := newTestRepo(t, inner)

	payload, err := encodeBars(testBars())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	mock.ExpectGet("bars:EURUSD:1h:100").SetVal(string(payload))

	got, err := repo.GetTimeSeries(context.Background(), "EUR/USD", entity.Timeframe1h, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 0 {
		t.Errorf("expected no provider call on a hit, got %d", inner.calls)
	}
	if len(got) != 2 || got[1].Close != 1.2 || !got[0].Time.Equal(testBars()[0].Time) {
		t.Errorf("unexpected bars: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet redis expectations: %v", err)
	}
}

// TestGetTimeSeries_CacheMiss はキャッシュミス時に次の足までのTTLで保存されることを検証します。
func TestGetTimeSeries_CacheMiss(t *testing.T) {
	t.Parallel()

	inner := &mockMarketRepository{
		getTimeSeriesFn: func(ctx context.Context, symbol string, tf entity.Timeframe, outputsize int) ([]entity.Bar, error) {
			return testBars(), nil
		},
	}
	repo, mock := newTestRepo(t, inner)

	payload, _ := encodeBars(testBars())
	mock.ExpectGet("bars:EURUSD:1h:100").RedisNil()
	mock.ExpectSet("bars:EURUSD:1h:100", payload, 39*time.Minute+30*time.Second).SetVal("OK")

	got, err := repo.GetTimeSeries(context.Background(), "EURUSD", entity.Timeframe1h, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 bars, got %d", len(got))
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 provider call, got %d", inner.calls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet redis expectations: %v", err)
	}
}

// TestGetTimeSeries_UnknownTimeframeUsesDefaultTTL は足の長さが不明な場合に既定TTLを使うことを検証します。
func TestGetTimeSeries_UnknownTimeframeUsesDefaultTTL(t *testing.T) {
	t.Parallel()

	inner := &mockMarketRepository{
		getTimeSeriesFn: func(ctx context.Context, symbol string, tf entity.Timeframe, outputsize int) ([]entity.Bar, error) {
			return testBars(), nil
		},
	}
	repo, mock := newTestRepo(t, inner)

	payload, _ := encodeBars(testBars())
	mock.ExpectGet("bars:EURUSD:1week:50").RedisNil()
	mock.ExpectSet("bars:EURUSD:1week:50", payload, 5*time.Minute).SetVal("OK")

	if _, err := repo.GetTimeSeries(context.Background(), "EURUSD", "1week", 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet redis expectations: %v", err)
	}
}

// TestGetTimeSeries_CorruptedCache は壊れたキャッシュを削除してプロバイダにフォールバックすることを検証します。
func TestGetTimeSeries_CorruptedCache(t *testing.T) {
	t.Parallel()

	inner := &mockMarketRepository{
		getTimeSeriesFn: func(ctx context.Context, symbol string, tf entity.Timeframe, outputsize int) ([]entity.Bar, error) {
			return testBars(), nil
		},
	}
	repo, mock := newTestRepo(t, inner)

	payload, _ := encodeBars(testBars())
	mock.ExpectGet("bars:EURUSD:1h:100").SetVal("{not json")
	mock.ExpectDel("bars:EURUSD:1h:100").SetVal(1)
	mock.ExpectSet("bars:EURUSD:1h:100", payload, 39*time.Minute+30*time.Second).SetVal("OK")

	if _, err := repo.GetTimeSeries(context.Background(), "EURUSD", entity.Timeframe1h, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 provider call, got %d", inner.calls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet redis expectations: %v", err)
	}
}

// TestGetTimeSeries_ProviderError はプロバイダのエラーをそのまま返しキャッシュしないことを検証します。
func TestGetTimeSeries_ProviderError(t *testing.T) {
	t.Parallel()

	errProvider := errors.New("provider down")
	inner := &mockMarketRepository{
		getTimeSeriesFn: func(ctx context.Context, symbol string, tf entity.Timeframe, outputsize int) ([]entity.Bar, error) {
			return nil, errProvider
		},
	}
	repo, mock := newTestRepo(t, inner)
	mock.ExpectGet("bars:EURUSD:1h:100").RedisNil()

	got, err := repo.GetTimeSeries(context.Background(), "EURUSD", entity.Timeframe1h, 100)
	if !errors.Is(err, errProvider) {
		t.Errorf("expected provider error, got %v", err)
	}
	if got != nil {
		t.Errorf("expected nil bars, got %v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet redis expectations: %v", err)
	}
}

// TestInvalidate はシンボル配下のキーをSCANで削除することを検証します。
func TestInvalidate(t *testing.T) {
	t.Parallel()

	repo, mock := newTestRepo(t, &mockMarketRepository{})

	keys := []string{"bars:EURUSD:1h:100", "bars:EURUSD:4h:100"}
	mock.ExpectScan(0, "bars:EURUSD:*", 200).SetVal(keys, 0)
	mock.ExpectDel(keys...).SetVal(2)

	if err := repo.Invalidate(context.Background(), "eur/usd"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet redis expectations: %v", err)
	}
}

// TestInvalidate_NilRedis はRedis未設定時に何もしないことを検証します。
func TestInvalidate_NilRedis(t *testing.T) {
	t.Parallel()

	repo := NewCachingMarketRepository(nil, 0, &mockMarketRepository{}, "")
	if err := repo.Invalidate(context.Background(), "EURUSD"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestBarCodec_NaN は欠損値（NaN）がキャッシュを往復しても保持されることを検証します。
func TestBarCodec_NaN(t *testing.T) {
	t.Parallel()

	in := []entity.Bar{{Open: math.NaN(), High: 1.2, Low: 1.0, Close: 1.1, Volume: math.NaN()}}

	b, err := encodeBars(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := decodeBars(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !math.IsNaN(out[0].Open) {
		t.Errorf("expected NaN open, got %v", out[0].Open)
	}
	if out[0].High != 1.2 || out[0].Close != 1.1 {
		t.Errorf("unexpected prices: %+v", out[0])
	}
	if out[0].Volume != 0 {
		t.Errorf("expected NaN volume to become 0, got %v", out[0].Volume)
	}
}
