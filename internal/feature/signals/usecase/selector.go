package usecase

import (
	"context"
	"errors"
	"log/slog"

	"signal_backend/internal/feature/signals/domain/entity"
	"signal_backend/internal/feature/signals/domain/structure"
	"signal_backend/internal/feature/signals/domain/synthesis"
	"signal_backend/internal/platform/metrics"
	"signal_backend/internal/shared/ratelimiter"
)

const (
	// EarlyExitConfidence stops the timeframe scan once the best candidate reaches it.
	EarlyExitConfidence = 85
	// barsOutputSize leaves headroom above the analysis window for invalid bars.
	barsOutputSize = 100
)

// EvaluateFunc returns the candidate for one timeframe, or nil when the
// timeframe is skipped or has no setup.
type EvaluateFunc func(tf entity.Timeframe) *entity.Candidate

// SelectBest scans timeframes in order and keeps the candidate with the
// strictly highest confidence. The scan stops as soon as the kept candidate
// reaches EarlyExitConfidence.
func SelectBest(timeframes []entity.Timeframe, eval EvaluateFunc) (*entity.Candidate, entity.Timeframe) {
	var (
		best   *entity.Candidate
		bestTF entity.Timeframe
	)
	for _, tf := range timeframes {
		c := eval(tf)
		if c != nil && (best == nil || c.Confidence > best.Confidence) {
			best, bestTF = c, tf
		}
		if best != nil && best.Confidence >= EarlyExitConfidence {
			break
		}
	}
	return best, bestTF
}

// Selector evaluates a symbol across timeframes using market data.
type Selector struct {
	market      MarketRepository
	rateLimiter ratelimiter.RateLimiterInterface
}

// NewSelector returns a Selector that paces every market request through rateLimiter.
func NewSelector(market MarketRepository, rateLimiter ratelimiter.RateLimiterInterface) *Selector {
	return &Selector{market: market, rateLimiter: rateLimiter}
}

// Select returns the best candidate for symbol across timeframes. Provider
// failures and short histories skip the timeframe and never fail the call.
func (s *Selector) Select(ctx context.Context, symbol string, timeframes []entity.Timeframe) (*entity.Candidate, entity.Timeframe) {
	return SelectBest(timeframes, func(tf entity.Timeframe) *entity.Candidate {
		return s.evaluate(ctx, symbol, tf)
	})
}

func (s *Selector) evaluate(ctx context.Context, symbol string, tf entity.Timeframe) *entity.Candidate {
	if err := s.rateLimiter.Wait(ctx); err != nil {
		slog.Warn("rate limiter wait aborted", "symbol", symbol, "timeframe", tf, "error", err)
		return nil
	}

	bars, err := s.market.GetTimeSeries(ctx, symbol, tf, barsOutputSize)
	if err != nil {
		metrics.ProviderErrorsTotal.WithLabelValues(string(tf)).Inc()
		slog.Error("failed to fetch bars", "symbol", symbol, "timeframe", tf, "error", err)
		return nil
	}

	window, err := structure.Normalize(bars)
	if err != nil {
		if errors.Is(err, structure.ErrInsufficientHistory) {
			slog.Debug("skipping timeframe", "symbol", symbol, "timeframe", tf, "bars", len(bars))
			return nil
		}
		slog.Error("failed to normalize bars", "symbol", symbol, "timeframe", tf, "error", err)
		return nil
	}

	analysis, err := structure.Analyze(symbol, tf, window)
	if err != nil {
		slog.Error("failed to analyze bars", "symbol", symbol, "timeframe", tf, "error", err)
		return nil
	}
	return synthesis.Synthesize(analysis)
}
