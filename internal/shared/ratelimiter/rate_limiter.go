package ratelimiter

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultSpacing は外部データプロバイダへの連続リクエスト間の最小間隔です。
const DefaultSpacing = 100 * time.Millisecond

// RateLimiterInterface は、API呼び出しなどの操作の頻度を制限するインターフェースです。
type RateLimiterInterface interface {
	Wait(ctx context.Context) error
}

// RateLimiter は連続する呼び出しの間に一定の間隔を空けます。
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter は spacing ごとに1回の呼び出しを許可する RateLimiter を生成します。
// spacing が0以下の場合は待機しません。
func NewRateLimiter(spacing time.Duration) *RateLimiter {
	if spacing <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Every(spacing), 1)}
}

// Wait は次の呼び出しが許可されるまで待機します。ctx がキャンセルされた場合はエラーを返します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	return rl.limiter.Wait(ctx)
}
