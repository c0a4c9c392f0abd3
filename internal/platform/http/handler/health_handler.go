// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CheckTimeout は依存先ごとの疎通確認の上限時間です。
const CheckTimeout = 2 * time.Second

// Check は /healthz で確認する依存先（DB、Redisなど）です。
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Health はサービスヘルスチェック用の /healthz エンドポイントを返します。
// いずれかの依存先が応答しない場合は 503 を返し、キャッシュを防止します。
func Health(checks ...Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 明示的にキャッシュを防止
		c.Header("Cache-Control", "no-store")

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		results, healthy := runChecks(c.Request.Context(), checks)
		code := http.StatusOK
		status := "ok"
		if !healthy {
			code = http.StatusServiceUnavailable
			status = "degraded"
		}

		if c.Request.Method == http.MethodHead {
			c.Status(code)
			return
		}

		body := gin.H{"status": status}
		if len(results) > 0 {
			body["checks"] = results
		}
		c.JSON(code, body)
	}
}

func runChecks(ctx context.Context, checks []Check) (map[string]string, bool) {
	if len(checks) == 0 {
		return nil, true
	}
	healthy := true
	results := make(map[string]string, len(checks))
	for _, chk := range checks {
		cctx, cancel := context.WithTimeout(ctx, CheckTimeout)
		err := chk.Ping(cctx)
		cancel()
		if err != nil {
			healthy = false
			results[chk.Name] = err.Error()
			continue
		}
		results[chk.Name] = "ok"
	}
	return results, healthy
}
