package router

import (
	"os"

	"github.com/gin-gonic/gin"

	signalhandler "signal_backend/internal/feature/signals/transport/handler"
	healthhandler "signal_backend/internal/platform/http/handler"
	jwtmw "signal_backend/internal/platform/jwt"
	"signal_backend/internal/platform/metrics"
)

// NewRouter builds the HTTP surface: health, metrics and the engine entry point.
func NewRouter(engine *signalhandler.EngineHandler, checks ...healthhandler.Check) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// 認証不要
	// 導通確認用
	health := healthhandler.Health(checks...)
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)
	r.OPTIONS("/healthz", health)

	if os.Getenv("METRICS_ENABLED") != "false" {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	// エンジン: トークンがあれば主体を実行者として使う。
	// REQUIRE_AUTH=true の場合はトークン必須
	auth := jwtmw.OptionalAuth()
	if os.Getenv("REQUIRE_AUTH") == "true" {
		auth = jwtmw.AuthRequired()
	}
	r.POST("/engine", auth, engine.Handle)

	return r
}
