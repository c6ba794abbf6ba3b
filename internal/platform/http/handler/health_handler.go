// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// checkTimeout は依存サービス1件あたりの確認タイムアウトです。
const checkTimeout = 2 * time.Second

// Check は依存サービス（DB、Redisなど）の疎通確認です。
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Health は /healthz エンドポイントのハンドラーを返します。
// 登録された全Checkが成功すれば200、いずれかが失敗すれば503を返し、キャッシュを防止します。
func Health(checks ...Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 明示的にキャッシュを防止
		c.Header("Cache-Control", "no-store")

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for _, chk := range checks {
			ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
			err := chk.Ping(ctx)
			cancel()
			if err != nil {
				log.Warn().Err(err).Str("check", chk.Name).Msg("health check failed")
				results[chk.Name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			results[chk.Name] = "ok"
		}

		if c.Request.Method == http.MethodHead {
			c.Status(status)
			return
		}
		body := gin.H{"status": "ok", "checks": results}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		c.JSON(status, body)
	}
}
