package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"blog_backend/internal/feature/accounts/domain/entity"
	"blog_backend/internal/feature/accounts/transport/http/dto"
	jwtmw "blog_backend/internal/platform/jwt"
)

// SessionAuthenticator はセッションCookieの値をユーザーに解決します。
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, sessionID string) (*entity.User, error)
}

// SessionAuth はセッションCookieでユーザーを認証するミドルウェアです。
// Bearerトークンで既に認証済みのリクエストはそのまま通します。
// 無効なCookieは削除し、匿名ユーザーとして続行します。
func SessionAuth(auth SessionAuthenticator, cookies CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(jwtmw.ContextUserID); ok {
			c.Next()
			return
		}
		sid, err := c.Cookie(SessionCookieName)
		if err != nil || sid == "" {
			c.Next()
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), sid)
		if err != nil {
			log.Debug().Err(err).Str("remote_addr", c.ClientIP()).Msg("session rejected")
			cookies.clear(c)
			c.Next()
			return
		}
		c.Set(jwtmw.ContextUserID, user.ID)
		c.Set(ContextSessionID, sid)
		c.Next()
	}
}

// LoginRequired は未認証のリクエストを401で拒否します。
func LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := currentUserID(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "authentication required"})
			return
		}
		c.Next()
	}
}
