// Package handler はaccountsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"blog_backend/internal/feature/accounts/domain/entity"
	"blog_backend/internal/feature/accounts/transport/http/dto"
	"blog_backend/internal/feature/accounts/usecase"
	jwtmw "blog_backend/internal/platform/jwt"
	"blog_backend/internal/platform/validation"
)

const (
	// SessionCookieName はセッションIDを保持するCookie名です。
	SessionCookieName = "sessionid"

	// ContextSessionID はリクエストを認証したログインセッションのIDを保持するginコンテキストのキーです。
	ContextSessionID = jwtmw.ContextSessionID

	// LoginPath はログインページのパスです。
	LoginPath = "/accounts/login/"

	indexPath = "/"
)

// CookieConfig はセッションCookieの属性です。
type CookieConfig struct {
	Secure bool   `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	Domain string `env:"SESSION_COOKIE_DOMAIN"`
}

// LoadCookieConfig は環境変数からCookie設定を読み込みます。
func LoadCookieConfig() (CookieConfig, error) {
	return env.ParseAs[CookieConfig]()
}

func (cc CookieConfig) set(c *gin.Context, s *entity.Session) {
	maxAge := int(s.ExpiresAt.Sub(s.CreatedAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, s.ID, maxAge, "/", cc.Domain, cc.Secure, true)
}

func (cc CookieConfig) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", cc.Domain, cc.Secure, true)
}

// sessionMeta はクライアント情報をセッションに記録するために取り出します。
func sessionMeta(c *gin.Context) usecase.SessionMeta {
	return usecase.SessionMeta{UserAgent: c.Request.UserAgent(), IPAddress: c.ClientIP()}
}

// currentUserID は認証済みユーザーのIDを返します。未認証の場合は ok=false です。
func currentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(jwtmw.ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

// pathUserID は :id パラメータを解釈します。
func pathUserID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// safeRedirect は同一サイト内のパス（"/x"、ただし "//x" や "/\x" は除く）だけを許可し、それ以外は fallback を返します。
func safeRedirect(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") {
		return fallback
	}
	if strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}

// bind はリクエストをバインドし、失敗した場合は400を書き込んで false を返します。
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBind(req); err != nil {
		log.Warn().Err(err).Str("path", c.FullPath()).Str("remote_addr", c.ClientIP()).Msg("request binding failed")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request", Fields: validation.FieldErrors(err)})
		return false
	}
	return true
}

// writeError はユースケースのエラーをHTTPステータスに変換して書き込みます。
func writeError(c *gin.Context, err error) {
	var (
		fieldErrs usecase.FieldErrors
		formErrs  *usecase.FormErrors
	)
	switch {
	case errors.As(err, &fieldErrs):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request", Fields: fieldErrs})
	case errors.As(err, &formErrs):
		fields := make(map[string]string, len(formErrs.Account)+len(formErrs.Profile))
		for k, v := range formErrs.Account {
			fields[k] = v
		}
		for k, v := range formErrs.Profile {
			fields[k] = v
		}
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request", Fields: fields})
	case errors.Is(err, usecase.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid username or password"})
	case errors.Is(err, usecase.ErrSessionNotFound),
		errors.Is(err, usecase.ErrSessionRevoked),
		errors.Is(err, usecase.ErrSessionExpired),
		errors.Is(err, usecase.ErrInactiveUser):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "authentication required"})
	case errors.Is(err, usecase.ErrForbidden):
		c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: "access denied"})
	case errors.Is(err, usecase.ErrUserNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "user not found"})
	case errors.Is(err, usecase.ErrTokenNotFound), errors.Is(err, usecase.ErrTokenExpired):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "the link does not exist or has expired"})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Str("remote_addr", c.ClientIP()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
}
