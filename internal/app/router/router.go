// Package router はHTTPルーティングを定義します。
package router

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	accounthandler "blog_backend/internal/feature/accounts/transport/handler"
	"blog_backend/internal/platform/logging"
	"blog_backend/internal/platform/validation"
)

// Config はルーターの設定です。
type Config struct {
	// AllowedOrigins が空の場合、CORSヘッダーは付与しません。
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// LoadConfig は環境変数からルーター設定を読み込みます。
func LoadConfig() (Config, error) {
	return env.ParseAs[Config]()
}

// Handlers はルーターに登録するハンドラーとミドルウェアです。
type Handlers struct {
	Account  *accounthandler.AccountHandler
	Profile  *accounthandler.ProfileHandler
	Password *accounthandler.PasswordHandler
	Media    *accounthandler.MediaHandler
	Health   gin.HandlerFunc

	// Bearer はAuthorizationヘッダーのJWTで、Session はCookieでユーザーを認証します。
	Bearer  gin.HandlerFunc
	Session gin.HandlerFunc
}

// NewRouter はルーティングとミドルウェアを設定したginエンジンを返します。
// 検証メッセージの翻訳はここで、リクエストを受け付ける前に登録します。
func NewRouter(cfg Config, h Handlers) *gin.Engine {
	validation.Register()

	r := gin.New()
	r.Use(gin.Recovery(), logging.RequestLogger())

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 認証不要
	// 導通確認用
	r.GET("/healthz", h.Health)
	r.HEAD("/healthz", h.Health)
	r.GET("/media/*key", h.Media.Serve)

	accounts := r.Group("/accounts")
	// Bearer → Cookie の順に認証を試みる。どちらもなければ匿名として続行
	accounts.Use(h.Bearer, h.Session)
	{
		accounts.GET("/login/", h.Account.LoginForm)
		accounts.POST("/login/", h.Account.Login)
		accounts.GET("/logout/", h.Account.Logout)
		accounts.POST("/logout/", h.Account.Logout)
		accounts.POST("/register/", h.Account.Register)
		accounts.GET("/activate/:token/", h.Account.Activate)

		accounts.GET("/password-reset/", h.Password.ResetRequestForm)
		accounts.POST("/password-reset/", h.Password.ResetRequest)
		accounts.GET("/password-reset/:token/", h.Password.ResetForm)
		accounts.POST("/password-reset/:token/", h.Password.Reset)
	}

	// 認証必須のルート
	authed := accounts.Group("/")
	authed.Use(accounthandler.LoginRequired())
	{
		authed.GET("/password-change/", h.Password.ChangeForm)
		authed.POST("/password-change/", h.Password.Change)
		authed.GET("/:id/", h.Profile.Detail)
		authed.GET("/:id/update/", h.Profile.Edit)
		authed.POST("/:id/update/", h.Profile.Update)
	}

	return r
}
