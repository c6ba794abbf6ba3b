package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"blog_backend/internal/feature/accounts/transport/http/dto"
	"blog_backend/internal/feature/accounts/usecase"
)

// AccountUsecase は登録・有効化・ログインのユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AccountUsecase interface {
	Register(ctx context.Context, form usecase.RegistrationForm, meta usecase.SessionMeta) (*usecase.RegisterResult, error)
	Activate(ctx context.Context, token string, meta usecase.SessionMeta) (*usecase.LoginResult, error)
	Login(ctx context.Context, username, password string, meta usecase.SessionMeta) (*usecase.LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
}

// AccountHandler は登録・有効化・ログイン・ログアウトのHTTPリクエストを処理します。
type AccountHandler struct {
	accounts AccountUsecase
	cookies  CookieConfig
}

// NewAccountHandler はAccountHandlerの新しいインスタンスを生成します。
func NewAccountHandler(accounts AccountUsecase, cookies CookieConfig) *AccountHandler {
	return &AccountHandler{accounts: accounts, cookies: cookies}
}

// Register はユーザー登録を処理します。
// - 検証エラー時は400とフィールドごとのメッセージ
// - メール有効化が有効な場合は201、ログインはしない
// - それ以外は201でセッションCookieを発行し、next（ローカルパスのみ）へ誘導
func (h *AccountHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if !bind(c, &req) {
		return
	}
	next := req.Next
	if next == "" {
		next = c.Query("next")
	}

	res, err := h.accounts.Register(c.Request.Context(), usecase.RegistrationForm{
		Username:  req.Username,
		Password1: req.Password1,
		Password2: req.Password2,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	}, sessionMeta(c))
	if err != nil {
		log.Warn().Err(err).Str("username", req.Username).Str("remote_addr", c.ClientIP()).Msg("registration failed")
		writeError(c, err)
		return
	}

	if res.ActivationRequired {
		log.Info().Uint("user_id", res.User.ID).Msg("user registered, activation pending")
		c.JSON(http.StatusCreated, dto.RegisterResponse{
			Message:            "activation email sent",
			Redirect:           indexPath,
			ActivationRequired: true,
			User:               dto.NewUserResponse(res.User),
		})
		return
	}

	h.cookies.set(c, res.Login.Session)
	log.Info().Uint("user_id", res.User.ID).Str("remote_addr", c.ClientIP()).Msg("user registered")
	c.JSON(http.StatusCreated, dto.RegisterResponse{
		Message:     "ok",
		Redirect:    safeRedirect(next, indexPath),
		AccessToken: res.Login.AccessToken,
		User:        dto.NewUserResponse(res.User),
	})
}

// Activate はメールのリンクからアカウントを有効化します。
// 結果にかかわらずトップページへ 303 See Other でリダイレクトします。
func (h *AccountHandler) Activate(c *gin.Context) {
	login, err := h.accounts.Activate(c.Request.Context(), c.Param("token"), sessionMeta(c))
	switch {
	case errors.Is(err, usecase.ErrTokenNotFound), errors.Is(err, usecase.ErrTokenExpired):
		log.Info().Err(err).Str("remote_addr", c.ClientIP()).Msg("activation link rejected")
	case err != nil:
		writeError(c, err)
		return
	default:
		h.cookies.set(c, login.Session)
		log.Info().Uint("user_id", login.User.ID).Msg("user activated")
	}
	c.Redirect(http.StatusSeeOther, indexPath)
}

// LoginForm はログイン画面の表示要求に応答します。
func (h *AccountHandler) LoginForm(c *gin.Context) {
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "ok"})
}

// Login はユーザー名とパスワードで認証し、セッションCookieとJWTを発行します。
// 認証失敗の理由（存在しない、パスワード違い、未有効化）は区別せず401を返します。
func (h *AccountHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if !bind(c, &req) {
		return
	}
	res, err := h.accounts.Login(c.Request.Context(), req.Username, req.Password, sessionMeta(c))
	if err != nil {
		// ユーザー列挙攻撃を防止するため、実際のエラーを公開しない
		log.Warn().Err(err).Str("username", req.Username).Str("remote_addr", c.ClientIP()).Msg("login failed")
		writeError(c, err)
		return
	}

	h.cookies.set(c, res.Session)
	log.Info().Uint("user_id", res.User.ID).Str("remote_addr", c.ClientIP()).Msg("user login successful")
	c.JSON(http.StatusOK, dto.LoginResponse{
		Message:     "ok",
		Redirect:    safeRedirect(c.Query("next"), indexPath),
		AccessToken: res.AccessToken,
		User:        dto.NewUserResponse(res.User),
	})
}

// Logout は現在のセッションを失効させ、Cookieを削除します。未ログインでも成功します。
func (h *AccountHandler) Logout(c *gin.Context) {
	sid := c.GetString(ContextSessionID)
	if sid == "" {
		sid, _ = c.Cookie(SessionCookieName)
	}
	if err := h.accounts.Logout(c.Request.Context(), sid); err != nil {
		writeError(c, err)
		return
	}
	h.cookies.clear(c)
	if uid, ok := currentUserID(c); ok {
		log.Info().Uint("user_id", uid).Msg("user logged out")
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "ok", Redirect: indexPath})
}
