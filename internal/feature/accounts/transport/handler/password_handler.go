package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"blog_backend/internal/feature/accounts/domain/entity"
	"blog_backend/internal/feature/accounts/transport/http/dto"
	"blog_backend/internal/feature/accounts/usecase"
)

// PasswordUsecase はパスワード変更・リセットのユースケースを定義します。
type PasswordUsecase interface {
	ChangePassword(ctx context.Context, userID uint, form usecase.ChangePasswordForm,
		meta usecase.SessionMeta) (*entity.Session, error)
	RequestPasswordReset(ctx context.Context, form usecase.PasswordResetRequestForm) error
	CheckResetToken(ctx context.Context, token string) (*entity.User, error)
	ResetPassword(ctx context.Context, token string, form usecase.SetPasswordForm) (*entity.User, error)
}

// PasswordHandler はパスワード変更・リセットのHTTPリクエストを処理します。
type PasswordHandler struct {
	passwords PasswordUsecase
	cookies   CookieConfig
}

// NewPasswordHandler はPasswordHandlerの新しいインスタンスを生成します。
func NewPasswordHandler(passwords PasswordUsecase, cookies CookieConfig) *PasswordHandler {
	return &PasswordHandler{passwords: passwords, cookies: cookies}
}

// ChangeForm はパスワード変更画面の表示要求に応答します（ログイン必須）。
func (h *PasswordHandler) ChangeForm(c *gin.Context) {
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "ok"})
}

// Change は旧パスワードを確認して新しいパスワードを保存します。
// 他のセッションはすべて失効し、このリクエストには新しいセッションCookieを発行します。
func (h *PasswordHandler) Change(c *gin.Context) {
	userID, _ := currentUserID(c)
	var req dto.ChangePasswordReq
	if !bind(c, &req) {
		return
	}

	s, err := h.passwords.ChangePassword(c.Request.Context(), userID, usecase.ChangePasswordForm{
		OldPassword: req.OldPassword,
		SetPasswordForm: usecase.SetPasswordForm{
			Password:        req.Password,
			PasswordConfirm: req.PasswordConfirm,
		},
	}, sessionMeta(c))
	if err != nil {
		log.Warn().Err(err).Uint("user_id", userID).Str("remote_addr", c.ClientIP()).Msg("password change failed")
		writeError(c, err)
		return
	}

	h.cookies.set(c, s)
	log.Info().Uint("user_id", userID).Msg("password changed")
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "ok", Redirect: DetailPath(userID)})
}

// ResetRequestForm はリセット要求画面の表示要求に応答します。
func (h *PasswordHandler) ResetRequestForm(c *gin.Context) {
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "ok"})
}

// ResetRequest は登録済みのメールアドレスにリセットリンクを送信します。
// 未登録のアドレスは400（"no user is registered with this email"）です。
func (h *PasswordHandler) ResetRequest(c *gin.Context) {
	var req dto.PasswordResetReq
	if !bind(c, &req) {
		return
	}
	if err := h.passwords.RequestPasswordReset(c.Request.Context(), usecase.PasswordResetRequestForm{Email: req.Email}); err != nil {
		log.Warn().Err(err).Str("remote_addr", c.ClientIP()).Msg("password reset request failed")
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "password reset email sent", Redirect: indexPath})
}

// ResetForm はリセットリンクが有効かを確認します。存在しない・期限切れは404です。
func (h *PasswordHandler) ResetForm(c *gin.Context) {
	user, err := h.passwords.CheckResetToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ResetTokenResponse{Username: user.Username})
}

// Reset はリセットリンクで新しいパスワードを設定し、ログイン画面へ誘導します。
// 入力に誤りがある場合、トークンは消費されません。
func (h *PasswordHandler) Reset(c *gin.Context) {
	var req dto.SetPasswordReq
	if !bind(c, &req) {
		return
	}
	user, err := h.passwords.ResetPassword(c.Request.Context(), c.Param("token"), usecase.SetPasswordForm{
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	log.Info().Uint("user_id", user.ID).Msg("password reset")
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "ok", Redirect: LoginPath})
}
