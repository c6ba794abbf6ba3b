package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog_backend/internal/feature/accounts/domain/entity"
	"blog_backend/internal/feature/accounts/usecase"
)

func newPasswordRouter(uc PasswordUsecase, userID uint) *gin.Engine {
	h := NewPasswordHandler(uc, CookieConfig{})
	r := gin.New()
	r.Use(asUser(userID))
	r.GET("/accounts/password-change/", LoginRequired(), h.ChangeForm)
	r.POST("/accounts/password-change/", LoginRequired(), h.Change)
	r.GET("/accounts/password-reset/", h.ResetRequestForm)
	r.POST("/accounts/password-reset/", h.ResetRequest)
	r.GET("/accounts/password-reset/:token/", h.ResetForm)
	r.POST("/accounts/password-reset/:token/", h.Reset)
	return r
}

func TestPasswordHandler_Change(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		userID     uint
		err        error
		wantStatus int
	}{
		{"success: new session cookie", 2, nil, http.StatusOK},
		{"old password incorrect", 2, usecase.FieldErrors{"old_password": usecase.MsgOldPasswordIncorrect}, http.StatusBadRequest},
		{"anonymous", 0, nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got usecase.ChangePasswordForm
			uc := &mockPasswordUsecase{ChangePasswordFunc: func(ctx context.Context, userID uint, form usecase.ChangePasswordForm, meta usecase.SessionMeta) (*entity.Session, error) {
				got = form
				if tt.err != nil {
					return nil, tt.err
				}
				return newSession(userID), nil
			}}

			w := httptest.NewRecorder()
			newPasswordRouter(uc, tt.userID).ServeHTTP(w, jsonRequest(t, http.MethodPost, "/accounts/password-change/",
				gin.H{"old_password": "old-pass", "password": "new-password", "password_confirm": "new-password"}))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "old-pass", got.OldPassword)
				assert.Equal(t, "new-password", got.Password)
				assert.NotNil(t, sessionCookie(w))
				assert.Equal(t, "/accounts/2/", decode(t, w)["redirect"])
			}
		})
	}
}

func TestPasswordHandler_ResetRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	uc := &mockPasswordUsecase{RequestPasswordResetFunc: func(ctx context.Context, form usecase.PasswordResetRequestForm) error {
		if form.Email != "alice@example.com" {
			return usecase.FieldErrors{"email": usecase.MsgNoSuchUser}
		}
		return nil
	}}
	r := newPasswordRouter(uc, 0)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/accounts/password-reset/", gin.H{"email": "alice@example.com"}))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(t, http.MethodPost, "/accounts/password-reset/", gin.H{"email": "nobody@example.com"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode(t, w)["fields"].(map[string]any)
	assert.Equal(t, usecase.MsgNoSuchUser, fields["email"])
}

func TestPasswordHandler_ResetForm(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"live token", nil, http.StatusOK},
		{"missing token", usecase.ErrTokenNotFound, http.StatusNotFound},
		{"expired token", usecase.ErrTokenExpired, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockPasswordUsecase{CheckResetTokenFunc: func(ctx context.Context, token string) (*entity.User, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return &entity.User{ID: 1, Username: "alice"}, nil
			}}
			w := httptest.NewRecorder()
			newPasswordRouter(uc, 0).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/accounts/password-reset/tok/", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "alice", decode(t, w)["username"])
			}
		})
	}
}

func TestPasswordHandler_Reset(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"success redirects to login", nil, http.StatusOK},
		{"mismatch", usecase.FieldErrors{"password_confirm": usecase.MsgPasswordMismatch}, http.StatusBadRequest},
		{"expired", usecase.ErrTokenExpired, http.StatusNotFound},
		{"db failure", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotToken string
			uc := &mockPasswordUsecase{ResetPasswordFunc: func(ctx context.Context, token string, form usecase.SetPasswordForm) (*entity.User, error) {
				gotToken = token
				if tt.err != nil {
					return nil, tt.err
				}
				return &entity.User{ID: 1}, nil
			}}
			w := httptest.NewRecorder()
			newPasswordRouter(uc, 0).ServeHTTP(w, jsonRequest(t, http.MethodPost, "/accounts/password-reset/tok-1/",
				gin.H{"password": "new-password", "password_confirm": "new-password"}))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "tok-1", gotToken)
			body := decode(t, w)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, LoginPath, body["redirect"])
			} else {
				require.Contains(t, body, "error")
			}
		})
	}
}
