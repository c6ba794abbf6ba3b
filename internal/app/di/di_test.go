package di

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	accounthandler "blog_backend/internal/feature/accounts/transport/handler"
	"blog_backend/internal/feature/accounts/usecase"
	platformdb "blog_backend/internal/platform/db"
	"blog_backend/internal/platform/session"
)

func setupInfra(t *testing.T, withRedis bool) *Infra {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, platformdb.AutoMigrate(db))

	infra := &Infra{DB: db}
	if withRedis {
		mr := miniredis.RunT(t)
		infra.Redis = redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	}
	return infra
}

func TestNewSessionRepository(t *testing.T) {
	withRedis := setupInfra(t, true)
	_, ok := NewSessionRepository(withRedis.Redis, withRedis.DB).(*session.SessionRedis)
	assert.True(t, ok, "Redis があれば Redis 実装を使う")

	withoutRedis := setupInfra(t, false)
	_, ok = NewSessionRepository(nil, withoutRedis.DB).(*session.SessionRedis)
	assert.False(t, ok, "Redis がなければ DB 実装にフォールバックする")
}

func TestNewAccounts_RegisterAndAuthenticate(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ACTIVATE_USERS_EMAIL", "false")

	for _, withRedis := range []bool{true, false} {
		name := "database sessions"
		if withRedis {
			name = "redis sessions"
		}
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			infra := setupInfra(t, withRedis)

			accounts, err := NewAccounts(infra, Config{}, nil, nil)
			require.NoError(t, err)
			require.NotNil(t, accounts.JWT)

			res, err := accounts.Account.Register(ctx, usecase.RegistrationForm{
				Username:  "alice",
				Password1: "password123",
				Password2: "password123",
			}, usecase.SessionMeta{UserAgent: "test"})
			require.NoError(t, err)
			require.NotNil(t, res.Login)
			assert.NotEmpty(t, res.Login.AccessToken)

			user, err := accounts.Account.Authenticate(ctx, res.Login.Session.ID)
			require.NoError(t, err)
			assert.Equal(t, "alice", user.Username)

			uid, sid, err := accounts.BearerVerifier().Verify(ctx, res.Login.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, user.ID, uid)
			assert.Equal(t, res.Login.Session.ID, sid)

			detail, err := accounts.Profile.Detail(ctx, user.ID, user.ID, "")
			require.NoError(t, err)
			assert.True(t, detail.IsOwner)
			assert.NotNil(t, detail.Profile)

			_, _, err = accounts.Account.DeleteExpiredTokens(ctx)
			require.NoError(t, err)
		})
	}
}

func TestNewAccounts_WithoutJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	accounts, err := NewAccounts(setupInfra(t, false), Config{}, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, accounts.JWT)
	assert.Nil(t, accounts.BearerVerifier())
}

// serve は1リクエストをエンジンに流し、レスポンスを返します。
func serve(engine http.Handler, method, path, body, bearer string, cookie *http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func sessionCookieOf(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == accounthandler.SessionCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

// newTestServer はDBセッションで動くサーバーを組み立て、aliceを登録します。
func newTestServer(t *testing.T) (engine http.Handler, userID uint, accessToken string, cookie *http.Cookie) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ACTIVATE_USERS_EMAIL", "false")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("SMTP_HOST", "")

	srv, err := NewServer(context.Background(), setupInfra(t, false), Config{})
	require.NoError(t, err)

	w := serve(srv, http.MethodPost, "/accounts/register/",
		`{"username":"alice","password1":"password123","password2":"password123"}`, "", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var reg struct {
		AccessToken string `json:"access_token"`
		User        struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))
	require.NotEmpty(t, reg.AccessToken)
	return srv, reg.User.ID, reg.AccessToken, sessionCookieOf(t, w)
}

func TestNewServer_PasswordChangeRevokesAccessTokens(t *testing.T) {
	srv, userID, token, cookie := newTestServer(t)
	editPath := fmt.Sprintf("/accounts/%d/update/", userID)

	w := serve(srv, http.MethodGet, editPath, "", token, nil)
	require.Equal(t, http.StatusOK, w.Code, "変更前はBearerで編集画面を開ける")

	w = serve(srv, http.MethodPost, "/accounts/password-change/",
		`{"old_password":"password123","password":"newpassword456","password_confirm":"newpassword456"}`, "", cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	fresh := sessionCookieOf(t, w)

	assert.Equal(t, http.StatusUnauthorized, serve(srv, http.MethodGet, editPath, "", token, nil).Code,
		"古いアクセストークンは失効する")
	assert.Equal(t, http.StatusUnauthorized, serve(srv, http.MethodGet, editPath, "", "", cookie).Code,
		"古いCookieは失効する")
	assert.Equal(t, http.StatusOK, serve(srv, http.MethodGet, editPath, "", "", fresh).Code,
		"新しいCookieは有効")
}

func TestNewServer_LogoutRevokesAccessToken(t *testing.T) {
	srv, userID, token, _ := newTestServer(t)
	detailPath := fmt.Sprintf("/accounts/%d/", userID)

	require.Equal(t, http.StatusOK, serve(srv, http.MethodGet, detailPath, "", token, nil).Code)

	w := serve(srv, http.MethodPost, "/accounts/logout/", "", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusUnauthorized, serve(srv, http.MethodGet, detailPath, "", token, nil).Code)
}
