package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accounthandler "blog_backend/internal/feature/accounts/transport/handler"
	platformhandler "blog_backend/internal/platform/http/handler"
)

func noop(c *gin.Context) { c.Next() }

func newTestRouter(cfg Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cookies := accounthandler.CookieConfig{}
	return NewRouter(cfg, Handlers{
		Account:  accounthandler.NewAccountHandler(nil, cookies),
		Profile:  accounthandler.NewProfileHandler(nil),
		Password: accounthandler.NewPasswordHandler(nil, cookies),
		Media:    accounthandler.NewMediaHandler(nil),
		Health:   platformhandler.Health(),
		Bearer:   noop,
		Session:  noop,
	})
}

func TestRouter_Routes(t *testing.T) {
	r := newTestRouter(Config{})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"health", http.MethodGet, "/healthz", "", http.StatusOK},
		{"media without storage", http.MethodGet, "/media/user_pics/1/a.png", "", http.StatusNotFound},
		{"detail requires login", http.MethodGet, "/accounts/1/", "", http.StatusUnauthorized},
		{"edit requires login", http.MethodPost, "/accounts/1/update/", "", http.StatusUnauthorized},
		{"password change requires login", http.MethodGet, "/accounts/password-change/", "", http.StatusUnauthorized},
		{"login form is public", http.MethodGet, "/accounts/login/", "", http.StatusOK},
		{"login validates body", http.MethodPost, "/accounts/login/", `{}`, http.StatusBadRequest},
		{"reset request form is public", http.MethodGet, "/accounts/password-reset/", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

// TestRouter_ValidationFieldNames はルーター経由の検証エラーがJSONのフィールド名で返ることを検証します。
func TestRouter_ValidationFieldNames(t *testing.T) {
	r := newTestRouter(Config{})

	req := httptest.NewRequest(http.MethodPost, "/accounts/login/", strings.NewReader(`{"password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "username is a required field", body.Fields["username"])
	assert.NotContains(t, body.Fields, "Username")
}

func TestRouter_CORS(t *testing.T) {
	r := newTestRouter(Config{AllowedOrigins: []string{"https://blog.example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/accounts/login/", nil)
	req.Header.Set("Origin", "https://blog.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://blog.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRouter_NoCORSByDefault(t *testing.T) {
	r := newTestRouter(Config{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://blog.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
