package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	prev := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	setup(Config{Level: level, Format: "json"}, &buf)
	return &buf
}

func TestSetup_Level(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			captureLogs(t, tt.in)
			assert.Equal(t, tt.want, zerolog.GlobalLevel())
		})
	}
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{"成功", http.StatusOK, "info"},
		{"クライアントエラー", http.StatusNotFound, "warn"},
		{"サーバーエラー", http.StatusInternalServerError, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t, "info")

			r := gin.New()
			r.Use(RequestLogger())
			r.GET("/accounts/:id/", func(c *gin.Context) {
				c.Set("userID", uint(7))
				c.Status(tt.status)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/accounts/7/", nil))

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, "/accounts/7/", entry["path"])
			assert.Equal(t, float64(tt.status), entry["status"])
			assert.Equal(t, float64(7), entry["user_id"])
			assert.Equal(t, "request", entry["message"])
		})
	}
}
