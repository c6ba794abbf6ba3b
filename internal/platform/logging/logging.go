// Package logging はzerologのグローバルロガー設定とginのリクエストログを提供します。
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config はログ出力の設定です。
type Config struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
	// Format は "json" または "console"（開発用の人間向け出力）です。
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// LoadConfig は環境変数からログ設定を読み込みます。
func LoadConfig() (Config, error) {
	return env.ParseAs[Config]()
}

// Setup はグローバルロガーを設定します。不明なレベルは info として扱います。
func Setup(cfg Config) {
	setup(cfg, os.Stdout)
}

func setup(cfg Config, out io.Writer) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// RequestLogger はリクエストごとに1行のアクセスログを出力するginミドルウェアです。
// 5xx は error、4xx は warn、それ以外は info で記録します。
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		var evt *zerolog.Event
		switch {
		case status >= 500:
			evt = log.Error()
		case status >= 400:
			evt = log.Warn()
		default:
			evt = log.Info()
		}
		if len(c.Errors) > 0 {
			evt = evt.Str("error", c.Errors.String())
		}
		if uid, ok := c.Get("userID"); ok {
			evt = evt.Interface("user_id", uid)
		}
		evt.Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("remote_addr", c.ClientIP()).
			Msg("request")
	}
}
