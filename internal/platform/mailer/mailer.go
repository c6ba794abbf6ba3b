// Package mailer はSMTP経由のメール送信を提供します。
package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"blog_backend/internal/shared/ratelimiter"
)

// ErrNotConfigured はSMTP_HOSTが設定されていない場合に返されます。
var ErrNotConfigured = errors.New("smtp is not configured")

// Config はSMTPとメール送信頻度の設定です。
type Config struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`

	// RateLimit は RateInterval あたりの最大送信数です。0以下で無制限。
	RateLimit    int           `env:"MAIL_RATE_LIMIT" envDefault:"30"`
	RateInterval time.Duration `env:"MAIL_RATE_INTERVAL" envDefault:"1m"`
}

// LoadConfig は環境変数からメール設定を読み込みます。
func LoadConfig() (Config, error) {
	return env.ParseAs[Config]()
}

func (c Config) validate() error {
	if c.Host == "" {
		return ErrNotConfigured
	}
	if c.Port == 0 {
		return fmt.Errorf("missing SMTP_PORT environment variable")
	}
	if c.From == "" {
		return fmt.Errorf("missing SMTP_FROM environment variable")
	}
	return nil
}

// sender は gomail.Dialer のうち送信に使う部分です（テストで差し替え可能）。
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer は1通ずつSMTPで送信します。送信前にレートリミッタで待機します。
type Mailer struct {
	from    string
	dialer  sender
	limiter ratelimiter.Limiter
}

// NewMailer は設定からMailerを生成します。
func NewMailer(cfg Config) (*Mailer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return newMailer(cfg.From, dialer, ratelimiter.NewRateLimiter(cfg.RateLimit, cfg.RateInterval)), nil
}

func newMailer(from string, dialer sender, limiter ratelimiter.Limiter) *Mailer {
	return &Mailer{from: from, dialer: dialer, limiter: limiter}
}

// SendMail はプレーンテキスト本文とHTML本文を持つメールを送信します。
// htmlBody が空の場合はテキストのみのメールになります。
func (m *Mailer) SendMail(ctx context.Context, to, subject, body, htmlBody string) error {
	if to == "" {
		return fmt.Errorf("no recipients specified")
	}
	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("mail rate limit wait: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	if htmlBody != "" {
		msg.AddAlternative("text/html", htmlBody)
	}

	start := time.Now()
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	log.Debug().Str("to", to).Dur("elapsed", time.Since(start)).Msg("mail delivered")
	return nil
}
