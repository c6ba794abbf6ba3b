// Package redis はRedisクライアントの生成を提供します。
package redis

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrNotConfigured はREDIS_HOSTが設定されていない場合に返されます。
var ErrNotConfigured = errors.New("redis is not configured")

// Config はRedis接続設定です。
type Config struct {
	Host        string        `env:"REDIS_HOST"`
	Port        string        `env:"REDIS_PORT" envDefault:"6379"`
	Password    string        `env:"REDIS_PASSWORD"`
	DB          int           `env:"REDIS_DB" envDefault:"0"`
	PingTimeout time.Duration `env:"REDIS_PING_TIMEOUT" envDefault:"3s"`
}

// Addr は "host:port" 形式のアドレスを返します。
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// LoadConfig は環境変数からRedis設定を読み込みます。
func LoadConfig() (Config, error) {
	return env.ParseAs[Config]()
}

// NewRedisClient は接続確認済みのRedisクライアントを生成します。
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.Host == "" {
		return nil, ErrNotConfigured
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 接続確認
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Error().Err(err).Str("address", cfg.Addr()).Msg("Redis connection failed")
		_ = rdb.Close()
		return nil, err
	}

	log.Info().Str("address", cfg.Addr()).Msg("Redis connection successful")
	return rdb, nil
}
