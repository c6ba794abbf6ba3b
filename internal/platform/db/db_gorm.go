// Package db はPostgreSQLへのGORM接続とマイグレーションを提供します。
package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	accountadapters "blog_backend/internal/feature/accounts/adapters"
	accountentity "blog_backend/internal/feature/accounts/domain/entity"
	articleentity "blog_backend/internal/feature/articles/domain/entity"
)

// retryInterval は接続リトライの間隔です。
var retryInterval = 3 * time.Second

// Config はデータベース接続設定です。
type Config struct {
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME" envDefault:"blog"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	// InstanceName が設定されている場合はCloud SQLのUnixソケットで接続します。
	InstanceName string `env:"INSTANCE_CONNECTION_NAME"`

	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"60s"`
	RunMigrations  bool          `env:"RUN_MIGRATIONS" envDefault:"false"`
}

// Opener はDSNからgorm.DBを開く関数です。テストで差し替えられます。
type Opener func(dsn string) (*gorm.DB, error)

// LoadConfigFromEnv は環境変数からデータベース設定を読み込みます。
func LoadConfigFromEnv() (Config, error) {
	return env.ParseAs[Config]()
}

// BuildDSN は設定からPostgreSQLのDSN文字列を生成します。
// InstanceName が設定されている場合はHost/Portより優先されます。
func BuildDSN(cfg Config) string {
	host, port := cfg.Host, cfg.Port
	if cfg.InstanceName != "" {
		host, port = "/cloudsql/"+cfg.InstanceName, ""
	}

	parts := []string{
		"host=" + host,
		"user=" + cfg.User,
		"password=" + cfg.Password,
		"dbname=" + cfg.Name,
	}
	if port != "" {
		parts = append(parts, "port="+port)
	}
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	parts = append(parts, "sslmode="+sslmode, "TimeZone=UTC")
	return strings.Join(parts, " ")
}

// ConnectWithRetry は timeout までリトライしながらDBに接続します。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		log.Warn().Err(err).Msg("DB connect failed, retrying...")
		time.Sleep(retryInterval)
	}
}

// PostgresOpener はPostgreSQLドライバで接続を開きます。
// 一意制約違反などは gorm.ErrDuplicatedKey に変換されます。
func PostgresOpener(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
}

// OpenDB は設定に従って接続し、RunMigrations が有効ならマイグレーションを実行します。
func OpenDB(cfg Config) (*gorm.DB, error) {
	db, err := ConnectWithRetry(BuildDSN(cfg), cfg.ConnectTimeout, PostgresOpener)
	if err != nil {
		return nil, err
	}
	if cfg.RunMigrations {
		if err := AutoMigrate(db); err != nil {
			return nil, err
		}
		log.Info().Msg("database migrated")
	}
	return db, nil
}

// AutoMigrate はアプリケーションの全テーブルを作成・更新します。
func AutoMigrate(db *gorm.DB) error {
	// マイグレーション（User, Profile, AuthToken, Session, Article）
	if err := db.AutoMigrate(
		&accountentity.User{},
		&accountentity.Profile{},
		&accountentity.AuthToken{},
		&accountadapters.SessionModel{},
		&articleentity.Article{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
