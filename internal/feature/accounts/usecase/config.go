package usecase

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config はアカウント処理の設定です。
type Config struct {
	// ActivateUsersEmail が true の場合、登録ユーザーはメールのリンクで有効化するまでログインできません。
	ActivateUsersEmail bool `env:"ACTIVATE_USERS_EMAIL" envDefault:"false"`

	// BaseHost はメール内リンクの先頭に付くホストです（例: "https://blog.example.com"）。
	BaseHost string `env:"BASE_HOST" envDefault:"http://localhost:8080"`

	// SiteName はメールの件名と本文に表示されます。
	SiteName string `env:"SITE_NAME" envDefault:"My Blog"`

	SessionTTL         time.Duration `env:"SESSION_TTL" envDefault:"336h"`
	MaxSessionsPerUser int           `env:"MAX_SESSIONS_PER_USER" envDefault:"10"`
}

// LoadConfig は環境変数からアカウント設定を読み込みます。
func LoadConfig() (Config, error) {
	return env.ParseAs[Config]()
}
