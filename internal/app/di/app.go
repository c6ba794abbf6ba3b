package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"blog_backend/internal/app/router"
	accountadapters "blog_backend/internal/feature/accounts/adapters"
	accounthandler "blog_backend/internal/feature/accounts/transport/handler"
	"blog_backend/internal/feature/accounts/usecase"
	platformdb "blog_backend/internal/platform/db"
	platformhandler "blog_backend/internal/platform/http/handler"
	jwtmw "blog_backend/internal/platform/jwt"
	platformredis "blog_backend/internal/platform/redis"
)

// Config holds process-level settings of the server.
type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	ArticleCacheTTL time.Duration `env:"ARTICLE_CACHE_TTL" envDefault:"1m"`
}

// Infra holds the shared connections. Redis is nil when unavailable.
type Infra struct {
	DB    *gorm.DB
	Redis *redisv9.Client
}

// NewInfra connects to the database and, when configured, Redis.
func NewInfra(ctx context.Context) (*Infra, error) {
	dbCfg, err := platformdb.LoadConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}
	db, err := platformdb.OpenDB(dbCfg)
	if err != nil {
		return nil, err
	}

	redisCfg, err := platformredis.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load redis config: %w", err)
	}
	rdb, err := platformredis.NewRedisClient(ctx, redisCfg)
	switch {
	case errors.Is(err, platformredis.ErrNotConfigured):
		log.Warn().Msg("Redis is not configured. Running without cache; sessions are stored in the database.")
	case err != nil:
		log.Warn().Err(err).Msg("Redis unavailable. Running without cache; sessions are stored in the database.")
	}
	return &Infra{DB: db, Redis: rdb}, nil
}

// Close releases the connections.
func (i *Infra) Close() {
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Redis client")
		}
	}
	if sqlDB, err := i.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}
}

// AccountService is what the server and the cleanup job use of the account usecase.
type AccountService interface {
	accounthandler.AccountUsecase
	accounthandler.SessionAuthenticator
	DeleteExpiredTokens(ctx context.Context) (tokens int64, sessions int64, err error)
}

// Accounts bundles the account usecases.
type Accounts struct {
	Config   usecase.Config
	Account  AccountService
	Profile  accounthandler.ProfileUsecase
	Password accounthandler.PasswordUsecase
	JWT      *jwtmw.Generator
}

// NewAccounts wires repositories, mailer, storage and JWT into the account usecases.
// avatars may be nil.
func NewAccounts(infra *Infra, cfg Config, mailer usecase.Mailer, avatars usecase.AvatarStorage) (*Accounts, error) {
	accCfg, err := usecase.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts config: %w", err)
	}
	jwtCfg, err := jwtmw.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load jwt config: %w", err)
	}
	if jwtCfg.Secret == "" {
		// JWT_SECRETチェック（開発中の注意喚起）
		log.Warn().Msg("JWT_SECRET is not set. API access tokens are disabled.")
	}

	users := accountadapters.NewUserRepository(infra.DB)
	profiles := accountadapters.NewProfileRepository(infra.DB)
	tokens := usecase.NewTokenStore(accountadapters.NewTokenRepository(infra.DB))
	sessions := NewSessionRepository(infra.Redis, infra.DB)
	articles := NewArticleRepository(infra.DB, infra.Redis, cfg.ArticleCacheTTL)

	a := &Accounts{Config: accCfg}
	var gen usecase.JWTGenerator
	if jwtCfg.Secret != "" {
		a.JWT = jwtmw.NewGenerator(jwtCfg.Secret, jwtCfg.TTL)
		gen = a.JWT
	}
	a.Account = usecase.NewAccountUsecase(accCfg, users, profiles, tokens, sessions, mailer, gen)
	a.Profile = usecase.NewProfileUsecase(users, profiles, articles, avatars)
	a.Password = usecase.NewPasswordUsecase(accCfg, users, tokens, sessions, mailer)
	return a, nil
}

// BearerVerifier returns the access token verifier, or nil when JWT is disabled.
// トークンはjtiのセッションが生きている間だけ有効です。
func (a *Accounts) BearerVerifier() jwtmw.Verifier {
	if a.JWT == nil {
		return nil
	}
	return jwtmw.NewSessionVerifier(a.JWT, func(ctx context.Context, sessionID string) (uint, error) {
		user, err := a.Account.Authenticate(ctx, sessionID)
		if err != nil {
			return 0, err
		}
		return user.ID, nil
	})
}

// NewServer builds the whole HTTP application.
func NewServer(ctx context.Context, infra *Infra, cfg Config) (*gin.Engine, error) {
	m, err := NewMailer()
	if err != nil {
		return nil, fmt.Errorf("failed to create mailer: %w", err)
	}
	store, err := NewObjectStorage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open object storage: %w", err)
	}

	// nil ポインタをインターフェースに入れないよう明示的に分岐
	var (
		avatars usecase.AvatarStorage
		objects accounthandler.ObjectReader
	)
	if store != nil {
		avatars, objects = store, store
	}

	accounts, err := NewAccounts(infra, cfg, m, avatars)
	if err != nil {
		return nil, err
	}
	cookies, err := accounthandler.LoadCookieConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load cookie config: %w", err)
	}
	routerCfg, err := router.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load router config: %w", err)
	}

	verifier := accounts.BearerVerifier()

	checks := []platformhandler.Check{{
		Name: "database",
		Ping: func(ctx context.Context) error {
			sqlDB, err := infra.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if infra.Redis != nil {
		checks = append(checks, platformhandler.Check{
			Name: "redis",
			Ping: func(ctx context.Context) error { return infra.Redis.Ping(ctx).Err() },
		})
	}

	return router.NewRouter(routerCfg, router.Handlers{
		Account:  accounthandler.NewAccountHandler(accounts.Account, cookies),
		Profile:  accounthandler.NewProfileHandler(accounts.Profile),
		Password: accounthandler.NewPasswordHandler(accounts.Password, cookies),
		Media:    accounthandler.NewMediaHandler(objects),
		Health:   platformhandler.Health(checks...),
		Bearer:   jwtmw.Bearer(verifier),
		Session:  accounthandler.SessionAuth(accounts.Account, cookies),
	}), nil
}

// LoadConfig loads the process-level settings.
func LoadConfig() (Config, error) {
	return env.ParseAs[Config]()
}
