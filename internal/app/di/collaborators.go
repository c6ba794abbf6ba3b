// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"blog_backend/internal/feature/accounts/usecase"
	articleadapters "blog_backend/internal/feature/articles/adapters"
	"blog_backend/internal/platform/cache"
	"blog_backend/internal/platform/mailer"
	"blog_backend/internal/platform/storage"
)

// NewArticleRepository returns the article reader, cached in Redis when available.
func NewArticleRepository(db *gorm.DB, rdb *redis.Client, ttl time.Duration) usecase.ArticleRepository {
	return cache.NewCachingArticleRepository(rdb, ttl, articleadapters.NewArticleRepository(db), "articles")
}

// NewMailer creates the SMTP mailer. When SMTP is not configured it
// returns nil and account emails are only logged.
func NewMailer() (usecase.Mailer, error) {
	cfg, err := mailer.LoadConfig()
	if err != nil {
		return nil, err
	}
	m, err := mailer.NewMailer(cfg)
	if errors.Is(err, mailer.ErrNotConfigured) {
		log.Warn().Msg("SMTP is not configured. Account emails will not be sent.")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// NewObjectStorage opens the avatar storage. It returns nil when
// STORAGE_BACKEND is empty; avatar uploads are then rejected.
func NewObjectStorage(ctx context.Context) (*storage.Storage, error) {
	cfg, err := storage.LoadConfig()
	if err != nil {
		return nil, err
	}
	s, err := storage.Open(ctx, cfg)
	if errors.Is(err, storage.ErrNotConfigured) {
		log.Warn().Msg("Object storage is not configured. Avatar uploads are disabled.")
		return nil, nil
	}
	return s, err
}
