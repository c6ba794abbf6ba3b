// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"blog_backend/internal/feature/accounts/usecase"
	"blog_backend/internal/feature/articles/domain/entity"
)

// CachingArticleRepository decorates an ArticleRepository with Redis caching.
// Articles are written by another application, so entries are never
// invalidated here and simply expire after ttl.
type CachingArticleRepository struct {
	inner     usecase.ArticleRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.ArticleRepository = (*CachingArticleRepository)(nil)

// NewCachingArticleRepository decorates an ArticleRepository with Redis caching.
// If ttl is 0, it defaults to 1 minute. If namespace is empty, it uses "articles".
// A nil rdb disables caching.
func NewCachingArticleRepository(rdb *redis.Client, ttl time.Duration, inner usecase.ArticleRepository, namespace string) *CachingArticleRepository {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if namespace == "" {
		namespace = "articles"
	}
	return &CachingArticleRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// CountByAuthor returns the author's article count, cached.
func (c *CachingArticleRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	if c.rdb == nil {
		return c.inner.CountByAuthor(ctx, authorID)
	}

	key := c.countKey(authorID)
	if v, err := c.rdb.Get(ctx, key).Result(); err == nil {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n, nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	}

	n, err := c.inner.CountByAuthor(ctx, authorID)
	if err != nil {
		return 0, err
	}
	_ = c.rdb.Set(ctx, key, n, c.ttl).Err()
	return n, nil
}

// ListByAuthor returns one page of the author's articles, checking the cache
// first and falling back to the database.
func (c *CachingArticleRepository) ListByAuthor(ctx context.Context, authorID uint, offset, limit int) ([]entity.Article, error) {
	if c.rdb == nil {
		return c.inner.ListByAuthor(ctx, authorID, offset, limit)
	}

	key := c.pageKey(authorID, offset, limit)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Article
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.ListByAuthor(ctx, authorID, offset, limit)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

func (c *CachingArticleRepository) countKey(authorID uint) string {
	return fmt.Sprintf("%s:author:%d:count", c.namespace, authorID)
}

func (c *CachingArticleRepository) pageKey(authorID uint, offset, limit int) string {
	return fmt.Sprintf("%s:author:%d:page:%d:%d", c.namespace, authorID, offset, limit)
}
