// Package adapters はarticlesフィーチャーの読み取り専用リポジトリ実装を提供します。
package adapters

import (
	"context"

	"gorm.io/gorm"

	"blog_backend/internal/feature/articles/domain/entity"
)

// articleGorm はGORMを使った記事の読み取りリポジトリです。
type articleGorm struct {
	db *gorm.DB
}

// NewArticleRepository は指定されたDB接続でarticleGormの新しいインスタンスを生成します。
func NewArticleRepository(db *gorm.DB) *articleGorm {
	return &articleGorm{db: db}
}

// CountByAuthor は著者の記事数を返します。
func (r *articleGorm) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&entity.Article{}).
		Where("author_id = ?", authorID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// ListByAuthor は著者の記事を新しい順に offset から limit 件返します。
func (r *articleGorm) ListByAuthor(ctx context.Context, authorID uint, offset, limit int) ([]entity.Article, error) {
	var articles []entity.Article
	if err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}
