package usecase

import (
	"context"

	"blog_backend/internal/feature/accounts/domain/entity"
)

// SessionRepository はセッションエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type SessionRepository interface {
	// Create は新しいセッションを永続化します。
	Create(ctx context.Context, session *entity.Session) error

	// FindByID はID（セッションCookieの値）でセッションを取得します。
	FindByID(ctx context.Context, id string) (*entity.Session, error)

	// FindByUserID はユーザーの全セッションを取得します。
	FindByUserID(ctx context.Context, userID uint) ([]*entity.Session, error)

	// Revoke は RevokedAt を設定してセッションを失効させます。
	Revoke(ctx context.Context, id string) error

	// RevokeAllByUserID はユーザーの全セッションを失効させます。
	RevokeAllByUserID(ctx context.Context, userID uint) error

	// DeleteExpired は期限切れのセッションを削除し、
	// 削除した件数を返します。
	DeleteExpired(ctx context.Context) (int64, error)

	// CountByUserID はユーザーの有効なセッション数を返します。
	CountByUserID(ctx context.Context, userID uint) (int64, error)

	// DeleteOldestByUserID はユーザーの最も古いセッションを削除します。
	DeleteOldestByUserID(ctx context.Context, userID uint) error
}
