package usecase

import (
	"context"
	"io"
	"time"

	"blog_backend/internal/feature/accounts/domain/entity"
	articleentity "blog_backend/internal/feature/articles/domain/entity"
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーを永続化します。ユーザー名が重複する場合は ErrUsernameTaken を返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByID はIDでユーザーを取得します。存在しない場合は ErrUserNotFound です。
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// FindByUsername はユーザー名でユーザーを取得します。存在しない場合は ErrUserNotFound です。
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// FindFirstByEmail はメールアドレスが一致する最も古いユーザーを返します。なければ ErrUserNotFound です。
	FindFirstByEmail(ctx context.Context, email string) (*entity.User, error)

	// Update はユーザーの変更可能なフィールドをすべて保存します。
	Update(ctx context.Context, user *entity.User) error
}

// ProfileRepository はプロフィールの永続化層を抽象化します。
type ProfileRepository interface {
	Create(ctx context.Context, profile *entity.Profile) error

	// FindByUserID はプロフィールがない場合 ErrProfileNotFound を返します。
	FindByUserID(ctx context.Context, userID uint) (*entity.Profile, error)

	Update(ctx context.Context, profile *entity.Profile) error
}

// TokenRepository は認証トークンの永続化層を抽象化します。
type TokenRepository interface {
	Create(ctx context.Context, token *entity.AuthToken) error

	// FindByToken は識別子に一致するトークンがない場合 ErrTokenNotFound を返します。
	FindByToken(ctx context.Context, token string) (*entity.AuthToken, error)

	// Delete は主キーでトークンを削除します。
	Delete(ctx context.Context, id uint) error

	// DeleteExpired は now の時点で期限切れのトークンを削除し、
	// 削除した件数を返します。
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// ArticleRepository は詳細ページ用にユーザーの記事を読み出します。
type ArticleRepository interface {
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	ListByAuthor(ctx context.Context, authorID uint, offset, limit int) ([]articleentity.Article, error)
}

// Mailer はテキストとHTMLの本文を持つメールを送信します。
type Mailer interface {
	SendMail(ctx context.Context, to, subject, body, htmlBody string) error
}

// AvatarStorage はアップロードされたアバター画像を保存します。
type AvatarStorage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
}

// JWTGenerator はAPIアクセストークン生成のインターフェースを定義します。
type JWTGenerator interface {
	// GenerateToken はログインセッションに紐づく署名済みJWTトークンを生成します。
	GenerateToken(userID uint, username, sessionID string) (string, error)
}
