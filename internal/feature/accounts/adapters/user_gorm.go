package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"blog_backend/internal/feature/accounts/domain/entity"
	"blog_backend/internal/feature/accounts/usecase"
)

// userGorm はUserRepositoryインターフェースのGORM実装です。
type userGorm struct {
	db *gorm.DB
}

// userGormがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserRepository は指定されたgorm.DB接続でuserGormの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタです。
func NewUserRepository(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create はユーザーをデータベースに追加します。
// 同じユーザー名が既に存在する場合、usecase.ErrUsernameTakenを返します。
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDuplicateKey(err) {
			return usecase.ErrUsernameTaken
		}
		return err
	}
	return nil
}

// FindByID はIDでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userGorm) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByUsername はユーザー名でユーザーを取得します。
func (r *userGorm) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.first(ctx, "username = ?", username)
}

// FindFirstByEmail はメールアドレスが一致する最も古いユーザーを取得します。
// メールアドレスは一意ではないため、ID順で最初の1件を返します。
func (r *userGorm) FindFirstByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.first(ctx, "email = ?", email)
}

// Update はユーザーの全フィールドを保存します。
func (r *userGorm) Update(ctx context.Context, u *entity.User) error {
	if u.ID == 0 {
		return usecase.ErrUserNotFound
	}
	return r.db.WithContext(ctx).Save(u).Error
}

// first は条件に一致するID順で最初のユーザーを返します。
func (r *userGorm) first(ctx context.Context, query string, args ...any) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where(query, args...).Order("id ASC").First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
