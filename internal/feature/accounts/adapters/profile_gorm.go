package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"blog_backend/internal/feature/accounts/domain/entity"
	"blog_backend/internal/feature/accounts/usecase"
)

// profileGorm はProfileRepositoryのGORM実装です。
type profileGorm struct {
	db *gorm.DB
}

var _ usecase.ProfileRepository = (*profileGorm)(nil)

// NewProfileRepository はprofileGormの新しいインスタンスを生成します。
func NewProfileRepository(db *gorm.DB) *profileGorm {
	return &profileGorm{db: db}
}

// Create はプロフィールを追加します。1ユーザーにつき1件のみ作成できます。
func (r *profileGorm) Create(ctx context.Context, p *entity.Profile) error {
	return r.db.WithContext(ctx).Omit("User").Create(p).Error
}

// FindByUserID はユーザーIDでプロフィールを取得します。
// 存在しない場合、usecase.ErrProfileNotFoundを返します。
func (r *profileGorm) FindByUserID(ctx context.Context, userID uint) (*entity.Profile, error) {
	var p entity.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Update はプロフィールの全フィールドを保存します。
func (r *profileGorm) Update(ctx context.Context, p *entity.Profile) error {
	if p.ID == 0 {
		return usecase.ErrProfileNotFound
	}
	return r.db.WithContext(ctx).Omit("User").Save(p).Error
}
