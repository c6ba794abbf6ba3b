package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"blog_backend/internal/feature/accounts/domain/entity"
	"blog_backend/internal/feature/accounts/usecase"
)

// expiredScanBatchSize は期限切れトークン削除時の1バッチの件数です。
const expiredScanBatchSize = 500

// tokenGorm はTokenRepositoryのGORM実装です。
type tokenGorm struct {
	db *gorm.DB
}

var _ usecase.TokenRepository = (*tokenGorm)(nil)

// NewTokenRepository はtokenGormの新しいインスタンスを生成します。
func NewTokenRepository(db *gorm.DB) *tokenGorm {
	return &tokenGorm{db: db}
}

// Create はトークンを追加します。
func (r *tokenGorm) Create(ctx context.Context, t *entity.AuthToken) error {
	return r.db.WithContext(ctx).Omit("User").Create(t).Error
}

// FindByToken は識別子でトークンを取得します。
// 存在しない場合、usecase.ErrTokenNotFoundを返します。
func (r *tokenGorm) FindByToken(ctx context.Context, token string) (*entity.AuthToken, error) {
	var t entity.AuthToken
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrTokenNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Delete は主キーでトークンを削除します。既に削除済みでもエラーにしません。
func (r *tokenGorm) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.AuthToken{}, id).Error
}

// DeleteExpired は now 時点で有効期限が切れたトークンを削除します。
// 有効期限は行ごとの life_days に依存し、日付演算はDBごとに異なるため
// 候補を読み込んでGo側で判定します。
func (r *tokenGorm) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var (
		batch   []entity.AuthToken
		expired []uint
	)
	err := r.db.WithContext(ctx).
		Select("id", "created_at", "life_days").
		Where("created_at < ?", now).
		FindInBatches(&batch, expiredScanBatchSize, func(_ *gorm.DB, _ int) error {
			for i := range batch {
				if !batch[i].IsAlive(now) {
					expired = append(expired, batch[i].ID)
				}
			}
			return nil
		}).Error
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}

	var deleted int64
	for start := 0; start < len(expired); start += expiredScanBatchSize {
		end := min(start+expiredScanBatchSize, len(expired))
		res := r.db.WithContext(ctx).Delete(&entity.AuthToken{}, expired[start:end])
		if res.Error != nil {
			return deleted, res.Error
		}
		deleted += res.RowsAffected
	}
	return deleted, nil
}
