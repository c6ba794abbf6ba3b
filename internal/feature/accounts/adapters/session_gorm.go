package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"blog_backend/internal/feature/accounts/domain/entity"
	"blog_backend/internal/feature/accounts/usecase"
)

// activeSession is the condition shared by the queries on usable sessions.
const activeSession = "user_id = ? AND revoked_at IS NULL AND expires_at > ?"

// sessionGorm is the database implementation of SessionRepository.
// It is used when Redis is not configured.
type sessionGorm struct {
	db  *gorm.DB
	now func() time.Time
}

// Compile-time check to ensure sessionGorm implements SessionRepository.
var _ usecase.SessionRepository = (*sessionGorm)(nil)

// NewSessionRepository creates a new instance of sessionGorm.
func NewSessionRepository(db *gorm.DB) *sessionGorm {
	return &sessionGorm{db: db, now: time.Now}
}

// Create persists a new session.
func (r *sessionGorm) Create(ctx context.Context, session *entity.Session) error {
	return r.db.WithContext(ctx).Create(SessionModelFromEntity(session)).Error
}

// FindByID retrieves a session by its cookie value.
func (r *sessionGorm) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	var model SessionModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrSessionNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// FindByUserID retrieves all active sessions of a user, oldest first.
func (r *sessionGorm) FindByUserID(ctx context.Context, userID uint) ([]*entity.Session, error) {
	var models []SessionModel
	if err := r.db.WithContext(ctx).
		Where(activeSession, userID, r.now()).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	sessions := make([]*entity.Session, len(models))
	for i := range models {
		sessions[i] = models[i].ToEntity()
	}
	return sessions, nil
}

// Revoke marks a session as revoked.
func (r *sessionGorm) Revoke(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&SessionModel{}).
		Where("id = ?", id).
		Update("revoked_at", r.now())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrSessionNotFound
	}
	return nil
}

// RevokeAllByUserID revokes every session of a user, e.g. after a password change.
func (r *sessionGorm) RevokeAllByUserID(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Model(&SessionModel{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", r.now()).Error
}

// DeleteExpired removes expired sessions.
func (r *sessionGorm) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", r.now()).
		Delete(&SessionModel{})
	return result.RowsAffected, result.Error
}

// CountByUserID returns the number of active sessions of a user.
func (r *sessionGorm) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&SessionModel{}).
		Where(activeSession, userID, r.now()).
		Count(&count).Error
	return count, err
}

// DeleteOldestByUserID deletes the oldest active session of a user.
func (r *sessionGorm) DeleteOldestByUserID(ctx context.Context, userID uint) error {
	var oldest SessionModel
	if err := r.db.WithContext(ctx).
		Where(activeSession, userID, r.now()).
		Order("created_at ASC").
		First(&oldest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return r.db.WithContext(ctx).Delete(&SessionModel{}, "id = ?", oldest.ID).Error
}
