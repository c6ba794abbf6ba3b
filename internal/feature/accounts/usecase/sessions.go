package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"blog_backend/internal/feature/accounts/domain/entity"
)

// SessionMeta はセッションを開始するクライアントの情報です。
type SessionMeta struct {
	UserAgent string
	IPAddress string
}

// sessionManager はログインセッションの開始と終了を扱います。
type sessionManager struct {
	sessions   SessionRepository
	ttl        time.Duration
	maxPerUser int
	now        func() time.Time
}

func newSessionManager(sessions SessionRepository, cfg Config) *sessionManager {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 14 * 24 * time.Hour
	}
	return &sessionManager{
		sessions:   sessions,
		ttl:        ttl,
		maxPerUser: cfg.MaxSessionsPerUser,
		now:        time.Now,
	}
}

// start はユーザーのセッションを作成します。
// ユーザーごとの上限に達している場合は古いものから削除します。
func (m *sessionManager) start(ctx context.Context, userID uint, meta SessionMeta) (*entity.Session, error) {
	if m.maxPerUser > 0 {
		n, err := m.sessions.CountByUserID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to count sessions: %w", err)
		}
		for ; n >= int64(m.maxPerUser); n-- {
			if err := m.sessions.DeleteOldestByUserID(ctx, userID); err != nil {
				return nil, fmt.Errorf("failed to drop oldest session: %w", err)
			}
		}
	}

	id, err := newSessionID()
	if err != nil {
		return nil, err
	}
	now := m.now()
	s := &entity.Session{
		ID:        id,
		UserID:    userID,
		UserAgent: meta.UserAgent,
		IPAddress: meta.IPAddress,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.sessions.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return s, nil
}

// resolve はセッションがまだ使える場合にそれを返します。
func (m *sessionManager) resolve(ctx context.Context, id string) (*entity.Session, error) {
	if id == "" {
		return nil, ErrSessionNotFound
	}
	s, err := m.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.IsRevoked() {
		return nil, ErrSessionRevoked
	}
	if s.IsExpired() {
		return nil, ErrSessionExpired
	}
	return s, nil
}

// end はセッションを失効させます。存在しないセッションは無視します。
func (m *sessionManager) end(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := m.sessions.Revoke(ctx, id); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}
	return nil
}

// newSessionID は64文字の16進数セッションIDを生成します。
func newSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}
