// Package session provides the Redis-backed login session store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"blog_backend/internal/feature/accounts/domain/entity"
	"blog_backend/internal/feature/accounts/usecase"
)

// revokedRetention is how long a revoked session is kept for auditing.
const revokedRetention = 24 * time.Hour

// record is the JSON document stored under a session key.
type record struct {
	ID        string     `json:"id"`
	UserID    uint       `json:"user_id"`
	UserAgent string     `json:"user_agent"`
	IPAddress string     `json:"ip_address"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// SessionRedis implements usecase.SessionRepository using Redis.
// Each session is a string key with a TTL; a per-user sorted set scored by
// creation time indexes the user's sessions, oldest first.
type SessionRedis struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

// Compile-time check to ensure SessionRedis implements SessionRepository.
var _ usecase.SessionRepository = (*SessionRedis)(nil)

// NewSessionRedis creates a new SessionRedis instance.
func NewSessionRedis(client redis.Cmdable, prefix string) *SessionRedis {
	return &SessionRedis{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

// sessionKey returns the Redis key for a session.
func (r *SessionRedis) sessionKey(id string) string {
	return fmt.Sprintf("%s:%s", r.prefix, id)
}

// userSessionsKey returns the Redis key for a user's session index.
func (r *SessionRedis) userSessionsKey(userID uint) string {
	return fmt.Sprintf("%s:user:%d", r.prefix, userID)
}

// Create persists a new session.
func (r *SessionRedis) Create(ctx context.Context, s *entity.Session) error {
	ttl := s.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}
	data, err := json.Marshal(record(*s))
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.sessionKey(s.ID), data, ttl)
		pipe.ZAdd(ctx, r.userSessionsKey(s.UserID), redis.Z{
			Score:  float64(s.CreatedAt.UnixNano()),
			Member: s.ID,
		})
		return nil
	})
	return err
}

// FindByID retrieves a session by its cookie value.
func (r *SessionRedis) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	data, err := r.client.Get(ctx, r.sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, usecase.ErrSessionNotFound
		}
		return nil, err
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	s := entity.Session(rec)
	return &s, nil
}

// FindByUserID retrieves all active sessions of a user, oldest first.
// Index entries whose session key has expired are pruned.
func (r *SessionRedis) FindByUserID(ctx context.Context, userID uint) ([]*entity.Session, error) {
	ids, err := r.client.ZRange(ctx, r.userSessionsKey(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	var sessions []*entity.Session
	for _, id := range ids {
		s, err := r.FindByID(ctx, id)
		if errors.Is(err, usecase.ErrSessionNotFound) {
			r.client.ZRem(ctx, r.userSessionsKey(userID), id)
			continue
		}
		if err != nil {
			return nil, err
		}
		if !s.IsRevoked() && s.ExpiresAt.After(r.now()) {
			sessions = append(sessions, s)
		}
	}
	return sessions, nil
}

// Revoke marks a session as revoked and shortens its lifetime.
func (r *SessionRedis) Revoke(ctx context.Context, id string) error {
	s, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if s.IsRevoked() {
		return nil
	}

	now := r.now()
	s.RevokedAt = &now
	data, err := json.Marshal(record(*s))
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.sessionKey(id), data, revokedRetention)
		pipe.ZRem(ctx, r.userSessionsKey(s.UserID), id)
		return nil
	})
	return err
}

// RevokeAllByUserID revokes every session of a user.
func (r *SessionRedis) RevokeAllByUserID(ctx context.Context, userID uint) error {
	ids, err := r.client.ZRange(ctx, r.userSessionsKey(userID), 0, -1).Result()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := r.Revoke(ctx, id); err != nil && !errors.Is(err, usecase.ErrSessionNotFound) {
			return err
		}
	}
	return r.client.Del(ctx, r.userSessionsKey(userID)).Err()
}

// DeleteExpired is a no-op: Redis expires session keys via TTL and stale
// index entries are pruned on read.
func (r *SessionRedis) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

// CountByUserID returns the number of active sessions of a user.
func (r *SessionRedis) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	sessions, err := r.FindByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return int64(len(sessions)), nil
}

// DeleteOldestByUserID deletes the oldest active session of a user.
func (r *SessionRedis) DeleteOldestByUserID(ctx context.Context, userID uint) error {
	sessions, err := r.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		return nil
	}

	oldest := sessions[0]
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.sessionKey(oldest.ID))
		pipe.ZRem(ctx, r.userSessionsKey(userID), oldest.ID)
		return nil
	})
	return err
}
