package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"blog_backend/internal/feature/accounts/domain/entity"
)

// TokenStore はメールで送る使い捨てトークンを発行・解決します。
type TokenStore struct {
	tokens TokenRepository
	now    func() time.Time
}

// NewTokenStore はリポジトリを使うTokenStoreを生成します。
func NewTokenStore(tokens TokenRepository) *TokenStore {
	return &TokenStore{tokens: tokens, now: time.Now}
}

// Issue は新しいランダムな識別子でユーザーのトークンを作成します。
// lifeDays <= 0 の場合は entity.DefaultTokenLifeDays です。
func (s *TokenStore) Issue(ctx context.Context, userID uint, typ entity.TokenType, lifeDays int) (*entity.AuthToken, error) {
	if lifeDays <= 0 {
		lifeDays = entity.DefaultTokenLifeDays
	}
	tok := &entity.AuthToken{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: s.now(),
		LifeDays:  lifeDays,
		Type:      typ,
	}
	if err := s.tokens.Create(ctx, tok); err != nil {
		return nil, fmt.Errorf("failed to create %s token: %w", typ, err)
	}
	return tok, nil
}

// Lookup は識別子を解決します。
// 不正な形式の識別子や別用途のトークンは ErrTokenNotFound です。
func (s *TokenStore) Lookup(ctx context.Context, identifier string, typ entity.TokenType) (*entity.AuthToken, error) {
	id, err := uuid.Parse(identifier)
	if err != nil {
		return nil, ErrTokenNotFound
	}
	tok, err := s.tokens.FindByToken(ctx, id.String())
	if err != nil {
		return nil, err
	}
	if tok.Type != typ {
		return nil, ErrTokenNotFound
	}
	return tok, nil
}

// IsAlive はトークンが有効期間内かを返します。
func (s *TokenStore) IsAlive(tok *entity.AuthToken) bool {
	return tok.IsAlive(s.now())
}

// Consume はトークンを削除します。
func (s *TokenStore) Consume(ctx context.Context, tok *entity.AuthToken) error {
	return s.tokens.Delete(ctx, tok.ID)
}

// DeleteExpired は期限切れのトークンをすべて削除します。
func (s *TokenStore) DeleteExpired(ctx context.Context) (int64, error) {
	return s.tokens.DeleteExpired(ctx, s.now())
}

// resolve はトークンを検索し、有効期間内かを確認します。
func (s *TokenStore) resolve(ctx context.Context, identifier string, typ entity.TokenType) (*entity.AuthToken, error) {
	tok, err := s.Lookup(ctx, identifier, typ)
	if err != nil {
		return nil, err
	}
	if !s.IsAlive(tok) {
		return tok, ErrTokenExpired
	}
	return tok, nil
}
