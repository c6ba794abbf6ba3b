package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"blog_backend/internal/feature/accounts/domain/entity"
)

// dummyPasswordHash はユーザーが存在しない場合の比較対象です。
// ユーザー名の有無でログイン失敗の所要時間が変わらないようにします。
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// LoginResult はユーザーをログインさせた各処理の結果です。
type LoginResult struct {
	User        *entity.User
	Session     *entity.Session
	AccessToken string
}

// RegisterResult は登録成功時の結果です。
// ActivationRequired の場合、Login は nil でユーザーは無効のままです。
type RegisterResult struct {
	User               *entity.User
	ActivationRequired bool
	Login              *LoginResult
}

// accountUsecase は登録・有効化・ログインのビジネスロジックを実装します。
type accountUsecase struct {
	cfg          Config
	users        UserRepository
	profiles     ProfileRepository
	tokens       *TokenStore
	sessions     *sessionManager
	mail         *mailSender
	jwtGenerator JWTGenerator
	now          func() time.Time
}

// NewAccountUsecase はaccountUsecaseの新しいインスタンスを生成します。
// mailer が nil の場合、有効化メールはログに出力されるだけです。
func NewAccountUsecase(cfg Config, users UserRepository, profiles ProfileRepository, tokens *TokenStore,
	sessions SessionRepository, mailer Mailer, jwtGenerator JWTGenerator) *accountUsecase {
	return &accountUsecase{
		cfg:          cfg,
		users:        users,
		profiles:     profiles,
		tokens:       tokens,
		sessions:     newSessionManager(sessions, cfg),
		mail:         newMailSender(mailer, cfg),
		jwtGenerator: jwtGenerator,
		now:          time.Now,
	}
}

// Register は登録フォームからユーザーを作成します。
// メール有効化が有効な場合は無効なユーザーを作成し、有効化リンクをメールで送ります。
// それ以外はプロフィールを作成し、そのままログインさせます。
func (u *accountUsecase) Register(ctx context.Context, form RegistrationForm, meta SessionMeta) (*RegisterResult, error) {
	errs := form.Validate()
	if _, ok := errs["username"]; !ok {
		_, err := u.users.FindByUsername(ctx, form.Username)
		switch {
		case err == nil:
			errs.Add("username", MsgUsernameTaken)
		case !errors.Is(err, ErrUserNotFound):
			return nil, err
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(form.Password1), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &entity.User{
		Username:  form.Username,
		Email:     form.Email,
		Password:  string(hashed),
		FirstName: form.FirstName,
		LastName:  form.LastName,
		IsActive:  !u.cfg.ActivateUsersEmail,
	}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return nil, FieldErrors{"username": MsgUsernameTaken}
		}
		return nil, err
	}

	if u.cfg.ActivateUsersEmail {
		tok, err := u.tokens.Issue(ctx, user.ID, entity.TokenTypeRegister, entity.DefaultTokenLifeDays)
		if err != nil {
			return nil, err
		}
		u.mail.sendActivation(ctx, user, tok)
		return &RegisterResult{User: user, ActivationRequired: true}, nil
	}

	if _, err := u.ensureProfile(ctx, user.ID); err != nil {
		return nil, err
	}
	login, err := u.login(ctx, user, meta)
	if err != nil {
		return nil, err
	}
	return &RegisterResult{User: user, Login: login}, nil
}

// Activate は登録トークンを消費します。
// 存在しないトークンは ErrTokenNotFound、期限切れのトークンは削除して ErrTokenExpired を返します。
// 有効なトークンならユーザーを有効化してプロフィールを作成し、ログインさせてからトークンを削除します。
func (u *accountUsecase) Activate(ctx context.Context, token string, meta SessionMeta) (*LoginResult, error) {
	tok, err := u.tokens.resolve(ctx, token, entity.TokenTypeRegister)
	if errors.Is(err, ErrTokenExpired) {
		if delErr := u.tokens.Consume(ctx, tok); delErr != nil {
			return nil, delErr
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	user, err := u.users.FindByID(ctx, tok.UserID)
	if err != nil {
		return nil, err
	}
	user.IsActive = true
	if err := u.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to activate user: %w", err)
	}
	if _, err := u.ensureProfile(ctx, user.ID); err != nil {
		return nil, err
	}
	login, err := u.login(ctx, user, meta)
	if err != nil {
		return nil, err
	}
	if err := u.tokens.Consume(ctx, tok); err != nil {
		return nil, err
	}
	return login, nil
}

// Login はユーザーを認証し、セッションを開始します。
// 存在しないユーザー、パスワード誤り、無効なアカウントはいずれも ErrInvalidCredentials です。
func (u *accountUsecase) Login(ctx context.Context, username, password string, meta SessionMeta) (*LoginResult, error) {
	user, err := u.users.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	passwordHash := dummyPasswordHash
	if err == nil {
		passwordHash = user.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))
	if err != nil || compareErr != nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	return u.login(ctx, user, meta)
}

// Logout はセッションを失効させます。存在しないセッションは無視します。
func (u *accountUsecase) Logout(ctx context.Context, sessionID string) error {
	return u.sessions.end(ctx, sessionID)
}

// Authenticate はセッションIDを有効なユーザーに解決します。
func (u *accountUsecase) Authenticate(ctx context.Context, sessionID string) (*entity.User, error) {
	s, err := u.sessions.resolve(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	user, err := u.users.FindByID(ctx, s.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return user, nil
}

// DeleteExpiredTokens は期限切れのトークンとセッションを削除します。
func (u *accountUsecase) DeleteExpiredTokens(ctx context.Context) (tokens int64, sessions int64, err error) {
	tokens, err = u.tokens.DeleteExpired(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	sessions, err = u.sessions.sessions.DeleteExpired(ctx)
	if err != nil {
		return tokens, 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return tokens, sessions, nil
}

func (u *accountUsecase) login(ctx context.Context, user *entity.User, meta SessionMeta) (*LoginResult, error) {
	now := u.now()
	user.LastLogin = &now
	if err := u.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}

	s, err := u.sessions.start(ctx, user.ID, meta)
	if err != nil {
		return nil, err
	}

	var access string
	if u.jwtGenerator != nil {
		access, err = u.jwtGenerator.GenerateToken(user.ID, user.Username, s.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to generate token: %w", err)
		}
	}
	return &LoginResult{User: user, Session: s, AccessToken: access}, nil
}

// ensureProfile はユーザーのプロフィールを返します。なければ作成します。
func (u *accountUsecase) ensureProfile(ctx context.Context, userID uint) (*entity.Profile, error) {
	return ensureProfile(ctx, u.profiles, userID)
}

func ensureProfile(ctx context.Context, profiles ProfileRepository, userID uint) (*entity.Profile, error) {
	p, err := profiles.FindByUserID(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}
	p = &entity.Profile{UserID: userID}
	if err := profiles.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return p, nil
}
