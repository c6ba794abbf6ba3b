package usecase

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"blog_backend/internal/feature/accounts/domain/entity"
)

// passwordUsecase はパスワード変更とメールによるパスワードリセットを実装します。
type passwordUsecase struct {
	users    UserRepository
	tokens   *TokenStore
	sessions *sessionManager
	mail     *mailSender
}

// NewPasswordUsecase はpasswordUsecaseの新しいインスタンスを生成します。
func NewPasswordUsecase(cfg Config, users UserRepository, tokens *TokenStore, sessions SessionRepository,
	mailer Mailer) *passwordUsecase {
	return &passwordUsecase{
		users:    users,
		tokens:   tokens,
		sessions: newSessionManager(sessions, cfg),
		mail:     newMailSender(mailer, cfg),
	}
}

// ChangePassword は旧パスワードを確認してからログイン中ユーザーのパスワードを置き換えます。
// ユーザーの全セッション（とそれに紐づくアクセストークン）を失効させ、
// 呼び出し元には新しいセッションを返します。
func (u *passwordUsecase) ChangePassword(ctx context.Context, userID uint, form ChangePasswordForm,
	meta SessionMeta) (*entity.Session, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	errs := form.Validate()
	if form.OldPassword != "" &&
		bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(form.OldPassword)) != nil {
		errs.Add("old_password", MsgOldPasswordIncorrect)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if err := u.setPassword(ctx, user, form.Password); err != nil {
		return nil, err
	}
	return u.sessions.start(ctx, user.ID, meta)
}

// RequestPasswordReset はメールアドレスに一致する最初のユーザーにリセットトークンを発行し、
// リンクをメールで送ります。未登録のアドレスは検証エラーです。
func (u *passwordUsecase) RequestPasswordReset(ctx context.Context, form PasswordResetRequestForm) error {
	if err := form.Validate().Err(); err != nil {
		return err
	}
	user, err := u.users.FindFirstByEmail(ctx, form.Email)
	if errors.Is(err, ErrUserNotFound) {
		return FieldErrors{"email": MsgNoSuchUser}
	}
	if err != nil {
		return err
	}

	tok, err := u.tokens.Issue(ctx, user.ID, entity.TokenTypePasswordReset, entity.PasswordResetTokenLifeDays)
	if err != nil {
		return err
	}
	u.mail.sendPasswordReset(ctx, user, tok)
	return nil
}

// CheckResetToken は有効なリセットトークンの持ち主を返します。
// 存在しない場合は ErrTokenNotFound、期限切れは ErrTokenExpired です。
func (u *passwordUsecase) CheckResetToken(ctx context.Context, token string) (*entity.User, error) {
	_, user, err := u.resolveReset(ctx, token)
	return user, err
}

// ResetPassword はリセットトークンで新しいパスワードを設定します。
// トークンはパスワード保存の前に削除します。フォームが不正な場合は残します。
// ユーザーの全セッションを失効させます。
func (u *passwordUsecase) ResetPassword(ctx context.Context, token string, form SetPasswordForm) (*entity.User, error) {
	tok, user, err := u.resolveReset(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := form.Validate().Err(); err != nil {
		return nil, err
	}

	if err := u.tokens.Consume(ctx, tok); err != nil {
		return nil, err
	}
	if err := u.setPassword(ctx, user, form.Password); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *passwordUsecase) resolveReset(ctx context.Context, token string) (*entity.AuthToken, *entity.User, error) {
	tok, err := u.tokens.resolve(ctx, token, entity.TokenTypePasswordReset)
	if err != nil {
		return nil, nil, err
	}
	user, err := u.users.FindByID(ctx, tok.UserID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return tok, user, nil
}

func (u *passwordUsecase) setPassword(ctx context.Context, user *entity.User, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)
	if err := u.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err := u.sessions.sessions.RevokeAllByUserID(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return nil
}
