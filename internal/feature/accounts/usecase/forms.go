package usecase

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 8

	maxUsernameLength = 150

	// MaxAvatarSize はアバター画像の最大バイト数です。
	MaxAvatarSize = 5 << 20

	birthDateLayout = "2006-01-02"
)

var (
	validate        = validator.New()
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
)

// validatePassword はパスワードがセキュリティ要件を満たしているかチェックします。
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	}
	return nil
}

func validEmail(email string) bool {
	return validate.Var(email, "email") == nil
}

// RegistrationForm は登録画面の入力です。
type RegistrationForm struct {
	Username  string
	Password1 string
	Password2 string
	FirstName string
	LastName  string
	Email     string
}

// Validate は各フィールドを検証します。ユーザー名の重複はユースケースで確認します。
func (f *RegistrationForm) Validate() FieldErrors {
	errs := FieldErrors{}
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)

	switch {
	case f.Username == "":
		errs.Add("username", MsgRequired)
	case len(f.Username) > maxUsernameLength || !usernamePattern.MatchString(f.Username):
		errs.Add("username", MsgUsernameInvalid)
	}
	if f.Email != "" && !validEmail(f.Email) {
		errs.Add("email", MsgEmailInvalid)
	}
	validatePasswordPair(errs, "password1", "password2", f.Password1, f.Password2)
	return errs
}

// AccountForm はユーザーの氏名とメールアドレスを編集します。
type AccountForm struct {
	FirstName string
	LastName  string
	Email     string
}

// Validate は各フィールドを検証します。
func (f *AccountForm) Validate() FieldErrors {
	errs := FieldErrors{}
	f.Email = strings.TrimSpace(f.Email)
	if f.Email != "" && !validEmail(f.Email) {
		errs.Add("email", MsgEmailInvalid)
	}
	return errs
}

// Upload はフォームで受け取ったファイルです。
type Upload struct {
	Filename string
	Data     []byte
}

// ProfileForm はプロフィールを編集します。
// BirthDate は "YYYY-MM-DD" 形式の入力値で、空なら生年月日を消去します。
type ProfileForm struct {
	BirthDate   string
	Avatar      *Upload
	ClearAvatar bool

	birthDate   *time.Time
	contentType string
}

// Validate は各フィールドを検証し、生年月日を解析します。
func (f *ProfileForm) Validate() FieldErrors {
	errs := FieldErrors{}

	f.birthDate = nil
	if raw := strings.TrimSpace(f.BirthDate); raw != "" {
		d, err := time.Parse(birthDateLayout, raw)
		if err != nil {
			errs.Add("birth_date", MsgDateInvalid)
		} else {
			f.birthDate = &d
		}
	}

	if f.Avatar != nil {
		switch {
		case f.ClearAvatar:
			errs.Add("avatar", MsgAvatarConflict)
		case len(f.Avatar.Data) > MaxAvatarSize:
			errs.Add("avatar", MsgAvatarTooLarge)
		default:
			mt := mimetype.Detect(f.Avatar.Data)
			if !strings.HasPrefix(mt.String(), "image/") {
				errs.Add("avatar", MsgAvatarNotImage)
			} else {
				f.contentType = mt.String()
			}
		}
	}
	return errs
}

// SetPasswordForm は旧パスワードなしで新しいパスワードを設定します。
type SetPasswordForm struct {
	Password        string
	PasswordConfirm string
}

// Validate は2つの入力が一致し、パスワード要件を満たすかを検証します。
func (f *SetPasswordForm) Validate() FieldErrors {
	errs := FieldErrors{}
	validatePasswordPair(errs, "password", "password_confirm", f.Password, f.PasswordConfirm)
	return errs
}

// ChangePasswordForm は現在のパスワードも必要とします。
// 旧パスワードの照合はユースケースで行います。
type ChangePasswordForm struct {
	OldPassword string
	SetPasswordForm
}

// Validate は新しいパスワードの組と、旧パスワードの入力有無を検証します。
func (f *ChangePasswordForm) Validate() FieldErrors {
	errs := f.SetPasswordForm.Validate()
	if f.OldPassword == "" {
		errs.Add("old_password", MsgRequired)
	}
	return errs
}

// PasswordResetRequestForm はリセットリンクのメール送信を要求します。
type PasswordResetRequestForm struct {
	Email string
}

// Validate はメールアドレスの形式を検証します。登録の有無はユースケースで確認します。
func (f *PasswordResetRequestForm) Validate() FieldErrors {
	errs := FieldErrors{}
	f.Email = strings.TrimSpace(f.Email)
	switch {
	case f.Email == "":
		errs.Add("email", MsgRequired)
	case !validEmail(f.Email):
		errs.Add("email", MsgEmailInvalid)
	}
	return errs
}

func validatePasswordPair(errs FieldErrors, field, confirmField, password, confirm string) {
	if password == "" {
		errs.Add(field, MsgRequired)
	}
	if confirm == "" {
		errs.Add(confirmField, MsgRequired)
	}
	if password == "" || confirm == "" {
		return
	}
	if password != confirm {
		errs.Add(confirmField, MsgPasswordMismatch)
		return
	}
	if err := validatePassword(password); err != nil {
		errs.Add(confirmField, err.Error())
	}
}
