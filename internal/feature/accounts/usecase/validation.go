package usecase

import (
	"sort"
	"strings"
)

// フォームの各入力欄に表示するエラーメッセージ。
const (
	MsgRequired             = "this field is required"
	MsgPasswordMismatch     = "passwords do not match"
	MsgOldPasswordIncorrect = "old password incorrect"
	MsgNoSuchUser           = "no user is registered with this email"
	MsgUsernameTaken        = "a user with that username already exists"
	MsgUsernameInvalid      = "enter a valid username: letters, digits and @/./+/-/_ only"
	MsgEmailInvalid         = "enter a valid email address"
	MsgDateInvalid          = "enter a valid date (YYYY-MM-DD)"
	MsgAvatarNotImage       = "upload a valid image"
	MsgAvatarTooLarge       = "the image is too large"
	MsgAvatarUnavailable    = "avatar uploads are not available"
	MsgAvatarConflict       = "either submit a file or clear the avatar, not both"
)

// FieldErrors はフォームのフィールド名と検証メッセージの対応です。
// 空でない FieldErrors はユースケースからエラーとして返されます。
type FieldErrors map[string]string

// Add はフィールドにまだエラーがなければ msg を記録します。
func (e FieldErrors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Err はエラーがあれば e を、なければ nil を返します。
func (e FieldErrors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FormErrors は編集ページで同時に送信されるアカウントとプロフィールのフォームのエラーです。
type FormErrors struct {
	Account FieldErrors
	Profile FieldErrors
}

func (e *FormErrors) Error() string {
	var parts []string
	if len(e.Account) > 0 {
		parts = append(parts, "account "+e.Account.Error())
	}
	if len(e.Profile) > 0 {
		parts = append(parts, "profile "+e.Profile.Error())
	}
	return strings.Join(parts, ", ")
}
