// Package dto はaccountsフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
// リクエストはJSONとフォーム（multipart含む）の両方を受け付けます。
package dto

// LoginReq は /accounts/login/ のリクエストボディです。
type LoginReq struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// RegisterReq は /accounts/register/ のリクエストボディです。
// 詳細な検証（ユーザー名の文字種、パスワード一致など）はユースケースで行います。
type RegisterReq struct {
	Username  string `json:"username" form:"username" binding:"max=150"`
	Password1 string `json:"password1" form:"password1"`
	Password2 string `json:"password2" form:"password2"`
	FirstName string `json:"first_name" form:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" form:"last_name" binding:"max=150"`
	Email     string `json:"email" form:"email" binding:"max=254"`

	// Next は登録後のリダイレクト先です。クエリ文字列でも指定できます。
	Next string `json:"next" form:"next"`
}

// AccountUpdateReq は /accounts/:id/update/ のリクエストボディです。
// アバター画像は multipart の "avatar" フィールドで受け取ります。
type AccountUpdateReq struct {
	FirstName   string `json:"first_name" form:"first_name" binding:"max=150"`
	LastName    string `json:"last_name" form:"last_name" binding:"max=150"`
	Email       string `json:"email" form:"email" binding:"max=254"`
	BirthDate   string `json:"birth_date" form:"birth_date"`
	AvatarClear bool   `json:"avatar_clear" form:"avatar_clear"`
}

// ChangePasswordReq は /accounts/password-change/ のリクエストボディです。
type ChangePasswordReq struct {
	OldPassword     string `json:"old_password" form:"old_password"`
	Password        string `json:"password" form:"password"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm"`
}

// PasswordResetReq は /accounts/password-reset/ のリクエストボディです。
type PasswordResetReq struct {
	Email string `json:"email" form:"email"`
}

// SetPasswordReq は /accounts/password-reset/:token/ のリクエストボディです。
type SetPasswordReq struct {
	Password        string `json:"password" form:"password"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm"`
}
