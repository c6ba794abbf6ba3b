package dto

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"blog_backend/internal/feature/accounts/domain/entity"
	"blog_backend/internal/feature/accounts/usecase"
)

// ErrorResponse は失敗時のレスポンスです。Fields はフィールドごとの検証メッセージです。
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// MessageResponse は成功時のレスポンスです。Redirect はクライアントが次に遷移すべきパスです。
type MessageResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

// LoginResponse はログインが成立したリクエストのレスポンスです。
// AccessToken はAPIクライアント向けのJWTで、ブラウザはセッションCookieを使います。
type LoginResponse struct {
	Message     string       `json:"message"`
	Redirect    string       `json:"redirect,omitempty"`
	AccessToken string       `json:"access_token,omitempty"`
	User        UserResponse `json:"user"`
}

// RegisterResponse は登録結果です。ActivationRequired の場合はまだログインしていません。
type RegisterResponse struct {
	Message            string       `json:"message"`
	Redirect           string       `json:"redirect"`
	ActivationRequired bool         `json:"activation_required"`
	AccessToken        string       `json:"access_token,omitempty"`
	User               UserResponse `json:"user"`
}

// UserResponse はユーザーの公開情報です。
type UserResponse struct {
	ID        uint       `json:"id"`
	Username  string     `json:"username"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	FullName  string     `json:"full_name"`
	Email     string     `json:"email,omitempty"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// ProfileResponse はプロフィール情報です。
type ProfileResponse struct {
	BirthDate *openapi_types.Date `json:"birth_date,omitempty"`
	Avatar    string              `json:"avatar,omitempty"`
	AvatarURL string              `json:"avatar_url,omitempty"`
}

// ArticleResponse は記事一覧の1件です。
type ArticleResponse struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// PageResponse はページネーション情報です。
type PageResponse struct {
	Number      int   `json:"number"`
	NumPages    int   `json:"num_pages"`
	Count       int64 `json:"count"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// UserDetailResponse は /accounts/:id/ のレスポンスです。
type UserDetailResponse struct {
	User     UserResponse      `json:"user"`
	Profile  *ProfileResponse  `json:"profile,omitempty"`
	Articles []ArticleResponse `json:"articles"`
	Page     PageResponse      `json:"page"`
	IsOwner  bool              `json:"is_owner"`
	// ShowMassDelete は記事の一括削除を表示してよいか（本人のみ）を示します。
	ShowMassDelete bool `json:"show_mass_delete"`
}

// AccountEditResponse は編集画面の初期値、および保存後の値です。
type AccountEditResponse struct {
	Message  string          `json:"message,omitempty"`
	Redirect string          `json:"redirect,omitempty"`
	User     UserResponse    `json:"user"`
	Profile  ProfileResponse `json:"profile"`
}

// ResetTokenResponse はリセットトークンが有効な場合に対象ユーザーを返します。
type ResetTokenResponse struct {
	Username string `json:"username"`
}

// MediaURL はストレージキーから配信URLを組み立てます。
func MediaURL(key string) string {
	if key == "" {
		return ""
	}
	return "/media/" + key
}

// NewUserResponse はエンティティからレスポンスを生成します。
func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		Email:     u.Email,
		IsActive:  u.IsActive,
		LastLogin: u.LastLogin,
	}
}

// NewProfileResponse はエンティティからレスポンスを生成します。
func NewProfileResponse(p *entity.Profile) ProfileResponse {
	res := ProfileResponse{Avatar: p.Avatar, AvatarURL: MediaURL(p.Avatar)}
	if p.BirthDate != nil {
		res.BirthDate = &openapi_types.Date{Time: *p.BirthDate}
	}
	return res
}

// NewUserDetailResponse はユーザーページの内容をレスポンスに変換します。
func NewUserDetailResponse(d *usecase.UserDetail) UserDetailResponse {
	res := UserDetailResponse{
		User:     NewUserResponse(d.User),
		Articles: make([]ArticleResponse, 0, len(d.Articles)),
		Page: PageResponse{
			Number:      d.Page.Number,
			NumPages:    d.Page.NumPages,
			Count:       d.Page.Count,
			HasNext:     d.Page.HasNext(),
			HasPrevious: d.Page.HasPrevious(),
		},
		IsOwner:        d.IsOwner,
		ShowMassDelete: d.IsOwner,
	}
	if d.Profile != nil {
		p := NewProfileResponse(d.Profile)
		res.Profile = &p
	}
	for _, a := range d.Articles {
		res.Articles = append(res.Articles, ArticleResponse{
			ID:        a.ID,
			Title:     a.Title,
			Text:      a.Text,
			CreatedAt: a.CreatedAt,
		})
	}
	return res
}
