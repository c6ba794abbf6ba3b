package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"blog_backend/internal/feature/accounts/domain/entity"
	articleentity "blog_backend/internal/feature/articles/domain/entity"
	"blog_backend/internal/shared/pagination"
)

const (
	// ArticlesPerPage は詳細ページの記事一覧の1ページあたりの件数です。
	ArticlesPerPage = 5
	articlesOrphans = 0

	avatarKeyPrefix = "user_pics"
)

// UserDetail はユーザーページに表示する内容です。
type UserDetail struct {
	User     *entity.User
	Profile  *entity.Profile
	Articles []articleentity.Article
	Page     pagination.Page

	// IsOwner は閲覧者が本人の場合に true です。記事の一括削除は本人のみ可能です。
	IsOwner bool
}

// profileUsecase はユーザーページとアカウント編集を実装します。
type profileUsecase struct {
	users    UserRepository
	profiles ProfileRepository
	articles ArticleRepository
	avatars  AvatarStorage
}

// NewProfileUsecase はprofileUsecaseの新しいインスタンスを生成します。
// オブジェクトストレージ未設定時は avatars が nil で、アップロードは拒否されます。
func NewProfileUsecase(users UserRepository, profiles ProfileRepository, articles ArticleRepository,
	avatars AvatarStorage) *profileUsecase {
	return &profileUsecase{
		users:    users,
		profiles: profiles,
		articles: articles,
		avatars:  avatars,
	}
}

// Detail は viewerID から見たユーザーページを返します。
// page はクエリ文字列のページ番号そのままです。
func (u *profileUsecase) Detail(ctx context.Context, viewerID, userID uint, page string) (*UserDetail, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := u.profiles.FindByUserID(ctx, userID)
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}

	count, err := u.articles.CountByAuthor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count articles: %w", err)
	}
	pg := pagination.Paginator{Count: count, PerPage: ArticlesPerPage, Orphans: articlesOrphans}.GetPage(page)

	articles := []articleentity.Article{}
	if pg.Limit > 0 {
		articles, err = u.articles.ListByAuthor(ctx, userID, pg.Offset, pg.Limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list articles: %w", err)
		}
	}

	return &UserDetail{
		User:     user,
		Profile:  profile,
		Articles: articles,
		Page:     pg,
		IsOwner:  viewerID == userID,
	}, nil
}

// EditForm は編集画面用に対象ユーザーの現在のアカウントとプロフィールを返します。
// 本人のみ開けます。
func (u *profileUsecase) EditForm(ctx context.Context, actorID, targetID uint) (*entity.User, *entity.Profile, error) {
	if actorID != targetID {
		return nil, nil, ErrForbidden
	}
	user, err := u.users.FindByID(ctx, targetID)
	if err != nil {
		return nil, nil, err
	}
	profile, err := ensureProfile(ctx, u.profiles, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, profile, nil
}

// UpdateAccount は対象ユーザーのアカウントとプロフィールのフォームを保存します。
// 両方のフォームを検証してから保存し、検証エラーがあれば何も書き込まず *FormErrors を返します。
// 2つの保存は1つのトランザクションにまとめていません。
func (u *profileUsecase) UpdateAccount(ctx context.Context, actorID, targetID uint, account AccountForm,
	profile ProfileForm) (*entity.User, *entity.Profile, error) {
	if actorID != targetID {
		return nil, nil, ErrForbidden
	}
	user, err := u.users.FindByID(ctx, targetID)
	if err != nil {
		return nil, nil, err
	}

	accErrs := account.Validate()
	profErrs := profile.Validate()
	if profile.Avatar != nil && u.avatars == nil {
		profErrs.Add("avatar", MsgAvatarUnavailable)
	}
	if len(accErrs) > 0 || len(profErrs) > 0 {
		return nil, nil, &FormErrors{Account: accErrs, Profile: profErrs}
	}

	user.FirstName = account.FirstName
	user.LastName = account.LastName
	user.Email = account.Email
	if err := u.users.Update(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("failed to update user: %w", err)
	}

	p, err := ensureProfile(ctx, u.profiles, user.ID)
	if err != nil {
		return nil, nil, err
	}
	p.BirthDate = profile.birthDate

	oldAvatar := p.Avatar
	switch {
	case profile.Avatar != nil:
		key := avatarKey(user.ID, profile.Avatar.Filename, profile.contentType)
		data := profile.Avatar.Data
		if err := u.avatars.Put(ctx, key, bytes.NewReader(data), int64(len(data)), profile.contentType); err != nil {
			return nil, nil, fmt.Errorf("failed to store avatar: %w", err)
		}
		p.Avatar = key
	case profile.ClearAvatar:
		p.Avatar = ""
	}

	if err := u.profiles.Update(ctx, p); err != nil {
		return nil, nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if oldAvatar != "" && oldAvatar != p.Avatar {
		u.deleteAvatar(ctx, oldAvatar)
	}
	return user, p, nil
}

// deleteAvatar は置き換えられたアバターを削除します。失敗しても孤立オブジェクトが残るだけです。
func (u *profileUsecase) deleteAvatar(ctx context.Context, key string) {
	if u.avatars == nil {
		return
	}
	if err := u.avatars.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to delete old avatar")
	}
}

// avatarKey は "user_pics/<user id>/<uuid><ext>" を組み立てます。
func avatarKey(userID uint, filename, contentType string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		if mt := mimetype.Lookup(contentType); mt != nil {
			ext = mt.Extension()
		}
	}
	return fmt.Sprintf("%s/%d/%s%s", avatarKeyPrefix, userID, uuid.NewString(), ext)
}
