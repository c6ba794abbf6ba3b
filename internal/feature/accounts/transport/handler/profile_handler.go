package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"blog_backend/internal/feature/accounts/domain/entity"
	"blog_backend/internal/feature/accounts/transport/http/dto"
	"blog_backend/internal/feature/accounts/usecase"
)

// ProfileUsecase はユーザーページとアカウント編集のユースケースを定義します。
type ProfileUsecase interface {
	Detail(ctx context.Context, viewerID, userID uint, page string) (*usecase.UserDetail, error)
	EditForm(ctx context.Context, actorID, targetID uint) (*entity.User, *entity.Profile, error)
	UpdateAccount(ctx context.Context, actorID, targetID uint, account usecase.AccountForm,
		profile usecase.ProfileForm) (*entity.User, *entity.Profile, error)
}

// ProfileHandler はユーザーページと編集のHTTPリクエストを処理します。
type ProfileHandler struct {
	profiles ProfileUsecase
}

// NewProfileHandler はProfileHandlerの新しいインスタンスを生成します。
func NewProfileHandler(profiles ProfileUsecase) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// DetailPath はユーザーページのパスを返します。
func DetailPath(userID uint) string {
	return fmt.Sprintf("/accounts/%d/", userID)
}

// Detail はユーザー情報と記事一覧（1ページ5件）を返します。
// ?page= が数値でなければ1ページ目、範囲外なら最終ページになります。
func (h *ProfileHandler) Detail(c *gin.Context) {
	viewerID, _ := currentUserID(c)
	userID, ok := pathUserID(c)
	if !ok {
		writeError(c, usecase.ErrUserNotFound)
		return
	}

	d, err := h.profiles.Detail(c.Request.Context(), viewerID, userID, c.Query("page"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserDetailResponse(d))
}

// Edit は編集画面の初期値を返します。本人以外は403です。
func (h *ProfileHandler) Edit(c *gin.Context) {
	actorID, _ := currentUserID(c)
	targetID, ok := pathUserID(c)
	if !ok {
		writeError(c, usecase.ErrUserNotFound)
		return
	}

	user, profile, err := h.profiles.EditForm(c.Request.Context(), actorID, targetID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AccountEditResponse{
		User:    dto.NewUserResponse(user),
		Profile: dto.NewProfileResponse(profile),
	})
}

// Update はアカウントとプロフィールの両フォームを保存します。
// - 本人以外は入力内容にかかわらず403
// - どちらかのフォームに誤りがあれば、両方のエラーをまとめて400で返し、何も保存しない
// - 成功時はユーザーページへ誘導
func (h *ProfileHandler) Update(c *gin.Context) {
	actorID, _ := currentUserID(c)
	targetID, ok := pathUserID(c)
	if !ok {
		writeError(c, usecase.ErrUserNotFound)
		return
	}
	if actorID != targetID {
		log.Warn().Uint("user_id", actorID).Uint("target_id", targetID).Msg("account update denied")
		writeError(c, usecase.ErrForbidden)
		return
	}

	var req dto.AccountUpdateReq
	if !bind(c, &req) {
		return
	}
	avatar, err := readAvatar(c)
	if err != nil {
		log.Warn().Err(err).Uint("user_id", actorID).Msg("failed to read avatar upload")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:  "invalid request",
			Fields: map[string]string{"avatar": usecase.MsgAvatarNotImage},
		})
		return
	}

	user, profile, err := h.profiles.UpdateAccount(c.Request.Context(), actorID, targetID,
		usecase.AccountForm{FirstName: req.FirstName, LastName: req.LastName, Email: req.Email},
		usecase.ProfileForm{BirthDate: req.BirthDate, Avatar: avatar, ClearAvatar: req.AvatarClear},
	)
	if err != nil {
		writeError(c, err)
		return
	}

	log.Info().Uint("user_id", user.ID).Msg("account updated")
	c.JSON(http.StatusOK, dto.AccountEditResponse{
		Message:  "ok",
		Redirect: DetailPath(user.ID),
		User:     dto.NewUserResponse(user),
		Profile:  dto.NewProfileResponse(profile),
	})
}

// readAvatar はmultipartの "avatar" ファイルを読み込みます。ファイルがなければ nil です。
// サイズ超過を検出できるよう、上限より1バイト多く読み込みます。
func readAvatar(c *gin.Context) (*usecase.Upload, error) {
	fh, err := c.FormFile("avatar")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, usecase.MaxAvatarSize+1))
	if err != nil {
		return nil, err
	}
	return &usecase.Upload{Filename: fh.Filename, Data: data}, nil
}
