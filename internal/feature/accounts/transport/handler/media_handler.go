package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"blog_backend/internal/feature/accounts/transport/http/dto"
	"blog_backend/internal/platform/storage"
)

// sniffLen はContent-Type判定のために先読みするバイト数です。
const sniffLen = 3072

// ObjectReader はアップロード済みオブジェクトを読み出します。
type ObjectReader interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// MediaHandler はアバター画像などのアップロード済みファイルを配信します。
type MediaHandler struct {
	objects ObjectReader
}

// NewMediaHandler はMediaHandlerの新しいインスタンスを生成します。objects が nil の場合は常に404です。
func NewMediaHandler(objects ObjectReader) *MediaHandler {
	return &MediaHandler{objects: objects}
}

// Serve は /media/*key のオブジェクトをストリーミングで返します。
func (h *MediaHandler) Serve(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if h.objects == nil || key == "" {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "not found"})
		return
	}

	rc, err := h.objects.Get(c.Request.Context(), key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to read media object")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
		return
	}
	defer rc.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(rc, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		log.Error().Err(err).Str("key", key).Msg("failed to read media object")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
		return
	}
	head = head[:n]
	contentType := mimetype.Detect(head).String()

	c.Header("Cache-Control", "public, max-age=86400")
	c.Header("X-Content-Type-Options", "nosniff")
	c.DataFromReader(http.StatusOK, -1, contentType, io.MultiReader(bytes.NewReader(head), rc), nil)
}
