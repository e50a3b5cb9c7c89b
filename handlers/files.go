package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"snapgram_api/tools"
	"snapgram_api/types"

	"github.com/gin-gonic/gin"
)

const (
	defaultAvatarSize = 256
	maxAvatarSize     = 1024
)

// FileOpener streams stored files.
type FileOpener interface {
	OpenFile(ctx context.Context, id string) (io.ReadCloser, *types.StoredFile, error)
}

// FilePreviewHandler renders the preview URLs stored in posts and profiles.
// Files never change under an id, so responses are cached for good.
func FilePreviewHandler(logger tools.Logger, files FileOpener) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts, err := tools.ParsePreviewOptions(c.Request.URL.Query())
		if err != nil {
			tools.LogError(logger, c, err)
			return
		}

		rc, _, err := files.OpenFile(c.Request.Context(), c.Param("id"))
		if err != nil {
			tools.LogError(logger, c, err)
			return
		}
		defer rc.Close()

		content, err := io.ReadAll(io.LimitReader(rc, types.MAX_UPLOAD_SIZE+1))
		if err != nil {
			tools.LogError(logger, c, fmt.Errorf("error reading file: %w", err))
			return
		}

		preview, err := tools.RenderPreview(logger, bytes.NewReader(content), opts)
		if err != nil {
			tools.LogError(logger, c, err)
			return
		}

		c.Header("Cache-Control", "public, max-age=31536000, immutable")
		c.Data(http.StatusOK, "image/jpeg", preview)
	}
}

func InitialsAvatarHandler(logger tools.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Query("name")
		if name == "" {
			tools.LogError(logger, c, fmt.Errorf("%w: name is required", types.ErrInvalidInput))
			return
		}

		size := defaultAvatarSize
		if v := c.Query("size"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > maxAvatarSize {
				tools.LogError(logger, c, fmt.Errorf("%w: size must be between 1 and %d", types.ErrInvalidInput, maxAvatarSize))
				return
			}
			size = n
		}

		avatar, err := tools.RenderInitials(name, size)
		if err != nil {
			tools.LogError(logger, c, err)
			return
		}

		c.Header("Cache-Control", "public, max-age=86400")
		c.Data(http.StatusOK, "image/png", avatar)
	}
}
