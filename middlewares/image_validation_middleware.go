package middlewares

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"snapgram_api/tools"
	"snapgram_api/types"

	"github.com/gin-gonic/gin"
)

const fileKey = "file"

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ImageValidationMiddleware checks the upload in the types.UPLOAD_FORM_FIELD
// form field: one image of at most types.MAX_UPLOAD_SIZE bytes. The file is
// optional unless required is set; a valid one is available via UploadedFile.
func ImageValidationMiddleware(logger tools.Logger, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, types.MAX_UPLOAD_SIZE+1<<20)

		header, err := c.FormFile(types.UPLOAD_FORM_FIELD)
		if errors.Is(err, http.ErrMissingFile) && !required {
			c.Next()
			return
		}
		if err != nil {
			tools.LogError(logger, c, fmt.Errorf("%w: no file is received: %w", types.ErrInvalidInput, err))
			return
		}

		f, file, err := openImage(header)
		if err != nil {
			tools.LogError(logger, c, err)
			return
		}
		defer f.Close()

		c.Set(fileKey, file)
		c.Next()
	}
}

// UploadedFile returns the upload validated by ImageValidationMiddleware.
func UploadedFile(c *gin.Context) *types.File {
	v, ok := c.Get(fileKey)
	if !ok {
		return nil
	}
	file, _ := v.(*types.File)
	return file
}

func openImage(header *multipart.FileHeader) (multipart.File, *types.File, error) {
	if header.Size > types.MAX_UPLOAD_SIZE {
		return nil, nil, fmt.Errorf("%w: file too large: maximum size 5MB", types.ErrInvalidInput)
	}

	f, err := header.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("error opening file: %w", err)
	}

	// Detect content type from the first 512 bytes
	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		f.Close()
		return nil, nil, fmt.Errorf("error reading file: %w", err)
	}

	contentType := http.DetectContentType(buf[:n])
	if !allowedImageTypes[contentType] {
		f.Close()
		return nil, nil, fmt.Errorf("%w: unsupported file type: %s", types.ErrInvalidInput, contentType)
	}

	if _, err = f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("error seeking file: %w", err)
	}

	if err := tools.CheckImageBounds(f); err != nil {
		f.Close()
		return nil, nil, err
	}

	return f, &types.File{
		Name:        header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Content:     f,
	}, nil
}
