package tools

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"net/url"
	"strconv"

	"snapgram_api/types"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const maxPreviewSide = 4000

var gravities = map[string]imaging.Anchor{
	"center":       imaging.Center,
	"top":          imaging.Top,
	"top-left":     imaging.TopLeft,
	"top-right":    imaging.TopRight,
	"left":         imaging.Left,
	"right":        imaging.Right,
	"bottom":       imaging.Bottom,
	"bottom-left":  imaging.BottomLeft,
	"bottom-right": imaging.BottomRight,
}

// DefaultPreviewOptions are the transforms every stored post and avatar URL uses.
func DefaultPreviewOptions() types.PreviewOptions {
	return types.PreviewOptions{
		Width:   types.PREVIEW_WIDTH,
		Height:  types.PREVIEW_HEIGHT,
		Gravity: types.PREVIEW_GRAVITY,
		Quality: types.PREVIEW_QUALITY,
	}
}

// PreviewURL builds the public URL that renders fileID with opts.
func PreviewURL(baseURL, fileID string, opts types.PreviewOptions) string {
	q := url.Values{}
	q.Set("width", strconv.Itoa(opts.Width))
	q.Set("height", strconv.Itoa(opts.Height))
	q.Set("gravity", opts.Gravity)
	q.Set("quality", strconv.Itoa(opts.Quality))

	return baseURL + "/api/files/" + url.PathEscape(fileID) + "/preview?" + q.Encode()
}

// ParsePreviewOptions reads transforms from a query string, falling back to
// the defaults for anything missing.
func ParsePreviewOptions(values url.Values) (types.PreviewOptions, error) {
	opts := DefaultPreviewOptions()

	var err error
	if v := values.Get("width"); v != "" {
		if opts.Width, err = strconv.Atoi(v); err != nil || opts.Width < 1 || opts.Width > maxPreviewSide {
			return opts, fmt.Errorf("%w: width must be between 1 and %d", types.ErrInvalidInput, maxPreviewSide)
		}
	}
	if v := values.Get("height"); v != "" {
		if opts.Height, err = strconv.Atoi(v); err != nil || opts.Height < 1 || opts.Height > maxPreviewSide {
			return opts, fmt.Errorf("%w: height must be between 1 and %d", types.ErrInvalidInput, maxPreviewSide)
		}
	}
	if v := values.Get("quality"); v != "" {
		if opts.Quality, err = strconv.Atoi(v); err != nil || opts.Quality < 1 || opts.Quality > 100 {
			return opts, fmt.Errorf("%w: quality must be between 1 and 100", types.ErrInvalidInput)
		}
	}
	if v := values.Get("gravity"); v != "" {
		if _, ok := gravities[v]; !ok {
			return opts, fmt.Errorf("%w: unknown gravity %q", types.ErrInvalidInput, v)
		}
		opts.Gravity = v
	}

	return opts, nil
}

// previewSize scales the requested box down so that the source is never
// upscaled, keeping the requested aspect ratio.
func previewSize(src image.Rectangle, opts types.PreviewOptions) (int, int) {
	f := math.Min(1, math.Min(float64(src.Dx())/float64(opts.Width), float64(src.Dy())/float64(opts.Height)))

	w := int(math.Round(float64(opts.Width) * f))
	h := int(math.Round(float64(opts.Height) * f))
	return max(w, 1), max(h, 1)
}

// CheckImageBounds reads the image header in r and rejects images whose
// decoded bitmap would exceed types.MAX_IMAGE_PIXELS. The reader is rewound
// before returning.
func CheckImageBounds(r io.ReadSeeker) error {
	cfg, _, err := image.DecodeConfig(r)
	if _, serr := r.Seek(0, io.SeekStart); serr != nil {
		return fmt.Errorf("error seeking image: %w", serr)
	}
	if err != nil {
		return fmt.Errorf("%w: error reading image header: %v", types.ErrInvalidInput, err)
	}

	if int64(cfg.Width)*int64(cfg.Height) > types.MAX_IMAGE_PIXELS {
		return fmt.Errorf("%w: image of %dx%d pixels is too large", types.ErrInvalidInput, cfg.Width, cfg.Height)
	}

	return nil
}

// RenderPreview decodes the image in r, fixes its EXIF orientation, crops it to
// the requested box around the gravity anchor and encodes it as JPEG.
func RenderPreview(logger Logger, r io.ReadSeeker, opts types.PreviewOptions) ([]byte, error) {
	orientation, err := TryFindExifOrientation(logger, r)
	if err != nil {
		return nil, err
	}

	if err := CheckImageBounds(r); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: error decoding image: %v", types.ErrInvalidInput, err)
	}

	img = CorrectImageOrientation(img, orientation)

	anchor, ok := gravities[opts.Gravity]
	if !ok {
		anchor = imaging.Center
	}

	w, h := previewSize(img.Bounds(), opts)
	preview := imaging.Fill(img, w, h, anchor, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, preview, imaging.JPEG, imaging.JPEGQuality(opts.Quality)); err != nil {
		return nil, fmt.Errorf("error encoding preview: %w", err)
	}

	return buf.Bytes(), nil
}
