package tools

import (
	"bytes"
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	"net/url"
	"strings"
	"unicode"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// The initials are drawn on a small canvas with the 7x13 bitmap face and
// scaled up afterwards.
const avatarCanvas = 32

var avatarPalette = []color.NRGBA{
	{R: 0x87, G: 0x7e, B: 0xff, A: 0xff},
	{R: 0xff, G: 0x5a, B: 0x5a, A: 0xff},
	{R: 0x2f, G: 0xb8, B: 0x8a, A: 0xff},
	{R: 0xff, G: 0xb6, B: 0x20, A: 0xff},
	{R: 0x1f, G: 0x8f, B: 0xff, A: 0xff},
	{R: 0xb5, G: 0x4c, B: 0xd6, A: 0xff},
}

// Initials returns up to two upper-case initials of name.
func Initials(name string) string {
	var initials []rune
	for _, word := range strings.Fields(name) {
		initials = append(initials, unicode.ToUpper([]rune(word)[0]))
		if len(initials) == 2 {
			break
		}
	}
	return string(initials)
}

// AvatarURLs builds initials avatar URLs served by this service.
type AvatarURLs struct {
	BaseURL string
}

func (a AvatarURLs) GetInitials(name string) string {
	return a.BaseURL + "/api/avatars/initials?name=" + url.QueryEscape(name)
}

// RenderInitials draws the initials of name on a colored square of size pixels
// and encodes it as PNG. The color is stable for a given name.
func RenderInitials(name string, size int) ([]byte, error) {
	h := fnv.New32a()
	h.Write([]byte(name))
	bg := avatarPalette[h.Sum32()%uint32(len(avatarPalette))]

	canvas := image.NewNRGBA(image.Rect(0, 0, avatarCanvas, avatarCanvas))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	text := Initials(name)
	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
	}
	width := d.MeasureString(text)
	metrics := basicfont.Face7x13.Metrics()
	d.Dot = fixed.Point26_6{
		X: (fixed.I(avatarCanvas) - width) / 2,
		Y: (fixed.I(avatarCanvas) + metrics.Ascent - metrics.Descent) / 2,
	}
	d.DrawString(text)

	avatar := imaging.Resize(canvas, size, size, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, avatar, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
