package wallpaper

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
)

var ErrBadColor = errors.New("invalid theme color")

// ParseThemeColor accepts "#rrggbb", "#rgb" and the same without '#'.
func ParseThemeColor(s string) (colorful.Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if !isHexColor(s) {
		return colorful.Color{}, fmt.Errorf("%w %q", ErrBadColor, s)
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("%w %q", ErrBadColor, s)
	}

	return c, nil
}

// isHexColor reports whether s is '#' followed by exactly 3 or 6 hex digits.
// colorful.Hex alone accepts short and overlong input.
func isHexColor(s string) bool {
	if len(s) != 4 && len(s) != 7 {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// DominantColor returns the average color of the most populated bucket after
// quantizing the image to 4 bits per channel. Mostly transparent pixels are
// ignored.
func DominantColor(img image.Image) (colorful.Color, bool) {
	small := imaging.Resize(img, 96, 0, imaging.Box)

	type bucket struct {
		n       int
		r, g, b int
	}
	var buckets [4096]bucket

	best := -1
	for i := 0; i+3 < len(small.Pix); i += 4 {
		r, g, b, a := int(small.Pix[i]), int(small.Pix[i+1]), int(small.Pix[i+2]), small.Pix[i+3]
		if a < 128 {
			continue
		}

		k := (r>>4)<<8 | (g>>4)<<4 | b>>4
		bk := &buckets[k]
		bk.n++
		bk.r += r
		bk.g += g
		bk.b += b

		if best < 0 || bk.n > buckets[best].n {
			best = k
		}
	}

	if best < 0 {
		return colorful.Color{}, false
	}

	bk := buckets[best]
	return colorful.Color{
		R: float64(bk.r) / float64(bk.n) / 255,
		G: float64(bk.g) / float64(bk.n) / 255,
		B: float64(bk.b) / float64(bk.n) / 255,
	}, true
}
