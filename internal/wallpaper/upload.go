package wallpaper

import (
	"context"
	"fmt"
	"image"
	"io"

	_ "golang.org/x/image/webp"

	"github.com/brogergvhs/pgrwall/internal/util"
	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// ResizeUpload decodes an uploaded PNG, JPEG or WebP background, stretches it
// to exactly Width x Height and saves it as PNG at dst.
func ResizeUpload(r io.Reader, dst string) error {
	src, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("decode upload: %w", err)
	}

	out := image.NewNRGBA(image.Rect(0, 0, Width, Height))
	draw.CatmullRom.Scale(out, out.Bounds(), src, src.Bounds(), draw.Src, nil)

	return util.WriteFileAtomic(dst, func(w io.Writer) error {
		return imaging.Encode(w, out, imaging.PNG)
	})
}

// SuggestThemeColor downloads an art and returns its dominant color as
// "#rrggbb".
func SuggestThemeColor(ctx context.Context, f Fetcher, url string) (string, error) {
	img, err := f.FetchImage(ctx, url)
	if err != nil {
		return "", err
	}

	c, ok := DominantColor(img)
	if !ok {
		return "", fmt.Errorf("no opaque pixels in %s", url)
	}

	return c.Hex(), nil
}
