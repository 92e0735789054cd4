package wallpaper

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	images map[string]image.Image
	calls  []string
}

func (f *fakeFetcher) FetchImage(_ context.Context, url string) (image.Image, error) {
	f.calls = append(f.calls, url)
	img, ok := f.images[url]
	if !ok {
		return nil, errors.New("HTTP 404")
	}
	return img, nil
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	return imaging.New(w, h, c)
}

func TestParseThemeColor(t *testing.T) {
	c, err := ParseThemeColor("#B7011D")
	require.NoError(t, err)
	assert.Equal(t, "#b7011d", c.Hex())

	c, err = ParseThemeColor("b7011d")
	require.NoError(t, err)
	assert.Equal(t, "#b7011d", c.Hex())

	c, err = ParseThemeColor("#f0a")
	require.NoError(t, err)
	assert.Equal(t, "#ff00aa", c.Hex())

	for _, bad := range []string{"crimson", "#12345", "12345", "#b7011dff", "#b7011dZZ", "#ggg", "", "#"} {
		_, err = ParseThemeColor(bad)
		assert.ErrorIs(t, err, ErrBadColor, bad)
	}
}

func TestDominantColor(t *testing.T) {
	img := solid(100, 100, color.NRGBA{R: 20, G: 200, B: 40, A: 255})
	// a smaller red patch
	for y := 0; y < 30; y++ {
		for x := 0; x < 30; x++ {
			img.Set(x, y, color.NRGBA{R: 220, A: 255})
		}
	}

	c, ok := DominantColor(img)
	require.True(t, ok)
	r, g, b := c.RGB255()
	assert.InDelta(t, 20, int(r), 2)
	assert.InDelta(t, 200, int(g), 2)
	assert.InDelta(t, 40, int(b), 2)

	_, ok = DominantColor(solid(10, 10, color.NRGBA{}))
	assert.False(t, ok, "transparent images have no dominant color")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Liv_ Eclipse.png", FileName("Liv: Eclipse"))
	assert.Equal(t, "Lucia.png", FileName("Lucia"))
}

func TestCompose_GeneratedBackground(t *testing.T) {
	f := &fakeFetcher{images: map[string]image.Image{
		"https://x/Lucia.png": solid(300, 600, color.NRGBA{R: 255, G: 255, B: 255, A: 255}),
	}}
	out := filepath.Join(t.TempDir(), FileName("Lucia: Crimson Abyss"))

	err := NewComposer(f, nil).Compose(context.Background(), Options{
		OutputPath:    out,
		Character:     "Lucia: Crimson Abyss",
		ForegroundURL: "https://x/Lucia.png",
		ThemeColor:    "#B7011D",
	})
	require.NoError(t, err)

	img, err := imaging.Open(out)
	require.NoError(t, err)
	assert.Equal(t, Width, img.Bounds().Dx())
	assert.Equal(t, Height, img.Bounds().Dy())

	r, g, b, _ := img.At(Width/2, 2).RGBA()
	assert.Equal(t, [3]uint32{0xb7, 0x01, 0x1d}, [3]uint32{r >> 8, g >> 8, b >> 8}, "top band uses the theme color")
	assert.Equal(t, []string{"https://x/Lucia.png"}, f.calls)
}

func TestCompose_LocalBackgroundWins(t *testing.T) {
	dir := t.TempDir()
	bgPath := filepath.Join(dir, "custom_bg_img.png")
	require.NoError(t, imaging.Save(solid(Width, Height, color.NRGBA{B: 255, A: 255}), bgPath))

	f := &fakeFetcher{images: map[string]image.Image{
		"https://x/fg.png": solid(10, 10, color.NRGBA{R: 255, A: 255}),
		"https://x/bg.png": solid(10, 10, color.NRGBA{G: 255, A: 255}),
	}}
	out := filepath.Join(dir, "out.png")

	err := NewComposer(f, nil).Compose(context.Background(), Options{
		OutputPath:      out,
		ForegroundURL:   "https://x/fg.png",
		BackgroundURL:   "https://x/bg.png",
		LocalBackground: bgPath,
		ThemeColor:      "#B7011D",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://x/fg.png"}, f.calls, "background URL is not fetched when a local file is given")

	img, err := imaging.Open(out)
	require.NoError(t, err)
	r, g, b, _ := img.At(5, Height/3).RGBA()
	assert.Equal(t, [3]uint32{0, 0, 255}, [3]uint32{r >> 8, g >> 8, b >> 8})
}

func TestCompose_Errors(t *testing.T) {
	c := NewComposer(&fakeFetcher{}, nil)
	out := filepath.Join(t.TempDir(), "out.png")

	err := c.Compose(context.Background(), Options{OutputPath: out, ThemeColor: "#fff"})
	assert.ErrorIs(t, err, ErrNoForeground)

	err = c.Compose(context.Background(), Options{OutputPath: out, ForegroundURL: "https://x/a.png", ThemeColor: "nope"})
	assert.ErrorIs(t, err, ErrBadColor)

	err = c.Compose(context.Background(), Options{OutputPath: out, ForegroundURL: "https://x/a.png", ThemeColor: "#fff"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "foreground")

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no file is written on failure")
}

func TestResizeUpload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solid(100, 50, color.NRGBA{R: 10, G: 20, B: 30, A: 255}), nil))

	dst := filepath.Join(t.TempDir(), "static", "resources", "custom_bg_img.png")
	require.NoError(t, ResizeUpload(&buf, dst))

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, Width, cfg.Width)
	assert.Equal(t, Height, cfg.Height)
}

func TestResizeUpload_NotAnImage(t *testing.T) {
	err := ResizeUpload(bytes.NewReader([]byte("hello")), filepath.Join(t.TempDir(), "bg.png"))
	require.Error(t, err)
}

func TestSuggestThemeColor(t *testing.T) {
	f := &fakeFetcher{images: map[string]image.Image{
		"https://x/a.png": solid(20, 20, color.NRGBA{R: 0xb7, G: 0x01, B: 0x1d, A: 255}),
	}}

	hex, err := SuggestThemeColor(context.Background(), f, "https://x/a.png")
	require.NoError(t, err)
	assert.Equal(t, "#b7011d", hex)
}

func TestFillRect_SourceOverTransparent(t *testing.T) {
	dst := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	fillRect(dst, dst.Bounds(), color.NRGBA{R: 183, G: 1, B: 29, A: 90})

	got := dst.NRGBAAt(1, 1)
	assert.InDelta(t, 183, int(got.R), 1)
	assert.InDelta(t, 1, int(got.G), 1)
	assert.InDelta(t, 29, int(got.B), 1)
	assert.Equal(t, uint8(90), got.A)
}

func TestCompose_TransparentUpload(t *testing.T) {
	dir := t.TempDir()
	bgPath := filepath.Join(dir, "custom_bg_img.png")
	require.NoError(t, imaging.Save(solid(Width, Height, color.NRGBA{R: 255, G: 255, B: 255, A: 0}), bgPath))

	f := &fakeFetcher{images: map[string]image.Image{
		"https://x/fg.png": solid(10, 10, color.NRGBA{R: 255, A: 255}),
	}}
	out := filepath.Join(dir, "out.png")

	err := NewComposer(f, nil).Compose(context.Background(), Options{
		OutputPath:      out,
		ForegroundURL:   "https://x/fg.png",
		LocalBackground: bgPath,
		ThemeColor:      "#B7011D",
	})
	require.NoError(t, err)

	img, err := imaging.Open(out)
	require.NoError(t, err)
	nrgba := imaging.Clone(img)

	bare := nrgba.NRGBAAt(5, Height/3)
	assert.Equal(t, color.NRGBA{A: 255}, bare, "transparent background is flattened onto black")

	// the translucent frame over black
	frame := nrgba.NRGBAAt(frameInset+1, Height/3)
	assert.Equal(t, uint8(255), frame.A)
	assert.InDelta(t, 183*90/255, int(frame.R), 2)
	assert.InDelta(t, 29*90/255, int(frame.B), 2)
}
