// Package wallpaper composes 640x1280 phone wallpapers from a character art,
// a background and a theme color.
package wallpaper

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"

	"github.com/brogergvhs/pgrwall/internal/util"
	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
)

const (
	Width  = 640
	Height = 1280

	bandHeight  = 10
	plateHeight = 96
	frameInset  = 20
	frameWidth  = 3
)

var ErrNoForeground = errors.New("no foreground art selected")

// Fetcher downloads and decodes a remote image.
type Fetcher interface {
	FetchImage(ctx context.Context, url string) (image.Image, error)
}

type Options struct {
	OutputPath string
	Character  string

	ForegroundURL string
	// BackgroundURL is used when LocalBackground is empty.
	BackgroundURL string
	// LocalBackground is a file already resized to Width x Height.
	LocalBackground string

	ThemeColor string
}

type Composer struct {
	fetch Fetcher
	log   interface{ Debugf(string, ...any) }
}

func NewComposer(f Fetcher, log interface{ Debugf(string, ...any) }) *Composer {
	return &Composer{fetch: f, log: log}
}

// Compose renders the wallpaper described by opts and writes it as PNG to
// opts.OutputPath.
func (c *Composer) Compose(ctx context.Context, opts Options) error {
	if strings.TrimSpace(opts.ForegroundURL) == "" {
		return ErrNoForeground
	}

	theme, err := ParseThemeColor(opts.ThemeColor)
	if err != nil {
		return err
	}

	fg, err := c.fetch.FetchImage(ctx, opts.ForegroundURL)
	if err != nil {
		return fmt.Errorf("foreground: %w", err)
	}

	bg, err := c.background(ctx, opts, theme)
	if err != nil {
		return fmt.Errorf("background: %w", err)
	}

	out := Render(fg, bg, theme, opts.Character)

	return util.WriteFileAtomic(opts.OutputPath, func(w io.Writer) error {
		return imaging.Encode(w, out, imaging.PNG)
	})
}

func (c *Composer) background(ctx context.Context, opts Options, theme colorful.Color) (image.Image, error) {
	switch {
	case opts.LocalBackground != "":
		c.debugf("Using uploaded background %s", opts.LocalBackground)
		img, err := imaging.Open(opts.LocalBackground)
		if err != nil {
			return nil, err
		}
		return imaging.Fill(img, Width, Height, imaging.Center, imaging.Lanczos), nil

	case opts.BackgroundURL != "":
		c.debugf("Using background art %s", opts.BackgroundURL)
		img, err := c.fetch.FetchImage(ctx, opts.BackgroundURL)
		if err != nil {
			return nil, err
		}
		filled := imaging.Fill(img, Width, Height, imaging.Center, imaging.Lanczos)
		return imaging.AdjustBrightness(imaging.Blur(filled, 6), -45), nil

	default:
		return Gradient(theme), nil
	}
}

func (c *Composer) debugf(format string, args ...any) {
	if c.log != nil {
		c.log.Debugf(format, args...)
	}
}

// Render lays out the wallpaper: background, theme bands and frame, the art
// fitted above the name plate and the character label.
func Render(fg, bg image.Image, theme colorful.Color, label string) *image.NRGBA {
	if b := bg.Bounds(); b.Dx() != Width || b.Dy() != Height {
		bg = imaging.Fill(bg, Width, Height, imaging.Center, imaging.Lanczos)
	}
	// transparent uploads end up on black
	canvas := imaging.Overlay(imaging.New(Width, Height, color.Black), bg, image.Pt(0, 0), 1.0)

	accent := toNRGBA(theme, 255)
	glow := toNRGBA(theme, 90)

	fillRect(canvas, image.Rect(0, 0, Width, bandHeight), accent)
	fillRect(canvas, image.Rect(0, Height-bandHeight, Width, Height), accent)
	strokeRect(canvas, image.Rect(frameInset, frameInset, Width-frameInset, Height-frameInset), frameWidth, glow)

	art := imaging.Fit(fg, Width-2*frameInset, Height-plateHeight-bandHeight-frameInset, imaging.Lanczos)
	ab := art.Bounds()
	artPos := image.Pt((Width-ab.Dx())/2, Height-plateHeight-bandHeight-ab.Dy())
	canvas = imaging.Overlay(canvas, art, artPos, 1.0)

	plate := image.Rect(0, Height-plateHeight-bandHeight, Width, Height-bandHeight)
	fillRect(canvas, plate, toNRGBA(theme.BlendLab(colorful.Color{}, 0.35).Clamped(), 230))

	if label != "" {
		text := renderLabel(label, 3)
		tb := text.Bounds()
		pos := image.Pt((Width-tb.Dx())/2, plate.Min.Y+(plateHeight-tb.Dy())/2)
		canvas = imaging.Overlay(canvas, text, pos, 1.0)
	}

	return canvas
}

// Gradient blends the theme color at the top into near black at the bottom.
func Gradient(theme colorful.Color) *image.NRGBA {
	top := theme.BlendLab(colorful.Color{}, 0.45).Clamped()
	bottom := colorful.Color{R: 0.04, G: 0.04, B: 0.06}

	img := image.NewNRGBA(image.Rect(0, 0, Width, Height))
	for y := 0; y < Height; y++ {
		c := toNRGBA(top.BlendLab(bottom, float64(y)/float64(Height-1)).Clamped(), 255)
		row := img.Pix[y*img.Stride : y*img.Stride+Width*4]
		for x := 0; x < len(row); x += 4 {
			row[x], row[x+1], row[x+2], row[x+3] = c.R, c.G, c.B, c.A
		}
	}

	return img
}

// FileName is the wallpaper file name for a character; ':' is not allowed in
// file names on every platform.
func FileName(character string) string {
	return strings.ReplaceAll(character, ":", "_") + ".png"
}

func toNRGBA(c colorful.Color, alpha uint8) color.NRGBA {
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}
}

func fillRect(dst *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Over)
}

func strokeRect(dst *image.NRGBA, r image.Rectangle, width int, c color.NRGBA) {
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width), c)
	fillRect(dst, image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y), c)
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y+width, r.Min.X+width, r.Max.Y-width), c)
	fillRect(dst, image.Rect(r.Max.X-width, r.Min.Y+width, r.Max.X, r.Max.Y-width), c)
}
