package wallpaper

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const maxLabelWidth = Width - 2*frameInset - 16

// renderLabel draws text with the 7x13 bitmap face and upscales it by scale,
// shrinking the scale for long names so the label stays inside the frame.
func renderLabel(text string, scale int) *image.NRGBA {
	face := basicfont.Face7x13

	adv := font.MeasureString(face, text).Ceil()
	h := face.Metrics().Height.Ceil()

	img := image.NewNRGBA(image.Rect(0, 0, adv+2, h+2))
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: 255}),
		Face: face,
		Dot:  fixed.P(1, 1+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)

	for scale > 1 && img.Bounds().Dx()*scale > maxLabelWidth {
		scale--
	}
	if scale <= 1 {
		return img
	}

	b := img.Bounds()
	return imaging.Resize(img, b.Dx()*scale, b.Dy()*scale, imaging.NearestNeighbor)
}
