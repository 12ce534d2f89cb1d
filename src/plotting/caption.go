package plotting

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// drawCaption writes text near the bottom-left corner of img in a muted grey.
func drawCaption(img image.Image, text string) image.Image {
	text = strings.TrimSpace(text)
	if img == nil || text == "" {
		return img
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)

	face := basicfont.Face7x13
	dr := &font.Drawer{Dst: rgba, Src: image.NewUniform(color.RGBA{R: 90, G: 90, B: 90, A: 255}), Face: face}
	// Long captions are cut to the image width rather than wrapped.
	maxW := b.Dx() - 16
	for len(text) > 1 && dr.MeasureString(text).Ceil() > maxW {
		text = text[:len(text)-1]
	}
	dr.Dot = fixed.Point26_6{X: fixed.I(b.Min.X + 8), Y: fixed.I(b.Max.Y - 6)}
	dr.DrawString(text)
	return rgba
}
