package render

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// TextLabeler draws a place name onto a white square of Size pixels.
type TextLabeler struct {
	Size int
	face font.Face
}

func NewTextLabeler(size int) *TextLabeler {
	if size <= 0 {
		size = 100
	}
	return &TextLabeler{Size: size, face: basicfont.Face7x13}
}

// Render draws text at the face's native size and scales it up to fill the
// square, keeping its aspect ratio.
func (l *TextLabeler) Render(text string) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, l.Size, l.Size))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)

	if text == "" {
		return out
	}

	metrics := l.face.Metrics()
	d := &font.Drawer{Face: l.face}
	width := d.MeasureString(text).Ceil()
	height := (metrics.Ascent + metrics.Descent).Ceil()
	if width <= 0 || height <= 0 {
		return out
	}

	glyphs := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(glyphs, glyphs.Bounds(), image.White, image.Point{}, draw.Src)
	d.Dst = glyphs
	d.Src = image.Black
	d.Dot = fixed.Point26_6{Y: metrics.Ascent}
	d.DrawString(text)

	k := min(float64(l.Size)/float64(width), float64(l.Size)/float64(height))
	w := max(1, int(float64(width)*k))
	h := max(1, int(float64(height)*k))
	draw.NearestNeighbor.Scale(out, image.Rect(0, 0, w, h), glyphs, glyphs.Bounds(), draw.Src, nil)

	return out
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode label: %w", err)
	}
	return nil
}
