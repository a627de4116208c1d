// Package testutil generates synthetic document images for tests.
package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// TextLine places one line of text at a pixel position.
type TextLine struct {
	Text string
	X    int
	Y    int
}

// DocumentImage renders lines of text on a white background, producing an
// input that resembles a scanned page.
func DocumentImage(width, height int, lines ...TextLine) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: basicfont.Face7x13,
	}
	for _, line := range lines {
		drawer.Dot = fixed.P(line.X, line.Y)
		drawer.DrawString(line.Text)
	}
	return img
}

// TextImage renders a single centered line of text.
func TextImage(width, height int, text string) *image.RGBA {
	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, text).Ceil()
	x := (width - textWidth) / 2
	y := (height + face.Metrics().Height.Ceil()) / 2
	return DocumentImage(width, height, TextLine{Text: text, X: x, Y: y})
}

// SaveImage writes an image as PNG, failing the test on error.
func SaveImage(t *testing.T, img image.Image, path string) {
	t.Helper()
	f, err := os.Create(path) //nolint:gosec // G304: test-controlled path
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()
	require.NoError(t, png.Encode(f, img))
}

// Grayish reports whether a color is close to neutral gray, which the
// enhancement tests use to detect contrast changes.
func Grayish(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	const tolerance = 0x0800
	diff := func(a, b uint32) uint32 {
		if a > b {
			return a - b
		}
		return b - a
	}
	return diff(r, g) < tolerance && diff(g, b) < tolerance
}
