// Package preview draws images as terminal text using ANSI true-color
// half-block characters.
//
// Each cell shows two vertical pixels: the top pixel is the foreground color
// and the bottom pixel is the background color of a "▀" character.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"
)

// Fit scales img to fill at most cols x rows cells, keeping its aspect ratio.
// The result is centered on a black canvas of cols x rows*2 pixels. A
// non-positive size or an empty image yields nil.
func Fit(img image.Image, cols, rows int) *image.RGBA {
	if cols <= 0 || rows <= 0 || img == nil || img.Bounds().Empty() {
		return nil
	}

	pixW, pixH := cols, rows*2
	dst := image.NewRGBA(image.Rect(0, 0, pixW, pixH))

	src := img.Bounds()
	scale := min(float64(pixW)/float64(src.Dx()), float64(pixH)/float64(src.Dy()))

	w := max(int(float64(src.Dx())*scale), 1)
	h := max(int(float64(src.Dy())*scale), 1)

	x0 := (pixW - w) / 2
	y0 := (pixH - h) / 2

	draw.ApproxBiLinear.Scale(dst, image.Rect(x0, y0, x0+w, y0+h), img, src, draw.Over, nil)

	return dst
}

// Render writes img as rows of half-block cells, one line per two pixel rows.
// Each line ends with an attribute reset.
func Render(img *image.RGBA) string {
	if img == nil {
		return ""
	}

	var b strings.Builder

	bounds := img.Bounds()

	for y := bounds.Min.Y; y < bounds.Max.Y; y += 2 {
		if y > bounds.Min.Y {
			b.WriteByte('\n')
		}

		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			top := img.RGBAAt(x, y)

			var bot color.RGBA
			if y+1 < bounds.Max.Y {
				bot = img.RGBAAt(x, y+1)
			}

			fmt.Fprintf(&b, "\033[38;2;%d;%d;%dm\033[48;2;%d;%d;%dm▀", top.R, top.G, top.B, bot.R, bot.G, bot.B)
		}

		b.WriteString("\033[0m")
	}

	return b.String()
}

// Thumbnail fits img into cols x rows cells and renders it.
func Thumbnail(img image.Image, cols, rows int) string {
	return Render(Fit(img, cols, rows))
}
