package tui

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/Veraticus/sorting-hat/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"
)

// thumbnail is a display-sized raster scaled down to terminal cells. Each
// cell shows two vertically stacked pixels using the upper half block.
type thumbnail struct {
	img      *image.NRGBA
	displayW int
	displayH int
}

func newThumbnail(img *model.RasterImage, columns int) *thumbnail {
	if img == nil || img.Image == nil || columns <= 0 {
		return nil
	}

	rows := int(math.Round(float64(columns) * float64(img.DisplayHeight) / float64(img.DisplayWidth)))
	if rows < 2 {
		rows = 2
	}
	if rows%2 == 1 {
		rows++
	}

	return &thumbnail{
		img:      imaging.Resize(img.Image, columns, rows, imaging.Box),
		displayW: img.DisplayWidth,
		displayH: img.DisplayHeight,
	}
}

// Size returns the thumbnail's size in terminal cells.
func (t *thumbnail) Size() (int, int) {
	b := t.img.Bounds()
	return b.Dx(), b.Dy() / 2
}

// Render draws the thumbnail with everything outside crop dimmed by dim.
func (t *thumbnail) Render(crop *model.Rect, dim float64) string {
	b := t.img.Bounds()
	sx := float64(t.displayW) / float64(b.Dx())
	sy := float64(t.displayH) / float64(b.Dy())

	inside := func(x, y int) bool {
		if crop == nil {
			return true
		}
		cx := (float64(x) + 0.5) * sx
		cy := (float64(y) + 0.5) * sy
		return cx >= float64(crop.X) && cx < float64(crop.X+crop.Width) &&
			cy >= float64(crop.Y) && cy < float64(crop.Y+crop.Height)
	}

	var sb strings.Builder
	for y := 0; y+1 < b.Dy(); y += 2 {
		for x := 0; x < b.Dx(); x++ {
			top := t.img.NRGBAAt(x, y)
			bottom := t.img.NRGBAAt(x, y+1)
			if !inside(x, y) {
				top = scale(top, dim)
			}
			if !inside(x, y+1) {
				bottom = scale(bottom, dim)
			}
			sb.WriteString(lipgloss.NewStyle().
				Foreground(hex(top)).
				Background(hex(bottom)).
				Render("▀"))
		}
		if y+2 < b.Dy() {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// renderPortrait draws a square image, such as a circular crop, at size columns.
func renderPortrait(img image.Image, size int) string {
	if img == nil || size <= 0 {
		return ""
	}
	size += size % 2
	t := &thumbnail{img: imaging.Resize(img, size, size, imaging.Box)}
	t.displayW, t.displayH = size, size
	return t.Render(nil, 1)
}

func scale(c color.NRGBA, f float64) color.NRGBA {
	return color.NRGBA{
		R: uint8(float64(c.R) * f),
		G: uint8(float64(c.G) * f),
		B: uint8(float64(c.B) * f),
		A: c.A,
	}
}

// hex flattens c over black and formats it for lipgloss.
func hex(c color.NRGBA) lipgloss.Color {
	a := float64(c.A) / 255
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x",
		uint8(float64(c.R)*a),
		uint8(float64(c.G)*a),
		uint8(float64(c.B)*a)))
}
