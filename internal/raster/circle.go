package raster

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Circle returns a size×size portrait of img masked to a circle. Pixels
// outside the circle are transparent.
func Circle(img image.Image, size int) *image.NRGBA {
	square := imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)

	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.DrawMask(dst, dst.Bounds(), square, image.Point{}, circleMask{size: size}, image.Point{}, draw.Over)
	return dst
}

type circleMask struct {
	size int
}

func (c circleMask) ColorModel() color.Model {
	return color.AlphaModel
}

func (c circleMask) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.size, c.size)
}

func (c circleMask) At(x, y int) color.Color {
	r := float64(c.size) / 2
	dx := float64(x) + 0.5 - r
	dy := float64(y) + 0.5 - r
	if dx*dx+dy*dy <= r*r {
		return color.Alpha{A: 255}
	}
	return color.Alpha{}
}
