package model

import "image"

// RasterImage is a decoded image together with its encoded form and sizing.
// NaturalWidth/NaturalHeight are fixed at load time. DisplayWidth and
// DisplayHeight describe how large the image is currently drawn and only
// matter for converting display coordinates into source pixels.
type RasterImage struct {
	Image         image.Image
	Name          string
	Format        string
	Encoded       []byte
	NaturalWidth  int
	NaturalHeight int
	DisplayWidth  int
	DisplayHeight int
}

// NewRasterImage wraps img, using its bounds as both natural and display size.
func NewRasterImage(img image.Image, format string, encoded []byte) *RasterImage {
	b := img.Bounds()
	return &RasterImage{
		Image:         img,
		Format:        format,
		Encoded:       encoded,
		NaturalWidth:  b.Dx(),
		NaturalHeight: b.Dy(),
		DisplayWidth:  b.Dx(),
		DisplayHeight: b.Dy(),
	}
}

// Scale returns the natural/displayed ratio per axis.
func (r *RasterImage) Scale() (float64, float64) {
	sx, sy := 1.0, 1.0
	if r.DisplayWidth > 0 {
		sx = float64(r.NaturalWidth) / float64(r.DisplayWidth)
	}
	if r.DisplayHeight > 0 {
		sy = float64(r.NaturalHeight) / float64(r.DisplayHeight)
	}
	return sx, sy
}

// WithDisplaySize returns a shallow copy of r drawn at width×height.
// Non-positive values fall back to the natural size.
func (r *RasterImage) WithDisplaySize(width, height int) *RasterImage {
	c := *r
	if width <= 0 || height <= 0 {
		width, height = r.NaturalWidth, r.NaturalHeight
	}
	c.DisplayWidth = width
	c.DisplayHeight = height
	return &c
}
