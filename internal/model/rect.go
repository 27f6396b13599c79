package model

import (
	"fmt"
	"image"
)

// Rect is an axis-aligned rectangle in displayed-image coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Square returns a size×size rectangle at (x, y).
func Square(x, y, size int) Rect {
	return Rect{X: x, Y: y, Width: size, Height: size}
}

// Empty reports whether the rectangle covers no pixels.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Image converts r to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Clamp fits r inside a width×height area. The size shrinks only when it
// cannot fit; otherwise the rectangle is moved back inside.
func (r Rect) Clamp(width, height int) Rect {
	if width <= 0 || height <= 0 {
		return Rect{}
	}
	r.Width = clampInt(r.Width, 0, width)
	r.Height = clampInt(r.Height, 0, height)
	r.X = clampInt(r.X, 0, width-r.Width)
	r.Y = clampInt(r.Y, 0, height-r.Height)
	return r
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// FromImage converts an image.Rectangle to a Rect.
func FromImage(r image.Rectangle) Rect {
	return Rect{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
