package model

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRect_Clamp(t *testing.T) {
	tests := []struct {
		name   string
		rect   Rect
		want   Rect
		width  int
		height int
	}{
		{name: "inside", rect: Square(10, 10, 20), width: 100, height: 100, want: Square(10, 10, 20)},
		{name: "moved back from right edge", rect: Square(90, 0, 20), width: 100, height: 100, want: Square(80, 0, 20)},
		{name: "negative origin", rect: Square(-5, -7, 10), width: 50, height: 50, want: Square(0, 0, 10)},
		{name: "shrinks when too large", rect: Square(0, 0, 100), width: 60, height: 40, want: Rect{Width: 60, Height: 40}},
		{name: "negative size", rect: Rect{X: 3, Y: 3, Width: -4, Height: 5}, width: 10, height: 10, want: Rect{X: 3, Y: 3, Width: 0, Height: 5}},
		{name: "empty area", rect: Square(1, 1, 1), width: 0, height: 10, want: Rect{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rect.Clamp(tt.width, tt.height))
		})
	}
}

func TestRect_Conversions(t *testing.T) {
	r := Rect{X: 2, Y: 3, Width: 4, Height: 5}

	assert.Equal(t, image.Rect(2, 3, 6, 8), r.Image())
	assert.Equal(t, r, FromImage(r.Image()))
	assert.Equal(t, Rect{X: 5, Y: 1, Width: 4, Height: 5}, r.Translate(3, -2))
	assert.Equal(t, "4x5+2+3", r.String())
	assert.False(t, r.Empty())
	assert.True(t, Rect{Width: 3}.Empty())
}

func TestRasterImage_Scale(t *testing.T) {
	img := NewRasterImage(image.NewRGBA(image.Rect(0, 0, 400, 300)), "png", nil)

	sx, sy := img.Scale()
	assert.Equal(t, 1.0, sx)
	assert.Equal(t, 1.0, sy)

	shown := img.WithDisplaySize(200, 100)
	sx, sy = shown.Scale()
	assert.Equal(t, 2.0, sx)
	assert.Equal(t, 3.0, sy)
	assert.Equal(t, 400, img.DisplayWidth, "receiver must not change")

	reset := shown.WithDisplaySize(0, 0)
	assert.Equal(t, 400, reset.DisplayWidth)
	assert.Equal(t, 300, reset.DisplayHeight)
}
