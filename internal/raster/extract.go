package raster

import (
	"fmt"
	"image"
	"math"

	"github.com/Veraticus/sorting-hat/internal/common"
	"github.com/Veraticus/sorting-hat/internal/model"
	"golang.org/x/image/draw"
)

// Interpolator resamples the source region into the crop buffer.
type Interpolator = draw.Interpolator

// InterpolatorByName returns the interpolator registered under name.
func InterpolatorByName(name string) (Interpolator, error) {
	switch name {
	case "", "nearest":
		return draw.NearestNeighbor, nil
	case "approx-bilinear":
		return draw.ApproxBiLinear, nil
	case "bilinear":
		return draw.BiLinear, nil
	case "catmull-rom":
		return draw.CatmullRom, nil
	default:
		return nil, fmt.Errorf("%w: unknown interpolator %q", common.ErrInvalidConfig, name)
	}
}

type extractOptions struct {
	interpolator Interpolator
}

// ExtractOption configures Extract.
type ExtractOption func(*extractOptions)

// WithInterpolator sets the resampling interpolator.
func WithInterpolator(i Interpolator) ExtractOption {
	return func(o *extractOptions) {
		if i != nil {
			o.interpolator = i
		}
	}
}

// Extract copies the area under rect out of src into a new image.
//
// rect is in displayed coordinates. The matching source region is rect scaled
// by natural/displayed size and the output is rect.Width×rect.Height pixels.
// Any part of rect outside the displayed image is left transparent.
//
// With the default nearest-neighbour interpolator each output pixel (dx, dy)
// copies the source pixel at the origin of its cell:
// (x0 + ⌊dx·natural/displayed⌋, y0 + ⌊dy·natural/displayed⌋), where (x0, y0)
// is rect's corner scaled to source pixels and rounded. Other interpolators
// filter the whole cell.
func Extract(src *model.RasterImage, rect *model.Rect, opts ...ExtractOption) (*model.RasterImage, error) {
	if src == nil || src.Image == nil {
		return nil, common.ErrNoImage
	}
	if rect == nil || rect.Empty() {
		return nil, common.ErrNoCrop
	}

	o := extractOptions{interpolator: draw.NearestNeighbor}
	for _, opt := range opts {
		opt(&o)
	}

	want := rect.Image()
	visible := want.Intersect(image.Rect(0, 0, src.DisplayWidth, src.DisplayHeight))
	if visible.Empty() {
		return nil, fmt.Errorf("%w: %s lies outside the %dx%d image", common.ErrNoCrop, rect, src.DisplayWidth, src.DisplayHeight)
	}

	sx, sy := src.Scale()
	bounds := src.Image.Bounds()
	srcRect := image.Rect(
		scaleCoord(visible.Min.X, sx),
		scaleCoord(visible.Min.Y, sy),
		scaleCoord(visible.Max.X, sx),
		scaleCoord(visible.Max.Y, sy),
	).Add(bounds.Min).Intersect(bounds)
	if srcRect.Empty() {
		return nil, fmt.Errorf("%w: %s maps to no source pixels", common.ErrNoCrop, rect)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, rect.Width, rect.Height))
	dstRect := visible.Sub(want.Min)
	if o.interpolator == draw.NearestNeighbor {
		sampleOrigins(dst, dstRect, src, srcRect)
	} else {
		o.interpolator.Scale(dst, dstRect, src.Image, srcRect, draw.Src, nil)
	}

	encoded, err := EncodePNG(dst)
	if err != nil {
		return nil, err
	}

	out := model.NewRasterImage(dst, "png", encoded)
	out.Name = src.Name
	return out, nil
}

// sampleOrigins fills dr in dst from the top-left source pixel of each cell of sr.
func sampleOrigins(dst *image.NRGBA, dr image.Rectangle, src *model.RasterImage, sr image.Rectangle) {
	for dy := 0; dy < dr.Dy(); dy++ {
		y := min(sr.Min.Y+dy*src.NaturalHeight/src.DisplayHeight, sr.Max.Y-1)
		for dx := 0; dx < dr.Dx(); dx++ {
			x := min(sr.Min.X+dx*src.NaturalWidth/src.DisplayWidth, sr.Max.X-1)
			dst.Set(dr.Min.X+dx, dr.Min.Y+dy, src.Image.At(x, y))
		}
	}
}

func scaleCoord(v int, scale float64) int {
	return int(math.Round(float64(v) * scale))
}
