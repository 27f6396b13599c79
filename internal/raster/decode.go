// Package raster decodes, crops and encodes portrait images.
package raster

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"

	"github.com/Veraticus/sorting-hat/internal/common"
	"github.com/Veraticus/sorting-hat/internal/model"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// Decode decodes data into a RasterImage, applying EXIF orientation.
// Any failure to read the bytes as an image is reported as common.ErrUnreadableImage.
func Decode(ctx context.Context, name string, data []byte) (*model.RasterImage, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", common.ErrUnreadableImage, name)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrUnreadableImage, name, err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrUnreadableImage, name, err)
	}

	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	raster := model.NewRasterImage(img, format, data)
	raster.Name = name
	return raster, nil
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURL returns the base64 data URL for an encoded image. This string is
// what gets hashed when sorting.
func DataURL(format string, encoded []byte) string {
	if format == "" {
		format = "png"
	}
	if format == "jpg" {
		format = "jpeg"
	}
	return "data:image/" + format + ";base64," + base64.StdEncoding.EncodeToString(encoded)
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
