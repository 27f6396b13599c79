package raster

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"math"

	"github.com/Veraticus/sorting-hat/internal/model"
	"github.com/disintegration/imaging"
	pigo "github.com/esimov/pigo/core"
	"github.com/muesli/smartcrop"
)

const (
	// faceQualityThreshold discards weak pigo detections.
	faceQualityThreshold = 5.0
	// facePadding widens the detected face square to include hair and chin.
	facePadding = 1.6
)

// Suggester proposes a square crop for a freshly loaded portrait.
type Suggester struct {
	classifier *pigo.Pigo
	resampler  imaging.ResampleFilter
}

// NewSuggester creates a suggester. cascade is an optional pigo face-finder
// cascade; without it suggestions come from smartcrop alone.
func NewSuggester(cascade []byte) (*Suggester, error) {
	s := &Suggester{resampler: imaging.Lanczos}
	if len(cascade) == 0 {
		return s, nil
	}

	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("unpacking face cascade: %w", err)
	}
	s.classifier = classifier
	return s, nil
}

// FaceDetection reports whether face-centred suggestions are enabled.
func (s *Suggester) FaceDetection() bool {
	return s.classifier != nil
}

// Suggest returns a square crop in img's displayed coordinates.
func (s *Suggester) Suggest(ctx context.Context, img *model.RasterImage) (model.Rect, error) {
	if img == nil || img.Image == nil {
		return model.Rect{}, fmt.Errorf("suggesting crop: no image")
	}

	natural, err := s.naturalSquare(ctx, img.Image)
	if err != nil {
		return model.Rect{}, err
	}

	return toDisplay(img, natural), nil
}

func (s *Suggester) naturalSquare(ctx context.Context, img image.Image) (image.Rectangle, error) {
	if s.classifier != nil {
		if face, ok := s.findBestFace(img); ok {
			return face, nil
		}
		slog.Debug("No face found, falling back to smartcrop")
	}

	type cropResult struct {
		err  error
		crop image.Rectangle
	}
	resultChan := make(chan cropResult, 1)

	go func() {
		analyzer := smartcrop.NewAnalyzer(&resizer{resampler: s.resampler})
		crop, err := analyzer.FindBestCrop(img, 1, 1)
		resultChan <- cropResult{crop: crop, err: err}
	}()

	select {
	case <-ctx.Done():
		return image.Rectangle{}, ctx.Err()
	case result := <-resultChan:
		if result.err != nil {
			return image.Rectangle{}, fmt.Errorf("finding best crop: %w", result.err)
		}
		return result.crop, nil
	}
}

// findBestFace returns a padded square around the largest confident face.
func (s *Suggester) findBestFace(img image.Image) (image.Rectangle, bool) {
	bounds := img.Bounds()
	cols, rows := bounds.Dx(), bounds.Dy()

	params := pigo.CascadeParams{
		MinSize:     20,
		MaxSize:     max(cols, rows),
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(imaging.Clone(img)),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	detections := s.classifier.RunCascade(params, 0.0)
	detections = s.classifier.ClusterDetections(detections, 0.2)

	var best *pigo.Detection
	for i := range detections {
		d := &detections[i]
		if d.Q < faceQualityThreshold {
			continue
		}
		if best == nil || d.Scale > best.Scale {
			best = d
		}
	}
	if best == nil {
		return image.Rectangle{}, false
	}

	side := int(math.Round(float64(best.Scale) * facePadding))
	side = min(side, cols, rows)
	x := best.Col - side/2
	y := best.Row - side/2
	square := model.Square(x, y, side).Clamp(cols, rows)

	slog.Debug("Face found", "row", best.Row, "col", best.Col, "scale", best.Scale, "q", best.Q)
	return square.Image().Add(bounds.Min), true
}

// toDisplay converts a natural-pixel rectangle into a display-space square.
func toDisplay(img *model.RasterImage, natural image.Rectangle) model.Rect {
	natural = natural.Sub(img.Image.Bounds().Min)
	sx, sy := img.Scale()

	x := int(math.Round(float64(natural.Min.X) / sx))
	y := int(math.Round(float64(natural.Min.Y) / sy))
	w := int(math.Round(float64(natural.Dx()) / sx))
	h := int(math.Round(float64(natural.Dy()) / sy))

	side := max(min(w, h), 1)
	return model.Square(x, y, side).Clamp(img.DisplayWidth, img.DisplayHeight)
}

// resizer implements the smartcrop.Resizer interface.
type resizer struct {
	resampler imaging.ResampleFilter
}

func (r *resizer) Resize(img image.Image, width, height uint) image.Image {
	return imaging.Resize(img, int(width), int(height), r.resampler)
}
