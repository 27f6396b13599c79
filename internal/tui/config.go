package tui

import (
	"context"

	"github.com/Veraticus/sorting-hat/internal/model"
	"github.com/Veraticus/sorting-hat/internal/tui/themes"
)

// DisplayBox is the bounding box loaded images are laid out in. Crop
// coordinates are expressed in this displayed space.
const DisplayBox = 512

// HistoryRecorder persists completed sortings.
type HistoryRecorder interface {
	SaveSorting(ctx context.Context, record *model.SortingRecord) error
}

// CropSuggester proposes a starting crop for a loaded image.
type CropSuggester interface {
	Suggest(ctx context.Context, img *model.RasterImage) (model.Rect, error)
}

// Config holds TUI configuration.
type Config struct {
	Theme        themes.Theme
	Recorder     HistoryRecorder
	Suggester    CropSuggester
	Frames       *FrameRecorder
	InitialPath  string
	Width        int
	Height       int
	PreviewWidth int
	DisplayBox   int
	CropStep     int
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:        themes.Default,
		Width:        80,
		Height:       24,
		PreviewWidth: 48,
		DisplayBox:   DisplayBox,
		CropStep:     8,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithPreviewWidth sets how many terminal columns the image preview uses.
func WithPreviewWidth(width int) Option {
	return func(c *Config) {
		if width > 0 {
			c.PreviewWidth = width
		}
	}
}

// WithRecorder persists each completed sorting.
func WithRecorder(r HistoryRecorder) Option {
	return func(c *Config) {
		c.Recorder = r
	}
}

// WithSuggester enables the suggest-crop key.
func WithSuggester(s CropSuggester) Option {
	return func(c *Config) {
		c.Suggester = s
	}
}

// WithInitialPath loads path as soon as the program starts.
func WithInitialPath(path string) Option {
	return func(c *Config) {
		c.InitialPath = path
	}
}

// WithFrameRecorder writes every frame to r while the program runs.
func WithFrameRecorder(r *FrameRecorder) Option {
	return func(c *Config) {
		c.Frames = r
	}
}
