package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/sorting-hat/internal/common"
	"github.com/spf13/viper"
)

// Default values for settings that are not configured.
const (
	DefaultDatabasePath   = "$HOME/.local/share/sortinghat/sortinghat.db"
	DefaultLogPath        = "$HOME/.local/share/sortinghat/sortinghat.log"
	DefaultRevealDelay    = 2 * time.Second
	DefaultCropSize       = 100
	DefaultInterpolator   = "nearest"
	DefaultTheme          = "default"
	DefaultPreviewWidth   = 48
	DefaultBatchJobs      = 4
	minimumPreviewWidth   = 8
	maximumPreviewColumns = 400
)

// Interpolators lists the accepted crop.interpolator values.
var Interpolators = []string{"nearest", "approx-bilinear", "bilinear", "catmull-rom"}

// Settings holds the typed application configuration.
type Settings struct {
	LogLevel       string
	LogFormat      string
	LogPath        string
	DatabasePath   string
	Interpolator   string
	FaceCascade    string
	Theme          string
	RevealDelay    time.Duration
	CropSize       int
	PreviewWidth   int
	BatchJobs      int
	HistoryEnabled bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.path", DefaultLogPath)
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("history.enabled", true)
	v.SetDefault("reveal.delay", DefaultRevealDelay)
	v.SetDefault("crop.default_size", DefaultCropSize)
	v.SetDefault("crop.interpolator", DefaultInterpolator)
	v.SetDefault("crop.face_cascade", "")
	v.SetDefault("tui.theme", DefaultTheme)
	v.SetDefault("tui.preview_width", DefaultPreviewWidth)
	v.SetDefault("batch.jobs", DefaultBatchJobs)
}

// Load reads settings from v, expanding paths and validating values.
func Load(v *viper.Viper) (Settings, error) {
	SetDefaults(v)

	s := Settings{
		LogLevel:       v.GetString("logging.level"),
		LogFormat:      v.GetString("logging.format"),
		LogPath:        ExpandPath(v.GetString("logging.path")),
		DatabasePath:   ExpandPath(v.GetString("database.path")),
		HistoryEnabled: v.GetBool("history.enabled"),
		RevealDelay:    v.GetDuration("reveal.delay"),
		CropSize:       v.GetInt("crop.default_size"),
		Interpolator:   strings.ToLower(v.GetString("crop.interpolator")),
		FaceCascade:    ExpandPath(v.GetString("crop.face_cascade")),
		Theme:          v.GetString("tui.theme"),
		PreviewWidth:   v.GetInt("tui.preview_width"),
		BatchJobs:      v.GetInt("batch.jobs"),
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}

	return s, nil
}

// Validate checks that the settings are usable.
func (s Settings) Validate() error {
	if _, err := common.ParseLevel(s.LogLevel); err != nil {
		return err
	}
	if s.LogFormat != "console" && s.LogFormat != "json" {
		return fmt.Errorf("%w: log format %q", common.ErrInvalidConfig, s.LogFormat)
	}
	if s.RevealDelay <= 0 {
		return fmt.Errorf("%w: reveal.delay must be positive, got %s", common.ErrInvalidConfig, s.RevealDelay)
	}
	if s.CropSize <= 0 {
		return fmt.Errorf("%w: crop.default_size must be positive, got %d", common.ErrInvalidConfig, s.CropSize)
	}
	if !isInterpolator(s.Interpolator) {
		return fmt.Errorf("%w: crop.interpolator %q (want one of %s)",
			common.ErrInvalidConfig, s.Interpolator, strings.Join(Interpolators, ", "))
	}
	if s.PreviewWidth < minimumPreviewWidth || s.PreviewWidth > maximumPreviewColumns {
		return fmt.Errorf("%w: tui.preview_width must be between %d and %d, got %d",
			common.ErrInvalidConfig, minimumPreviewWidth, maximumPreviewColumns, s.PreviewWidth)
	}
	if s.BatchJobs <= 0 {
		return fmt.Errorf("%w: batch.jobs must be positive, got %d", common.ErrInvalidConfig, s.BatchJobs)
	}
	if s.HistoryEnabled && strings.TrimSpace(s.DatabasePath) == "" {
		return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}
	return nil
}

func isInterpolator(name string) bool {
	for _, candidate := range Interpolators {
		if candidate == name {
			return true
		}
	}
	return false
}
