package config

import (
	"testing"
	"time"

	"github.com/Veraticus/sorting-hat/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", "/home/hat")

	s, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, "console", s.LogFormat)
	assert.Equal(t, "/home/hat/.local/share/sortinghat/sortinghat.db", s.DatabasePath)
	assert.True(t, s.HistoryEnabled)
	assert.Equal(t, 2000*time.Millisecond, s.RevealDelay)
	assert.Equal(t, 100, s.CropSize)
	assert.Equal(t, "nearest", s.Interpolator)
	assert.Empty(t, s.FaceCascade)
	assert.Equal(t, "default", s.Theme)
	assert.Equal(t, DefaultPreviewWidth, s.PreviewWidth)
	assert.Equal(t, DefaultBatchJobs, s.BatchJobs)
}

func TestLoad_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("reveal.delay", "500ms")
	v.Set("crop.interpolator", "Catmull-Rom")
	v.Set("crop.default_size", 64)
	v.Set("history.enabled", false)

	s, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 500*time.Millisecond, s.RevealDelay)
	assert.Equal(t, "catmull-rom", s.Interpolator)
	assert.Equal(t, 64, s.CropSize)
	assert.False(t, s.HistoryEnabled)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{name: "bad level", key: "logging.level", value: "loud"},
		{name: "bad format", key: "logging.format", value: "xml"},
		{name: "zero delay", key: "reveal.delay", value: "0s"},
		{name: "negative crop", key: "crop.default_size", value: -5},
		{name: "unknown interpolator", key: "crop.interpolator", value: "lanczos"},
		{name: "tiny preview", key: "tui.preview_width", value: 2},
		{name: "no jobs", key: "batch.jobs", value: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/hat")
	t.Setenv("HAT_DIR", "/srv/hat")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, "/home/hat", ExpandPath("~"))
	assert.Equal(t, "/home/hat/portraits", ExpandPath("~/portraits"))
	assert.Equal(t, "/srv/hat/db", ExpandPath("$HAT_DIR/db"))
	assert.Equal(t, "relative/path", ExpandPath("relative/path"))
}

func TestExpandPath_CleansAndTrims(t *testing.T) {
	t.Setenv("HOME", "/home/hat")
	t.Setenv("HAT_DIR", "/srv/hat/")

	tests := []struct {
		in   string
		want string
	}{
		{in: "  ~/portraits/  ", want: "/home/hat/portraits"},
		{in: "~/a/../b", want: "/home/hat/b"},
		{in: "${HAT_DIR}/db", want: "/srv/hat/db"},
		{in: "~hermione/owl.png", want: "~hermione/owl.png"},
		{in: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}
