package tui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRecorder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	frames, err := NewFrameRecorder(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, frames.Dir())

	m, _ := newTestModel(t)
	var root tea.Model = recordingModel{inner: m, frames: frames}

	root, _ = root.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	root, _ = root.Update(spinner.TickMsg{})
	_, _ = root.Update(keyRunes("?"))

	assert.Equal(t, 2, frames.Frames())
	require.NoError(t, frames.Close())

	frame, err := os.ReadFile(filepath.Join(dir, "frame-0001.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(frame), "Sorting Hat")

	log, err := os.ReadFile(filepath.Join(dir, "frames.log"))
	require.NoError(t, err)
	assert.Contains(t, string(log), "tea.WindowSizeMsg")
	assert.Contains(t, string(log), "State: empty")
	assert.Contains(t, string(log), "2 frames captured")
	assert.NotContains(t, string(log), "spinner.TickMsg")
}

func TestWithFrameRecorder(t *testing.T) {
	frames, err := NewFrameRecorder(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = frames.Close() })

	cfg := defaultConfig()
	WithFrameRecorder(frames)(&cfg)
	assert.Same(t, frames, cfg.Frames)
}
