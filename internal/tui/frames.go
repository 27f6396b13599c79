package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// FrameRecorder writes every rendered frame and the message that produced
// it to a directory, for debugging the TUI after the fact.
type FrameRecorder struct {
	logFile  *os.File
	dir      string
	frameNum int
	mu       sync.Mutex
}

// NewFrameRecorder creates dir and starts a recording in it.
func NewFrameRecorder(dir string) (*FrameRecorder, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create recording directory: %w", err)
	}

	logFile, err := os.Create(filepath.Join(filepath.Clean(dir), "frames.log"))
	if err != nil {
		return nil, fmt.Errorf("failed to create recording log: %w", err)
	}

	r := &FrameRecorder{logFile: logFile, dir: dir}
	r.logf("Recording started at %s", time.Now().Format(time.RFC3339))
	return r, nil
}

// Dir returns the recording directory.
func (r *FrameRecorder) Dir() string {
	return r.dir
}

// Frames returns how many frames have been written.
func (r *FrameRecorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frameNum
}

// Record captures the frame m renders after handling msg. Animation ticks
// are skipped.
func (r *FrameRecorder) Record(m tea.Model, msg tea.Msg) {
	switch msg.(type) {
	case spinner.TickMsg, progress.FrameMsg:
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.frameNum++
	r.logf("\n=== Frame %d ===", r.frameNum)
	r.logf("Time: %s", time.Now().Format("15:04:05.000"))
	r.logf("Message: %T", msg)
	if tm, ok := m.(Model); ok {
		snap := tm.sess.Snapshot()
		r.logf("State: %s", tm.state)
		r.logf("Crop: %s", snap.Crop)
		r.logf("Reveal: %s", snap.Reveal)
	}

	framePath := filepath.Join(r.dir, fmt.Sprintf("frame-%04d.txt", r.frameNum))
	if err := os.WriteFile(framePath, []byte(m.View()), 0600); err != nil {
		r.logf("Error saving frame: %v", err)
	}
}

// Close finishes the recording.
func (r *FrameRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logf("Recording complete. %d frames captured.", r.frameNum)
	return r.logFile.Close()
}

func (r *FrameRecorder) logf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.logFile, format+"\n", args...)
}

// recordingModel wraps a model so each update is written to a FrameRecorder.
type recordingModel struct {
	inner  tea.Model
	frames *FrameRecorder
}

func (r recordingModel) Init() tea.Cmd {
	return r.inner.Init()
}

func (r recordingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := r.inner.Update(msg)
	r.frames.Record(next, msg)
	return recordingModel{inner: next, frames: r.frames}, cmd
}

func (r recordingModel) View() string {
	return r.inner.View()
}
