package tui

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/sorting-hat/internal/common"
	"github.com/Veraticus/sorting-hat/internal/model"
	"github.com/Veraticus/sorting-hat/internal/raster"
	"github.com/Veraticus/sorting-hat/internal/reveal"
	"github.com/Veraticus/sorting-hat/internal/session"
	"github.com/Veraticus/sorting-hat/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// State represents the current state of the TUI.
type State int

const (
	StateEmpty State = iota
	StateCropping
	StateCropped
	StateRevealing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateCropping:
		return "cropping"
	case StateCropped:
		return "cropped"
	case StateRevealing:
		return "revealing"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// portraitSize is the side, in pixels, of the circular portrait shown after cropping.
const portraitSize = 128

// Model holds the main TUI state. The session is the source of truth for
// the image, crop and reveal; the model only caches what it renders.
type Model struct {
	theme     themes.Theme
	lastError error
	sess      *session.Session
	thumb     *thumbnail
	config    Config
	keymap    KeyMap
	status    string
	portrait  string
	input     textinput.Model
	help      help.Model
	spinner   spinner.Model
	progress  progress.Model
	reveal    reveal.State
	pending   session.LoadTicket
	ticket    session.LoadTicket
	width     int
	height    int
	state     State
	loading   bool
	prompting bool
	quitting  bool
}

func newModel(cfg Config, sess *session.Session) Model {
	input := textinput.New()
	input.Placeholder = "path/to/portrait.png"
	input.Prompt = "Image: "
	input.CharLimit = 4096
	input.Width = 48

	m := Model{
		sess:   sess,
		config: cfg,
		theme:  cfg.Theme,
		keymap: DefaultKeyMap(),
		help:   help.New(),
		input:  input,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(cfg.Theme.StatusInfo),
		),
		progress: progress.New(
			progress.WithGradient(cfg.Theme.ProgressFrom, cfg.Theme.ProgressTo),
			progress.WithWidth(cfg.PreviewWidth),
			progress.WithoutPercentage(),
		),
		width:  cfg.Width,
		height: cfg.Height,
		state:  StateEmpty,
	}

	if cfg.InitialPath == "" {
		m.prompting = true
		m.input.Focus()
	}
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.prompting {
		cmds = append(cmds, textinput.Blink)
	}
	if m.config.InitialPath != "" {
		cmds = append(cmds, func() tea.Msg {
			return openImageMsg{path: m.config.InitialPath}
		})
	}
	return tea.Batch(cmds...)
}

// openImageMsg asks the model to start loading path.
type openImageMsg struct {
	path string
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case openImageMsg:
		cmd := m.startLoad(msg.path)
		return m, cmd

	case imageDecodedMsg:
		return m.handleDecoded(msg)

	case suggestionMsg:
		if msg.ticket != m.ticket || m.state != StateCropping {
			return m, nil
		}
		if msg.err != nil {
			slog.Debug("Crop suggestion failed", "error", msg.err)
			return m, nil
		}
		m.sess.UpdateCropRectangle(msg.rect)
		m.status = "Suggested a crop"
		return m, nil

	case revealStepMsg:
		m.handleRevealStep(msg.state)
		return m, nil

	case sortingCompleteMsg:
		if m.config.Recorder == nil {
			return m, nil
		}
		return m, saveHistory(m.config.Recorder, msg.result)

	case historySavedMsg:
		if msg.err != nil {
			common.LogError(msg.err, "Failed to save sorting", common.Fields{"source": msg.record.SourceName})
			m.lastError = msg.err
			return m, nil
		}
		m.status = "Saved to history"
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.prompting {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.ForceQuit) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.prompting {
		return m.handlePromptKey(msg)
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keymap.Open):
		m.prompting = true
		m.input.Reset()
		return m, m.input.Focus()
	}

	switch m.state {
	case StateCropping:
		return m.handleCropKey(msg)
	case StateCropped:
		if key.Matches(msg, m.keymap.Reveal) {
			m.startReveal()
		} else if key.Matches(msg, m.keymap.Confirm) {
			m.confirmCrop()
		}
	case StateRevealing, StateDone:
		if key.Matches(msg, m.keymap.Confirm) {
			m.confirmCrop()
		}
	}
	return m, nil
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Confirm):
		path := m.input.Value()
		if path == "" {
			return m, nil
		}
		m.prompting = false
		m.input.Blur()
		cmd := m.startLoad(path)
		return m, cmd
	case key.Matches(msg, m.keymap.Cancel):
		if m.state == StateEmpty && !m.loading {
			return m, nil
		}
		m.prompting = false
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// fastMoves are the shifted direction keys.
var fastMoves = map[string][2]int{
	"K": {0, -1}, "shift+up": {0, -1},
	"J": {0, 1}, "shift+down": {0, 1},
	"H": {-1, 0}, "shift+left": {-1, 0},
	"L": {1, 0}, "shift+right": {1, 0},
}

func (m Model) handleCropKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	step := m.config.CropStep
	crop := m.sess.Snapshot().Crop

	switch {
	case key.Matches(msg, m.keymap.Fast):
		d := fastMoves[msg.String()]
		m.sess.UpdateCropRectangle(crop.Translate(d[0]*step*4, d[1]*step*4))
	case key.Matches(msg, m.keymap.Up):
		m.sess.UpdateCropRectangle(crop.Translate(0, -step))
	case key.Matches(msg, m.keymap.Down):
		m.sess.UpdateCropRectangle(crop.Translate(0, step))
	case key.Matches(msg, m.keymap.Left):
		m.sess.UpdateCropRectangle(crop.Translate(-step, 0))
	case key.Matches(msg, m.keymap.Right):
		m.sess.UpdateCropRectangle(crop.Translate(step, 0))
	case key.Matches(msg, m.keymap.Grow):
		m.sess.UpdateCropRectangle(resize(crop, step))
	case key.Matches(msg, m.keymap.Shrink):
		if crop.Width > step && crop.Height > step {
			m.sess.UpdateCropRectangle(resize(crop, -step))
		}
	case key.Matches(msg, m.keymap.Suggest):
		if m.config.Suggester == nil {
			m.status = "No crop suggester configured"
			return m, nil
		}
		snap := m.sess.Snapshot()
		return m, suggestCrop(m.config.Suggester, m.ticket, snap.Source)
	case key.Matches(msg, m.keymap.Confirm):
		m.confirmCrop()
	case key.Matches(msg, m.keymap.Reveal):
		m.status = "Confirm the crop first"
	}
	return m, nil
}

// resize grows (or shrinks, for negative d) a square crop around its centre.
func resize(r model.Rect, d int) model.Rect {
	side := r.Width + d
	if r.Height+d < side {
		side = r.Height + d
	}
	return model.Square(r.X-d/2, r.Y-d/2, side)
}

func (m *Model) startLoad(path string) tea.Cmd {
	m.pending = m.sess.BeginLoad()
	m.loading = true
	m.lastError = nil
	m.status = "Reading " + path
	return decodeImage(m.pending, path)
}

func (m Model) handleDecoded(msg imageDecodedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if msg.ticket == m.pending {
			m.loading = false
		}
		slog.Debug("Image decode failed", "path", msg.path, "error", msg.err)
		m.lastError = msg.err
		return m, nil
	}

	w, h := fitDisplay(msg.img.NaturalWidth, msg.img.NaturalHeight, m.config.DisplayBox)
	err := m.sess.InstallImage(msg.ticket, msg.img.WithDisplaySize(w, h))
	if errors.Is(err, common.ErrStaleLoad) {
		slog.Debug("Discarding superseded image", "path", msg.path)
		return m, nil
	}
	if err != nil {
		m.lastError = err
		return m, nil
	}

	snap := m.sess.Snapshot()
	m.ticket = msg.ticket
	m.loading = false
	m.lastError = nil
	m.thumb = newThumbnail(snap.Source, m.config.PreviewWidth)
	m.portrait = ""
	m.reveal = snap.Reveal
	m.state = StateCropping
	m.status = fmt.Sprintf("Loaded %s (%dx%d)", snap.Source.Name, snap.Source.NaturalWidth, snap.Source.NaturalHeight)

	if m.config.Suggester != nil {
		return m, suggestCrop(m.config.Suggester, msg.ticket, snap.Source)
	}
	return m, nil
}

func (m *Model) confirmCrop() {
	if err := m.sess.ConfirmCrop(); err != nil {
		m.lastError = err
		return
	}

	snap := m.sess.Snapshot()
	m.lastError = nil
	m.portrait = renderPortrait(raster.Circle(snap.Cropped.Image, portraitSize), m.config.PreviewWidth/2)
	m.state = StateCropped
	m.status = "Crop confirmed. Press Space to be sorted."
}

func (m *Model) startReveal() {
	if !m.sess.StartReveal() {
		return
	}
	m.reveal = m.sess.Snapshot().Reveal
	m.state = StateRevealing
	m.status = ""
}

func (m *Model) handleRevealStep(st reveal.State) {
	if st.Epoch != m.sess.Snapshot().Reveal.Epoch {
		return
	}
	m.reveal = st
	if st.Phase == reveal.PhaseDone {
		m.state = StateDone
	}
}

// fitDisplay scales natural dimensions down to fit inside a box×box square.
func fitDisplay(w, h, box int) (int, int) {
	if box <= 0 || (w <= box && h <= box) {
		return w, h
	}
	if w >= h {
		return box, max(1, h*box/w)
	}
	return max(1, w*box/h), box
}
