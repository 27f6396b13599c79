// Package session orchestrates loading, cropping and sorting a single portrait.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/Veraticus/sorting-hat/internal/common"
	"github.com/Veraticus/sorting-hat/internal/model"
	"github.com/Veraticus/sorting-hat/internal/raster"
	"github.com/Veraticus/sorting-hat/internal/reveal"
	"github.com/Veraticus/sorting-hat/internal/sorting"
)

// DefaultCropSize is the side of the square crop placed at the origin on load.
const DefaultCropSize = 100

// LoadTicket identifies one image load. Only the newest ticket may install.
type LoadTicket uint64

// Result describes a finished sorting.
type Result struct {
	Category     model.Category
	SourceName   string
	SourceSHA256 string
	Crop         model.Rect
	Hash         int32
	epoch        uint64
}

// Snapshot is a read-only view of the session.
type Snapshot struct {
	Source    *model.RasterImage
	Cropped   *model.RasterImage
	Committed *model.Rect
	Reveal    reveal.State
	Crop      model.Rect
}

// Loaded reports whether a source image is present.
func (s Snapshot) Loaded() bool {
	return s.Source != nil
}

// Session owns the state of one sorting interaction. Operations are meant to
// be driven by a single event loop; the mutex only guards against the reveal
// timer firing concurrently with it.
type Session struct {
	interpolator raster.Interpolator
	source       *model.RasterImage
	cropped      *model.RasterImage
	committed    *model.Rect
	seq          *reveal.Sequencer
	result       *Result
	onComplete   []func(Result)
	crop         model.Rect
	loads        LoadTicket
	defaultSize  int
	displayW     int
	displayH     int
	mu           sync.Mutex
}

type options struct {
	interpolator raster.Interpolator
	reveal       []reveal.Option
	defaultSize  int
}

// Option configures a Session.
type Option func(*options)

// WithClock sets the clock that drives the reveal.
func WithClock(c reveal.Clock) Option {
	return func(o *options) {
		o.reveal = append(o.reveal, reveal.WithClock(c))
	}
}

// WithRevealDelay sets the delay between reveal steps.
func WithRevealDelay(d time.Duration) Option {
	return func(o *options) {
		o.reveal = append(o.reveal, reveal.WithDelay(d))
	}
}

// WithDefaultCropSize sets the side of the initial crop square.
func WithDefaultCropSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.defaultSize = size
		}
	}
}

// WithInterpolator sets the resampler used when confirming a crop.
func WithInterpolator(i raster.Interpolator) Option {
	return func(o *options) {
		o.interpolator = i
	}
}

// New creates an empty session.
func New(opts ...Option) *Session {
	o := options{defaultSize: DefaultCropSize}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{
		interpolator: o.interpolator,
		defaultSize:  o.defaultSize,
		crop:         model.Square(0, 0, o.defaultSize),
		seq:          reveal.New(o.reveal...),
	}
	s.seq.OnChange(s.handleReveal)
	return s
}

// OnChange registers fn for every timer-driven reveal transition.
func (s *Session) OnChange(fn func(reveal.State)) {
	s.seq.OnChange(fn)
}

// OnComplete registers fn to run when a reveal reaches Done.
func (s *Session) OnComplete(fn func(Result)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onComplete = append(s.onComplete, fn)
}

// RevealDelay returns the delay between reveal steps.
func (s *Session) RevealDelay() time.Duration {
	return s.seq.Delay()
}

// LoadImage decodes data and makes it the session's source image. On a
// decode error the session is left exactly as it was.
func (s *Session) LoadImage(ctx context.Context, name string, data []byte) error {
	ticket := s.BeginLoad()

	img, err := raster.Decode(ctx, name, data)
	if err != nil {
		slog.Debug("Image load failed", "name", name, "error", err)
		return err
	}

	return s.InstallImage(ticket, img)
}

// BeginLoad starts a new load and supersedes any load still in flight.
func (s *Session) BeginLoad() LoadTicket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	return s.loads
}

// InstallImage installs a decoded image for ticket, resetting the crop,
// the cropped image and the reveal. A superseded ticket yields
// common.ErrStaleLoad and changes nothing.
func (s *Session) InstallImage(ticket LoadTicket, img *model.RasterImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ticket != s.loads {
		return common.ErrStaleLoad
	}
	if img == nil {
		return common.ErrNoImage
	}

	s.seq.Reset()

	if s.displayW > 0 && s.displayH > 0 {
		img = img.WithDisplaySize(s.displayW, s.displayH)
	}
	s.source = img
	s.crop = model.Square(0, 0, s.defaultSize).Clamp(img.DisplayWidth, img.DisplayHeight)
	s.committed = nil
	s.cropped = nil
	s.result = nil

	slog.Info("Image loaded",
		"name", img.Name,
		"format", img.Format,
		"width", img.NaturalWidth,
		"height", img.NaturalHeight)
	return nil
}

// SetDisplaySize records how large the source image is drawn. The current
// crop rectangle is rescaled to stay over the same part of the image.
func (s *Session) SetDisplaySize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.displayW, s.displayH = width, height
	if s.source == nil {
		return
	}

	oldW, oldH := s.source.DisplayWidth, s.source.DisplayHeight
	s.source = s.source.WithDisplaySize(width, height)
	newW, newH := s.source.DisplayWidth, s.source.DisplayHeight
	if oldW == newW && oldH == newH {
		return
	}

	fx := float64(newW) / float64(oldW)
	fy := float64(newH) / float64(oldH)
	side := int(math.Round(float64(s.crop.Width) * math.Min(fx, fy)))
	s.crop = model.Square(
		int(math.Round(float64(s.crop.X)*fx)),
		int(math.Round(float64(s.crop.Y)*fy)),
		side,
	).Clamp(newW, newH)
}

// UpdateCropRectangle stores the in-progress crop, clamped to the displayed image.
func (s *Session) UpdateCropRectangle(rect model.Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.source != nil {
		rect = rect.Clamp(s.source.DisplayWidth, s.source.DisplayHeight)
	}
	s.crop = rect
}

// ConfirmCrop extracts the current crop rectangle and freezes it.
func (s *Session) ConfirmCrop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.source == nil {
		return common.ErrNoImage
	}
	if s.cropped != nil {
		return common.ErrAlreadyCropped
	}

	rect := s.crop
	if rect.Empty() {
		return common.ErrNoCrop
	}

	var opts []raster.ExtractOption
	if s.interpolator != nil {
		opts = append(opts, raster.WithInterpolator(s.interpolator))
	}

	cropped, err := raster.Extract(s.source, &rect, opts...)
	if err != nil {
		return err
	}

	s.cropped = cropped
	s.committed = &rect

	slog.Debug("Crop confirmed", "rect", rect.String(), "bytes", len(cropped.Encoded))
	return nil
}

// StartReveal begins the reveal for the cropped image. It is a no-op that
// reports false when there is no cropped image or the reveal already ran.
func (s *Session) StartReveal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cropped == nil || s.seq.State().Phase != reveal.PhaseIdle {
		return false
	}

	result := s.resultLocked()
	if !s.seq.Start(result.Category) {
		return false
	}
	result.epoch = s.seq.State().Epoch
	s.result = &result

	slog.Debug("Reveal started", "hash", result.Hash)
	return true
}

// Result sorts the cropped image immediately, without running the reveal.
// It fails with common.ErrNoImage or common.ErrNoCrop until a crop is confirmed.
func (s *Session) Result() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.source == nil {
		return Result{}, common.ErrNoImage
	}
	if s.cropped == nil {
		return Result{}, common.ErrNoCrop
	}
	return s.resultLocked(), nil
}

// resultLocked computes the sorting of the cropped image. Callers hold s.mu.
func (s *Session) resultLocked() Result {
	category, hash := sorting.Sort(raster.DataURL(s.cropped.Format, s.cropped.Encoded))
	sum := sha256.Sum256(s.source.Encoded)
	return Result{
		Category:     category,
		SourceName:   s.source.Name,
		SourceSHA256: hex.EncodeToString(sum[:]),
		Crop:         *s.committed,
		Hash:         hash,
	}
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Source:  s.source,
		Cropped: s.cropped,
		Crop:    s.crop,
		Reveal:  s.seq.State(),
	}
	if s.committed != nil {
		c := *s.committed
		snap.Committed = &c
	}
	return snap
}

func (s *Session) handleReveal(st reveal.State) {
	if st.Phase != reveal.PhaseDone {
		return
	}

	s.mu.Lock()
	if s.result == nil || s.result.epoch != st.Epoch {
		s.mu.Unlock()
		return
	}
	result := *s.result
	hooks := slices.Clone(s.onComplete)
	s.mu.Unlock()

	slog.Info("Sorting complete", "source", result.SourceName, "house", result.Category.Name)
	for _, fn := range hooks {
		fn(result)
	}
}
