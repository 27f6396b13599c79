// Package reveal implements the timed sequence that narrates a sorting
// before disclosing the house.
package reveal

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Veraticus/sorting-hat/internal/model"
	"github.com/Veraticus/sorting-hat/internal/sorting"
)

// DefaultDelay is the time between consecutive steps.
const DefaultDelay = 2000 * time.Millisecond

// Phase is the coarse state of a Sequencer.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseDone:
		return "done"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is a snapshot of the sequencer.
type State struct {
	// Category is only set once Phase is PhaseDone.
	Category model.Category
	Message  string
	Phase    Phase
	Step     int
	Epoch    uint64
}

func (s State) String() string {
	switch s.Phase {
	case PhaseRunning:
		return fmt.Sprintf("running(%d)", s.Step)
	case PhaseDone:
		return fmt.Sprintf("done(%s)", s.Category.Name)
	default:
		return s.Phase.String()
	}
}

// Sequencer advances Idle → Running(0..L-1) → Done(category), one step per
// delay. Every scheduled step carries the epoch it was scheduled in; Reset
// moves the epoch on so a stale step can never touch the new run.
type Sequencer struct {
	clock     Clock
	timer     Timer
	pending   model.Category
	revealed  model.Category
	script    []string
	observers []func(State)
	delay     time.Duration
	epoch     uint64
	step      int
	phase     Phase
	mu        sync.Mutex
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithClock sets the clock used for scheduling.
func WithClock(c Clock) Option {
	return func(s *Sequencer) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithDelay sets the delay between steps.
func WithDelay(d time.Duration) Option {
	return func(s *Sequencer) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithScript sets the messages played while running.
func WithScript(script []string) Option {
	return func(s *Sequencer) {
		if len(script) > 0 {
			s.script = append([]string(nil), script...)
		}
	}
}

// New creates an idle Sequencer.
func New(opts ...Option) *Sequencer {
	s := &Sequencer{
		clock:  RealClock{},
		delay:  DefaultDelay,
		script: append([]string(nil), sorting.Messages...),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange registers fn to be called after every timer-driven transition.
// fn runs on the clock's callback goroutine without the sequencer lock held.
func (s *Sequencer) OnChange(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Start moves an idle sequencer to Running(0) and keeps category hidden
// until Done. It reports false and does nothing if the sequencer is not idle.
func (s *Sequencer) Start(category model.Category) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseIdle {
		return false
	}

	s.phase = PhaseRunning
	s.step = 0
	s.pending = category
	s.schedule()
	return true
}

// Reset cancels any pending step and returns to Idle.
func (s *Sequencer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.phase = PhaseIdle
	s.step = 0
	s.pending = model.Category{}
	s.revealed = model.Category{}
}

// State returns the current snapshot.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Delay returns the configured step delay.
func (s *Sequencer) Delay() time.Duration {
	return s.delay
}

// Len returns the number of messages in the script.
func (s *Sequencer) Len() int {
	return len(s.script)
}

func (s *Sequencer) stateLocked() State {
	st := State{Phase: s.phase, Step: s.step, Epoch: s.epoch}
	switch s.phase {
	case PhaseRunning:
		st.Message = s.script[s.step]
	case PhaseDone:
		st.Message = s.script[len(s.script)-1]
		st.Category = s.revealed
	}
	return st
}

// schedule arms the timer for the next step. Callers hold s.mu.
func (s *Sequencer) schedule() {
	epoch := s.epoch
	s.timer = s.clock.AfterFunc(s.delay, func() {
		s.advance(epoch)
	})
}

func (s *Sequencer) advance(epoch uint64) {
	s.mu.Lock()
	if epoch != s.epoch || s.phase != PhaseRunning {
		s.mu.Unlock()
		return
	}

	if s.step < len(s.script)-1 {
		s.step++
		s.schedule()
	} else {
		s.phase = PhaseDone
		s.revealed = s.pending
		s.timer = nil
	}

	st := s.stateLocked()
	observers := slices.Clone(s.observers)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(st)
	}
}
