package reveal

import (
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/sorting-hat/internal/model"
	"github.com/Veraticus/sorting-hat/internal/sorting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var slytherin = sorting.Houses[1]

type recorder struct {
	states []State
	mu     sync.Mutex
}

func (r *recorder) record(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) snapshot() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

func newTestSequencer(t *testing.T) (*Sequencer, *FakeClock, *recorder) {
	t.Helper()
	clock := NewFakeClock()
	seq := New(WithClock(clock))
	rec := &recorder{}
	seq.OnChange(rec.record)
	return seq, clock, rec
}

func TestSequencer_Defaults(t *testing.T) {
	seq := New()

	assert.Equal(t, 2000*time.Millisecond, seq.Delay())
	assert.Equal(t, 4, seq.Len())
	assert.Equal(t, PhaseIdle, seq.State().Phase)
	assert.Empty(t, seq.State().Message)
	assert.True(t, seq.State().Category.IsZero())
}

func TestSequencer_StepsInOrder(t *testing.T) {
	seq, clock, _ := newTestSequencer(t)

	require.True(t, seq.Start(slytherin))
	st := seq.State()
	assert.Equal(t, PhaseRunning, st.Phase)
	assert.Equal(t, 0, st.Step)
	assert.Equal(t, sorting.Messages[0], st.Message)
	assert.True(t, st.Category.IsZero(), "category stays hidden while running")

	for step := 1; step < len(sorting.Messages); step++ {
		clock.Advance(1999 * time.Millisecond)
		assert.Equal(t, step-1, seq.State().Step, "must not advance early")

		clock.Advance(time.Millisecond)
		st = seq.State()
		assert.Equal(t, PhaseRunning, st.Phase)
		assert.Equal(t, step, st.Step)
		assert.Equal(t, sorting.Messages[step], st.Message)
		assert.True(t, st.Category.IsZero())
	}

	clock.Advance(2 * time.Second)
	st = seq.State()
	assert.Equal(t, PhaseDone, st.Phase)
	assert.Equal(t, slytherin, st.Category)
	assert.Equal(t, sorting.Messages[len(sorting.Messages)-1], st.Message)
	assert.Equal(t, 8*time.Second, clock.Now())
}

func TestSequencer_NeverSkipsSteps(t *testing.T) {
	seq, clock, rec := newTestSequencer(t)

	require.True(t, seq.Start(slytherin))
	clock.Advance(3 * 2000 * time.Millisecond)

	states := rec.snapshot()
	require.Len(t, states, 3)
	for i, st := range states {
		assert.Equal(t, PhaseRunning, st.Phase)
		assert.Equal(t, i+1, st.Step)
	}

	clock.Advance(2000 * time.Millisecond)
	states = rec.snapshot()
	require.Len(t, states, 4)
	assert.Equal(t, "done(スリザリン)", states[3].String())
}

func TestSequencer_DoneIsTerminal(t *testing.T) {
	seq, clock, rec := newTestSequencer(t)

	require.True(t, seq.Start(slytherin))
	clock.Advance(time.Minute)
	require.Equal(t, PhaseDone, seq.State().Phase)
	count := len(rec.snapshot())

	clock.Advance(time.Hour)
	assert.Equal(t, PhaseDone, seq.State().Phase)
	assert.Len(t, rec.snapshot(), count)
	assert.Zero(t, clock.Pending())
	assert.False(t, seq.Start(sorting.Houses[0]), "start after done must be rejected")
	assert.Equal(t, slytherin, seq.State().Category)
}

func TestSequencer_StartIsGuarded(t *testing.T) {
	seq, clock, _ := newTestSequencer(t)

	require.True(t, seq.Start(slytherin))
	clock.Advance(2 * time.Second)
	assert.False(t, seq.Start(sorting.Houses[0]))
	assert.Equal(t, 1, seq.State().Step)
	assert.Equal(t, 1, clock.Pending(), "rejected start must not schedule another timer")
}

func TestSequencer_ResetCancelsPendingStep(t *testing.T) {
	seq, clock, rec := newTestSequencer(t)

	require.True(t, seq.Start(slytherin))
	clock.Advance(time.Second)
	seq.Reset()

	assert.Equal(t, PhaseIdle, seq.State().Phase)
	assert.Zero(t, clock.Pending())

	clock.Advance(time.Minute)
	assert.Equal(t, PhaseIdle, seq.State().Phase)
	assert.Empty(t, rec.snapshot())
}

func TestSequencer_RestartAfterReset(t *testing.T) {
	seq, clock, _ := newTestSequencer(t)

	require.True(t, seq.Start(slytherin))
	clock.Advance(time.Second)
	seq.Reset()

	hufflepuff := sorting.Houses[3]
	require.True(t, seq.Start(hufflepuff))

	clock.Advance(time.Second)
	assert.Equal(t, 0, seq.State().Step, "old timer must not advance the new run")

	clock.Advance(time.Second)
	assert.Equal(t, 1, seq.State().Step)

	clock.Advance(time.Minute)
	assert.Equal(t, hufflepuff, seq.State().Category)
}

// leakyClock hands out timers whose Stop does nothing, so only the epoch
// guard can keep a stale callback from running.
type leakyClock struct {
	*FakeClock
}

type leakyTimer struct{}

func (leakyTimer) Stop() bool { return false }

func (c leakyClock) AfterFunc(d time.Duration, f func()) Timer {
	c.FakeClock.AfterFunc(d, f)
	return leakyTimer{}
}

func TestSequencer_StaleCallbackIsNoop(t *testing.T) {
	clock := leakyClock{FakeClock: NewFakeClock()}
	seq := New(WithClock(clock))
	rec := &recorder{}
	seq.OnChange(rec.record)

	require.True(t, seq.Start(slytherin))
	clock.Advance(time.Second)
	seq.Reset()
	require.True(t, seq.Start(sorting.Houses[2]))
	epoch := seq.State().Epoch

	// The first run's timer fires at 2s even though it was "stopped".
	clock.Advance(time.Second)
	st := seq.State()
	assert.Equal(t, 0, st.Step)
	assert.Equal(t, epoch, st.Epoch)
	assert.Empty(t, rec.snapshot())

	clock.Advance(time.Second)
	assert.Equal(t, 1, seq.State().Step)
}

func TestSequencer_CustomScriptAndDelay(t *testing.T) {
	clock := NewFakeClock()
	seq := New(WithClock(clock), WithDelay(100*time.Millisecond), WithScript([]string{"a", "b"}))

	require.True(t, seq.Start(model.Category{Name: "x"}))
	assert.Equal(t, "a", seq.State().Message)

	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, "b", seq.State().Message)

	clock.Advance(100 * time.Millisecond)
	st := seq.State()
	assert.Equal(t, PhaseDone, st.Phase)
	assert.Equal(t, "b", st.Message)
	assert.Equal(t, "x", st.Category.Name)
}

func TestSequencer_RealClock(t *testing.T) {
	seq := New(WithDelay(5 * time.Millisecond))

	done := make(chan State, 1)
	seq.OnChange(func(s State) {
		if s.Phase == PhaseDone {
			done <- s
		}
	})

	require.True(t, seq.Start(slytherin))

	select {
	case st := <-done:
		assert.Equal(t, slytherin, st.Category)
	case <-time.After(2 * time.Second):
		t.Fatal("sequencer never finished")
	}
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "running", PhaseRunning.String())
	assert.Equal(t, "done", PhaseDone.String())
	assert.Equal(t, "phase(9)", Phase(9).String())
	assert.Equal(t, "running(2)", State{Phase: PhaseRunning, Step: 2}.String())
}

func TestSequencer_NotifiesEveryObserver(t *testing.T) {
	seq, clock, first := newTestSequencer(t)
	second := &recorder{}
	seq.OnChange(second.record)

	require.True(t, seq.Start(sorting.Houses[2]))
	clock.Advance(4 * seq.Delay())

	require.Len(t, first.snapshot(), 4)
	assert.Equal(t, first.snapshot(), second.snapshot())
	assert.Equal(t, PhaseDone, second.snapshot()[3].Phase)
}
