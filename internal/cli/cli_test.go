package cli

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/sorting-hat/internal/common"
	"github.com/Veraticus/sorting-hat/internal/model"
	"github.com/Veraticus/sorting-hat/internal/reveal"
	"github.com/Veraticus/sorting-hat/internal/session"
	"github.com/Veraticus/sorting-hat/internal/sorting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		r, g, b int
		ok      bool
	}{
		{in: "#ef4444", r: 0xef, g: 0x44, b: 0x44, ok: true},
		{in: "22c55e", r: 0x22, g: 0xc5, b: 0x5e, ok: true},
		{in: "#fff", ok: false},
		{in: "#zzzzzz", ok: false},
		{in: "", ok: false},
	}

	for _, tt := range tests {
		r, g, b, ok := parseHex(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, []int{tt.r, tt.g, tt.b}, []int{r, g, b}, tt.in)
		}
	}
}

func TestHouseLabel(t *testing.T) {
	for _, h := range sorting.Houses {
		label := HouseLabel(h)
		assert.Contains(t, label, h.Name)
		assert.Contains(t, label, houseIcons[h.Index])
	}
	assert.Contains(t, HouseLabel(model.Category{}), "unsorted")
}

func TestPrintHouses(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintHouses(&buf, sorting.Houses))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "スリザリン")
	assert.Contains(t, lines[1], "text-green-500")
}

func TestFormatters(t *testing.T) {
	assert.Contains(t, FormatSuccess("done"), "done")
	assert.Contains(t, FormatError("bad"), ErrorIcon)
	assert.Contains(t, FormatTitle("Houses"), HatIcon)
	assert.Contains(t, RenderBox("Title", "body"), "body")
}

func croppedSession(t *testing.T, clock reveal.Clock) *session.Session {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 7)
	}
	img.SetNRGBA(0, 0, color.NRGBA{A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	sess := session.New(session.WithClock(clock))
	require.NoError(t, sess.LoadImage(context.Background(), "p.png", buf.Bytes()))
	require.NoError(t, sess.ConfirmCrop())
	return sess
}

func TestPlayReveal(t *testing.T) {
	clock := reveal.NewFakeClock()
	sess := croppedSession(t, clock)

	var out bytes.Buffer
	type result struct {
		err error
		st  reveal.State
	}
	done := make(chan result, 1)
	go func() {
		st, err := PlayReveal(context.Background(), &out, sess)
		done <- result{st: st, err: err}
	}()

	require.Eventually(t, func() bool { return clock.Pending() == 1 }, time.Second, time.Millisecond)
	clock.Advance(4 * reveal.DefaultDelay)

	var r result
	select {
	case r = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reveal did not finish")
	}

	require.NoError(t, r.err)
	assert.Equal(t, reveal.PhaseDone, r.st.Phase)
	for _, msg := range sorting.Messages {
		assert.Contains(t, out.String(), msg)
	}
	assert.Contains(t, out.String(), r.st.Category.Name)
}

func TestPlayReveal_NotCropped(t *testing.T) {
	sess := session.New(session.WithClock(reveal.NewFakeClock()))

	_, err := PlayReveal(context.Background(), &bytes.Buffer{}, sess)
	assert.ErrorIs(t, err, common.ErrNoCrop)
}

func TestPlayReveal_Canceled(t *testing.T) {
	clock := reveal.NewFakeClock()
	sess := croppedSession(t, clock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st, err := PlayReveal(ctx, &bytes.Buffer{}, sess)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, reveal.PhaseRunning, st.Phase)
}
