package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/Veraticus/sorting-hat/internal/common"
	"github.com/Veraticus/sorting-hat/internal/reveal"
	"github.com/Veraticus/sorting-hat/internal/session"
)

// PlayReveal starts the reveal on sess and prints each line the hat speaks
// to w as the sequencer's clock advances. It returns the final state once the
// house is known, or ctx's error if ctx ends first. The session must already
// hold a cropped image.
func PlayReveal(ctx context.Context, w io.Writer, sess *session.Session) (reveal.State, error) {
	steps := make(chan reveal.State, 8)
	sess.OnChange(func(st reveal.State) {
		select {
		case steps <- st:
		case <-ctx.Done():
		}
	})

	if !sess.StartReveal() {
		return sess.Snapshot().Reveal, fmt.Errorf("reveal could not start: %w", errRevealNotReady(sess))
	}

	first := sess.Snapshot().Reveal
	epoch := first.Epoch
	if _, err := fmt.Fprintln(w, FormatMessage(first.Message)); err != nil {
		return first, err
	}

	for {
		select {
		case <-ctx.Done():
			return sess.Snapshot().Reveal, ctx.Err()
		case st := <-steps:
			if st.Epoch != epoch {
				continue
			}
			if st.Phase == reveal.PhaseDone {
				_, err := fmt.Fprintf(w, "\n%s\n", HouseLabel(st.Category))
				return st, err
			}
			if _, err := fmt.Fprintln(w, FormatMessage(st.Message)); err != nil {
				return st, err
			}
		}
	}
}

func errRevealNotReady(sess *session.Session) error {
	snap := sess.Snapshot()
	if snap.Cropped == nil {
		return common.ErrNoCrop
	}
	return fmt.Errorf("reveal already %s", snap.Reveal.Phase)
}
