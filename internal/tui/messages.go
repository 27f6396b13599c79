package tui

import (
	"github.com/Veraticus/sorting-hat/internal/model"
	"github.com/Veraticus/sorting-hat/internal/reveal"
	"github.com/Veraticus/sorting-hat/internal/session"
)

// imageDecodedMsg carries a decode that ran off the event loop.
type imageDecodedMsg struct {
	err    error
	img    *model.RasterImage
	path   string
	ticket session.LoadTicket
}

// suggestionMsg carries a suggested crop for the image loaded under ticket.
type suggestionMsg struct {
	err    error
	rect   model.Rect
	ticket session.LoadTicket
}

// revealStepMsg is sent from the sequencer's timer for every transition.
type revealStepMsg struct {
	state reveal.State
}

// sortingCompleteMsg is sent once a reveal reaches Done.
type sortingCompleteMsg struct {
	result session.Result
}

type historySavedMsg struct {
	err    error
	record model.SortingRecord
}
