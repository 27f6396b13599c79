package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/sorting-hat/internal/common"
	"github.com/Veraticus/sorting-hat/internal/config"
	"github.com/Veraticus/sorting-hat/internal/model"
	"github.com/Veraticus/sorting-hat/internal/raster"
	"github.com/Veraticus/sorting-hat/internal/session"
	tea "github.com/charmbracelet/bubbletea"
)

// decodeImage reads and decodes path off the event loop.
func decodeImage(ticket session.LoadTicket, path string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		path = config.ExpandPath(path)
		data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 -- user-chosen image
		if err != nil {
			return imageDecodedMsg{
				ticket: ticket,
				path:   path,
				err:    common.NewUserError(fmt.Sprintf("Cannot open %s", path), err),
			}
		}

		img, err := raster.Decode(ctx, filepath.Base(path), data)
		return imageDecodedMsg{
			ticket: ticket,
			path:   path,
			img:    img,
			err:    err,
		}
	}
}

// suggestCrop asks the suggester for a starting crop.
func suggestCrop(s CropSuggester, ticket session.LoadTicket, img *model.RasterImage) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		rect, err := s.Suggest(ctx, img)
		return suggestionMsg{ticket: ticket, rect: rect, err: err}
	}
}

// saveHistory persists a completed sorting.
func saveHistory(r HistoryRecorder, result session.Result) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		record := RecordFromResult(result)
		err := r.SaveSorting(ctx, &record)
		return historySavedMsg{record: record, err: err}
	}
}

// RecordFromResult converts a finished sorting into a history row.
func RecordFromResult(result session.Result) model.SortingRecord {
	return model.SortingRecord{
		SourceName:   result.SourceName,
		SourceSHA256: result.SourceSHA256,
		Category:     result.Category.Name,
		Crop:         result.Crop,
		Hash:         result.Hash,
	}
}
