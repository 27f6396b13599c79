package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/sorting-hat/internal/cli"
	"github.com/Veraticus/sorting-hat/internal/common"
	"github.com/Veraticus/sorting-hat/internal/model"
	"github.com/Veraticus/sorting-hat/internal/session"
	"github.com/Veraticus/sorting-hat/internal/tui"
	"github.com/spf13/cobra"
)

type assignOptions struct {
	Out           string
	X             int
	Y             int
	Size          int
	DisplayWidth  int
	DisplayHeight int
	Reveal        bool
	Suggest       bool
}

func assignCmd() *cobra.Command {
	var opts assignOptions

	cmd := &cobra.Command{
		Use:   "assign <image>",
		Short: "Sort one image without the interactive screen",
		Long: `Crop an image at the given square and print the house it belongs to.

Coordinates are in displayed pixels. Without --display-width/--display-height
the image is displayed at its natural size, so coordinates are source pixels.`,
		Example: `  sortinghat assign portrait.png --x 40 --y 30 --size 200
  sortinghat assign portrait.jpg --suggest --reveal
  sortinghat assign portrait.png --display-width 512 --display-height 384 --size 128 --out crop.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			data, err := readImage(args[0])
			if err != nil {
				return err
			}

			sess, err := newSession()
			if err != nil {
				return err
			}

			var suggester tui.CropSuggester
			if opts.Suggest {
				s, sErr := newSuggester()
				if sErr != nil {
					return sErr
				}
				suggester = s
			}

			var recorder tui.HistoryRecorder
			if settings.HistoryEnabled {
				store, sErr := initStorage(ctx)
				if sErr != nil {
					return sErr
				}
				defer func() {
					if closeErr := store.Close(); closeErr != nil {
						slog.Error("Failed to close storage", "error", closeErr)
					}
				}()
				recorder = store
			}

			if opts.Reveal {
				ctx = cli.NewInterruptHandler(cmd.ErrOrStderr()).HandleInterrupts(ctx, false)
			}

			_, err = assign(ctx, cmd.OutOrStdout(), assignRequest{
				Session:   sess,
				Suggester: suggester,
				Recorder:  recorder,
				Name:      filepath.Base(args[0]),
				Data:      data,
				Options:   opts,
			})
			return err
		},
	}

	cmd.Flags().IntVar(&opts.X, "x", 0, "left edge of the crop")
	cmd.Flags().IntVar(&opts.Y, "y", 0, "top edge of the crop")
	cmd.Flags().IntVar(&opts.Size, "size", 0, "side of the square crop (default: crop.default_size)")
	cmd.Flags().IntVar(&opts.DisplayWidth, "display-width", 0, "width the image is displayed at")
	cmd.Flags().IntVar(&opts.DisplayHeight, "display-height", 0, "height the image is displayed at")
	cmd.Flags().BoolVar(&opts.Reveal, "reveal", false, "play the timed reveal before printing the house")
	cmd.Flags().BoolVar(&opts.Suggest, "suggest", false, "let the hat choose the crop (ignores --x/--y/--size)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write the cropped PNG to this file")

	return cmd
}

// assignRequest bundles what one headless sorting needs.
type assignRequest struct {
	Session   *session.Session
	Suggester tui.CropSuggester
	Recorder  tui.HistoryRecorder
	Name      string
	Data      []byte
	Options   assignOptions
}

// assign loads, crops and sorts one image, printing the outcome to w.
func assign(ctx context.Context, w io.Writer, req assignRequest) (session.Result, error) {
	sess := req.Session
	opts := req.Options

	if opts.DisplayWidth > 0 && opts.DisplayHeight > 0 {
		sess.SetDisplaySize(opts.DisplayWidth, opts.DisplayHeight)
	}

	if err := sess.LoadImage(ctx, req.Name, req.Data); err != nil {
		return session.Result{}, err
	}

	crop, err := chooseCrop(ctx, sess.Snapshot(), req.Suggester, opts)
	if err != nil {
		return session.Result{}, err
	}
	sess.UpdateCropRectangle(crop)

	if err := sess.ConfirmCrop(); err != nil {
		return session.Result{}, err
	}

	if opts.Out != "" {
		if err := writeCrop(opts.Out, sess.Snapshot().Cropped); err != nil {
			return session.Result{}, err
		}
	}

	if opts.Reveal {
		if _, err := cli.PlayReveal(ctx, w, sess); err != nil {
			return session.Result{}, err
		}
	}

	result, err := sess.Result()
	if err != nil {
		return session.Result{}, err
	}

	if req.Recorder != nil {
		record := tui.RecordFromResult(result)
		if err := req.Recorder.SaveSorting(ctx, &record); err != nil {
			return result, fmt.Errorf("failed to record sorting: %w", err)
		}
		slog.Debug("Recorded sorting", "id", record.ID, "house", record.Category)
	}

	if !opts.Reveal {
		if _, err := fmt.Fprintln(w, cli.HouseLabel(result.Category)); err != nil {
			return result, err
		}
	}
	_, err = fmt.Fprintln(w, cli.FormatInfo(fmt.Sprintf("%s crop %s, hash %d", result.SourceName, result.Crop, result.Hash)))
	return result, err
}

func chooseCrop(ctx context.Context, snap session.Snapshot, s tui.CropSuggester, opts assignOptions) (model.Rect, error) {
	if s != nil {
		rect, err := s.Suggest(ctx, snap.Source)
		if err != nil {
			return model.Rect{}, fmt.Errorf("failed to suggest crop: %w", err)
		}
		return rect, nil
	}

	size := opts.Size
	if size <= 0 {
		size = snap.Crop.Width
	}
	return model.Square(opts.X, opts.Y, size), nil
}

func writeCrop(path string, cropped *model.RasterImage) error {
	if cropped == nil {
		return common.ErrNoCrop
	}
	if err := os.WriteFile(filepath.Clean(path), cropped.Encoded, 0600); err != nil {
		return common.NewUserError(fmt.Sprintf("Cannot write %s", path), err)
	}
	return nil
}
