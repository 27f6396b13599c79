package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Veraticus/sorting-hat/internal/cli"
	"github.com/Veraticus/sorting-hat/internal/model"
	"github.com/Veraticus/sorting-hat/internal/session"
	"github.com/Veraticus/sorting-hat/internal/tui"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// batchStore is the subset of storage batch sorting needs.
type batchStore interface {
	SaveSortings(ctx context.Context, records []model.SortingRecord) error
}

type batchOptions struct {
	Crop    assignOptions
	Jobs    int
	Verbose bool
}

// batchOutcome is the sorting of one file, or why it failed.
type batchOutcome struct {
	Err    error
	Path   string
	Result session.Result
}

func batchCmd() *cobra.Command {
	var opts batchOptions

	cmd := &cobra.Command{
		Use:   "batch <directory>",
		Short: "Sort every image in a directory",
		Long: `Sort every image in a directory with the same crop settings.

Files are sorted concurrently. Files that cannot be read or decoded are
reported and skipped; the rest are recorded in one transaction.`,
		Example: `  sortinghat batch ~/Pictures/portraits --suggest
  sortinghat batch ./photos --size 64 --jobs 8`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if opts.Jobs <= 0 {
				opts.Jobs = settings.BatchJobs
			}

			paths, err := listImages(args[0])
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("No images found in "+args[0]))
				return err
			}

			var suggester tui.CropSuggester
			if opts.Crop.Suggest {
				s, sErr := newSuggester()
				if sErr != nil {
					return sErr
				}
				suggester = s
			}

			handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
			sortCtx := handler.HandleInterrupts(ctx, settings.HistoryEnabled)

			outcomes, sortErr := sortAll(sortCtx, paths, opts, suggester, newBatchBar(cmd.ErrOrStderr(), len(paths)))

			// Finished sortings are kept even when the run was interrupted.
			ctx = context.WithoutCancel(ctx)

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
				if sErr := recordOutcomes(ctx, store, outcomes); sErr != nil {
					return sErr
				}
			}

			if err := printOutcomes(cmd.OutOrStdout(), outcomes, opts.Verbose); err != nil {
				return err
			}
			if handler.WasInterrupted() {
				return context.Canceled
			}
			return sortErr
		},
	}

	cmd.Flags().IntVar(&opts.Crop.X, "x", 0, "left edge of the crop")
	cmd.Flags().IntVar(&opts.Crop.Y, "y", 0, "top edge of the crop")
	cmd.Flags().IntVar(&opts.Crop.Size, "size", 0, "side of the square crop (default: crop.default_size)")
	cmd.Flags().BoolVar(&opts.Crop.Suggest, "suggest", false, "let the hat choose each crop")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 0, "images sorted in parallel (default: batch.jobs)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "show the hash and crop of each image")

	return cmd
}

// listImages returns the image files directly inside dir, sorted by name.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Clean(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// sortAll sorts each path in its own session. Outcomes keep the order of
// paths. A file that fails to sort is recorded in its outcome; the returned
// error is only ever ctx's, once ctx ends.
func sortAll(ctx context.Context, paths []string, opts batchOptions, s tui.CropSuggester, bar *progressbar.ProgressBar) ([]batchOutcome, error) {
	outcomes := make([]batchOutcome, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Jobs, 1))

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			outcomes[i] = sortOne(gctx, path, opts.Crop, s)
			if outcomes[i].Err != nil {
				slog.Warn("Failed to sort image", "path", path, "error", outcomes[i].Err)
			}
			if bar != nil {
				if err := bar.Add(1); err != nil {
					slog.Warn("Failed to update progress bar", "error", err)
				}
			}
			return ctx.Err()
		})
	}

	return outcomes, g.Wait()
}

func sortOne(ctx context.Context, path string, opts assignOptions, s tui.CropSuggester) batchOutcome {
	out := batchOutcome{Path: path}

	if err := ctx.Err(); err != nil {
		out.Err = err
		return out
	}

	data, err := readImage(path)
	if err != nil {
		out.Err = err
		return out
	}

	sess, err := newSession()
	if err != nil {
		out.Err = err
		return out
	}

	opts.Reveal = false
	opts.Out = ""
	out.Result, out.Err = assign(ctx, io.Discard, assignRequest{
		Session:   sess,
		Suggester: s,
		Name:      filepath.Base(path),
		Data:      data,
		Options:   opts,
	})
	return out
}

func recordOutcomes(ctx context.Context, store batchStore, outcomes []batchOutcome) error {
	records := make([]model.SortingRecord, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err == nil {
			records = append(records, tui.RecordFromResult(o.Result))
		}
	}
	if len(records) == 0 {
		return nil
	}

	if err := store.SaveSortings(ctx, records); err != nil {
		return fmt.Errorf("failed to record sortings: %w", err)
	}
	slog.Info("Recorded sortings", "count", len(records))
	return nil
}

func printOutcomes(w io.Writer, outcomes []batchOutcome, verbose bool) error {
	sorted, failed := 0, 0
	for _, o := range outcomes {
		name := filepath.Base(o.Path)
		var line string
		switch {
		case o.Err != nil:
			failed++
			line = fmt.Sprintf("  %-32s %s", name, cli.FormatError(o.Err.Error()))
		case verbose:
			sorted++
			line = fmt.Sprintf("  %-32s %s  %s", name, cli.HouseLabel(o.Result.Category),
				cli.SubtleStyle.Render(fmt.Sprintf("%s %d", o.Result.Crop, o.Result.Hash)))
		default:
			sorted++
			line = fmt.Sprintf("  %-32s %s", name, cli.HouseLabel(o.Result.Category))
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	summary := fmt.Sprintf("Sorted %d of %d images", sorted, len(outcomes))
	if failed > 0 {
		_, err := fmt.Fprintln(w, "\n"+cli.FormatWarning(fmt.Sprintf("%s, %d failed", summary, failed)))
		return err
	}
	_, err := fmt.Fprintln(w, "\n"+cli.FormatSuccess(summary))
	return err
}

func newBatchBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Sorting portraits...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}
