package main

import (
	"log/slog"

	"github.com/Veraticus/sorting-hat/internal/config"
	"github.com/Veraticus/sorting-hat/internal/storage"
	"github.com/Veraticus/sorting-hat/internal/tui"
	"github.com/Veraticus/sorting-hat/internal/tui/themes"
	"github.com/spf13/cobra"
)

func sortCmd() *cobra.Command {
	var recordDir string

	cmd := &cobra.Command{
		Use:   "sort [image]",
		Short: "Crop a portrait interactively and reveal its house",
		Long: `Open the interactive sorting screen.

Load an image, move and resize the square crop, confirm it, and let the hat
deliberate. Completed sortings are recorded in the history database unless
history is disabled.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			sess, err := newSession()
			if err != nil {
				return err
			}

			suggester, err := newSuggester()
			if err != nil {
				return err
			}

			opts := []tui.Option{
				tui.WithTheme(themes.GetTheme(settings.Theme)),
				tui.WithPreviewWidth(settings.PreviewWidth),
				tui.WithSuggester(suggester),
			}
			if len(args) == 1 {
				opts = append(opts, tui.WithInitialPath(args[0]))
			}

			var store *storage.SQLiteStorage
			if settings.HistoryEnabled {
				store, err = initStorage(ctx)
				if err != nil {
					return err
				}
				defer func() {
					if closeErr := store.Close(); closeErr != nil {
						slog.Error("Failed to close storage", "error", closeErr)
					}
				}()
				opts = append(opts, tui.WithRecorder(store))
			}

			if recordDir != "" {
				frames, fErr := tui.NewFrameRecorder(config.ExpandPath(recordDir))
				if fErr != nil {
					return fErr
				}
				defer func() {
					if closeErr := frames.Close(); closeErr != nil {
						slog.Error("Failed to close frame recording", "error", closeErr)
					}
					slog.Info("Frames recorded", "dir", frames.Dir(), "frames", frames.Frames())
				}()
				opts = append(opts, tui.WithFrameRecorder(frames))
			}

			slog.Info("Starting sorting session",
				"theme", settings.Theme,
				"history", settings.HistoryEnabled,
				"face_detection", suggester.FaceDetection())

			return tui.Run(ctx, sess, opts...)
		},
	}

	cmd.Flags().StringVar(&recordDir, "record", "", "write every rendered frame to this directory for debugging")

	return cmd
}
