package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Veraticus/sorting-hat/internal/cli"
	"github.com/Veraticus/sorting-hat/internal/raster"
	"github.com/Veraticus/sorting-hat/internal/tui"
	"github.com/spf13/cobra"
)

func inspectCmd() *cobra.Command {
	var allTags bool

	cmd := &cobra.Command{
		Use:   "inspect <image>",
		Short: "Show image details and the suggested crop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readImage(args[0])
			if err != nil {
				return err
			}

			suggester, err := newSuggester()
			if err != nil {
				return err
			}

			return inspect(cmd.Context(), cmd.OutOrStdout(), filepath.Base(args[0]), data, suggester, allTags)
		},
	}

	cmd.Flags().BoolVar(&allTags, "all", false, "list every EXIF tag")

	return cmd
}

func inspect(ctx context.Context, w io.Writer, name string, data []byte, s tui.CropSuggester, allTags bool) error {
	img, err := raster.Decode(ctx, name, data)
	if err != nil {
		return err
	}

	md, err := raster.ReadMetadata(data)
	if err != nil {
		// Broken EXIF does not make the image unusable.
		md = raster.Metadata{}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Format: %s\n", img.Format)
	fmt.Fprintf(&b, "Size:   %dx%d\n", img.NaturalWidth, img.NaturalHeight)
	if md.Make != "" || md.Model != "" {
		fmt.Fprintf(&b, "Camera: %s\n", strings.TrimSpace(md.Make+" "+md.Model))
	}
	if md.Taken != "" {
		fmt.Fprintf(&b, "Taken:  %s\n", md.Taken)
	}
	if md.Orientation != "" {
		fmt.Fprintf(&b, "Orient: %s\n", md.Orientation)
	}
	if md.HasGPS {
		fmt.Fprintf(&b, "GPS:    present\n")
	}

	if s != nil {
		rect, sErr := s.Suggest(ctx, img)
		if sErr != nil {
			fmt.Fprintf(&b, "Crop:   %s\n", cli.FormatWarning(sErr.Error()))
		} else {
			fmt.Fprintf(&b, "Crop:   %s (--x %d --y %d --size %d)\n", rect, rect.X, rect.Y, rect.Width)
		}
	}

	if allTags && len(md.Tags) > 0 {
		keys := make([]string, 0, len(md.Tags))
		for k := range md.Tags {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "  %-24s %s\n", k, md.Tags[k])
		}
	}

	_, err = fmt.Fprintln(w, cli.RenderBox(name, strings.TrimRight(b.String(), "\n")))
	return err
}
