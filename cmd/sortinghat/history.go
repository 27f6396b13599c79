package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/Veraticus/sorting-hat/internal/cli"
	"github.com/Veraticus/sorting-hat/internal/model"
	"github.com/Veraticus/sorting-hat/internal/sorting"
	"github.com/spf13/cobra"
)

// historySource is the subset of storage the history command reads.
type historySource interface {
	ListSortings(ctx context.Context, limit int) ([]model.SortingRecord, error)
	CountByHouse(ctx context.Context) (map[string]int, error)
}

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent sortings and house totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := store.Close(); closeErr != nil {
					slog.Error("Failed to close storage", "error", closeErr)
				}
			}()

			return printHistory(ctx, cmd.OutOrStdout(), store, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of recent sortings to show (0 for all)")

	return cmd
}

func printHistory(ctx context.Context, w io.Writer, src historySource, limit int) error {
	records, err := src.ListSortings(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list sortings: %w", err)
	}

	if len(records) == 0 {
		_, err = fmt.Fprintln(w, cli.FormatInfo("No sortings recorded yet. Try 'sortinghat sort'."))
		return err
	}

	counts, err := src.CountByHouse(ctx)
	if err != nil {
		return fmt.Errorf("failed to count sortings: %w", err)
	}

	var b strings.Builder
	b.WriteString(cli.TableHeaderStyle.Render(fmt.Sprintf("%-19s  %-28s  %-12s  %-16s", "When", "Image", "Crop", "House")))
	b.WriteString("\n")
	for _, r := range records {
		fmt.Fprintf(&b, "%-19s  %-28s  %-12s  %s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			truncate(r.SourceName, 28),
			r.Crop,
			cli.HouseLabel(houseOf(r.Category)))
	}
	if _, err := fmt.Fprintln(w, cli.RenderBox("Recent Sortings", strings.TrimRight(b.String(), "\n"))); err != nil {
		return err
	}

	return printTotals(w, counts)
}

func printTotals(w io.Writer, counts map[string]int) error {
	names := make([]string, 0, len(counts))
	total := 0
	for name, n := range counts {
		names = append(names, name)
		total += n
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	if _, err := fmt.Fprintln(w, cli.FormatTitle(fmt.Sprintf("Totals (%d sorted)", total))); err != nil {
		return err
	}
	for _, name := range names {
		if _, err := fmt.Fprintf(w, "  %-24s %d\n", cli.HouseLabel(houseOf(name)), counts[name]); err != nil {
			return err
		}
	}
	return nil
}

// houseOf resolves a stored house name. Unknown names keep their text.
func houseOf(name string) model.Category {
	if c, ok := sorting.HouseByName(name); ok {
		return c
	}
	return model.Category{Name: name, Index: -1}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
