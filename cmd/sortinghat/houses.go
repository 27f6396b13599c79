package main

import (
	"fmt"

	"github.com/Veraticus/sorting-hat/internal/cli"
	"github.com/Veraticus/sorting-hat/internal/sorting"
	"github.com/spf13/cobra"
)

func housesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "houses",
		Short: "List the houses and their accents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			if _, err := fmt.Fprintln(w, cli.FormatTitle("The Houses")); err != nil {
				return err
			}
			return cli.PrintHouses(w, sorting.Houses)
		},
	}
}
