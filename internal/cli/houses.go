package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Veraticus/sorting-hat/internal/model"
	"github.com/fatih/color"
)

var houseIcons = []string{"🦁", "🐍", "🦅", "🦡"}

// HouseColor returns a fatih/color printer for the house's accent.
func HouseColor(c model.Category) *color.Color {
	out := color.New(color.Bold)
	if r, g, b, ok := parseHex(c.Accent.Color); ok {
		out = out.AddRGB(r, g, b)
	}
	return out
}

// HouseLabel renders the house name with its crest in the accent color.
func HouseLabel(c model.Category) string {
	if c.IsZero() {
		return HatIcon + " (unsorted)"
	}
	return HouseColor(c).Sprintf("%s %s", houseIcon(c), c.Name)
}

// PrintHouses writes one line per house: index, label and accent.
func PrintHouses(w io.Writer, houses []model.Category) error {
	for _, h := range houses {
		if _, err := fmt.Fprintf(w, "  %d  %s  %s %s\n",
			h.Index, HouseLabel(h),
			color.New(color.Faint).Sprint(h.Accent.Color),
			color.New(color.Faint).Sprint(h.Accent.Class),
		); err != nil {
			return err
		}
	}
	return nil
}

func houseIcon(c model.Category) string {
	if c.Index < 0 || c.Index >= len(houseIcons) {
		return HatIcon
	}
	return houseIcons[c.Index]
}

// parseHex parses #rrggbb.
func parseHex(s string) (int, int, int, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}
