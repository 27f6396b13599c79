// Package themes holds the lipgloss styles used by the sorting TUI.
package themes

import (
	"github.com/Veraticus/sorting-hat/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the visual style for the TUI.
type Theme struct {
	Title        lipgloss.Style
	Subtitle     lipgloss.Style
	Normal       lipgloss.Style
	Bold         lipgloss.Style
	Italic       lipgloss.Style
	Message      lipgloss.Style
	RoundedBox   lipgloss.Style
	StatusInfo   lipgloss.Style
	StatusError  lipgloss.Style
	StatusOK     lipgloss.Style
	StatusMuted  lipgloss.Style
	Primary      lipgloss.Color
	Secondary    lipgloss.Color
	Muted        lipgloss.Color
	Border       lipgloss.Color
	Foreground   lipgloss.Color
	Background   lipgloss.Color
	Error        lipgloss.Color
	Success      lipgloss.Color
	DimFactor    float64
	BorderStyle  lipgloss.Border
	ProgressFrom string
	ProgressTo   string
}

// Default is the default theme.
var Default = newTheme(palette{
	primary:    "#7c3aed",
	secondary:  "#a78bfa",
	success:    "#10b981",
	errorColor: "#ef4444",
	background: "#1a1a1a",
	foreground: "#fafafa",
	subtle:     "#a3a3a3",
	border:     "#404040",
	muted:      "#737373",
})

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = newTheme(palette{
	primary:    "#cba6f7",
	secondary:  "#f5c2e7",
	success:    "#a6e3a1",
	errorColor: "#f38ba8",
	background: "#1e1e2e",
	foreground: "#cdd6f4",
	subtle:     "#a6adc8",
	border:     "#45475a",
	muted:      "#6c7086",
})

type palette struct {
	primary    string
	secondary  string
	success    string
	errorColor string
	background string
	foreground string
	subtle     string
	border     string
	muted      string
}

func newTheme(p palette) Theme {
	return Theme{
		Primary:      lipgloss.Color(p.primary),
		Secondary:    lipgloss.Color(p.secondary),
		Success:      lipgloss.Color(p.success),
		Error:        lipgloss.Color(p.errorColor),
		Background:   lipgloss.Color(p.background),
		Foreground:   lipgloss.Color(p.foreground),
		Border:       lipgloss.Color(p.border),
		Muted:        lipgloss.Color(p.muted),
		DimFactor:    0.35,
		BorderStyle:  lipgloss.RoundedBorder(),
		ProgressFrom: p.primary,
		ProgressTo:   p.secondary,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.foreground)).
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.subtle)),
		Normal: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.foreground)),
		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.foreground)),
		Italic: lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color(p.foreground)),
		Message: lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color(p.secondary)),
		RoundedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.border)).
			Padding(1, 2),

		StatusOK: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.success)).
			Bold(true),
		StatusError: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.errorColor)).
			Bold(true),
		StatusInfo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.primary)).
			Bold(true),
		StatusMuted: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.muted)).
			Italic(true),
	}
}

// Names lists the themes GetTheme knows.
var Names = []string{"default", "catppuccin-mocha"}

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin-mocha":
		return CatppuccinMocha
	default:
		return Default
	}
}

// HouseStyle renders a house name in its accent color.
func HouseStyle(c model.Category) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	if c.Accent.Color != "" {
		style = style.Foreground(lipgloss.Color(c.Accent.Color))
	}
	return style
}

// HouseIcons maps house index to its crest animal.
var HouseIcons = []string{"🦁", "🐍", "🦅", "🦡"}

// GetHouseIcon returns the crest for a house.
func GetHouseIcon(c model.Category) string {
	if c.IsZero() || c.Index < 0 || c.Index >= len(HouseIcons) {
		return "🎩"
	}
	return HouseIcons[c.Index]
}
