package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/sorting-hat/internal/common"
	"github.com/Veraticus/sorting-hat/internal/reveal"
	"github.com/Veraticus/sorting-hat/internal/sorting"
	"github.com/Veraticus/sorting-hat/internal/tui/themes"
	"github.com/charmbracelet/lipgloss"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{m.theme.Title.Render("🎩 Sorting Hat")}

	left := m.renderImage()
	right := m.renderPanel()
	if left == "" {
		sections = append(sections, right)
	} else if m.width >= lipgloss.Width(left)+40 {
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right))
	} else {
		sections = append(sections, left, "", right)
	}

	if m.prompting {
		sections = append(sections, "", m.input.View())
	}
	if line := m.renderStatus(); line != "" {
		sections = append(sections, "", line)
	}
	sections = append(sections, "", m.help.View(m.keymap))

	return lipgloss.NewStyle().Padding(1, 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...),
	)
}

// renderImage shows the source with its crop while cropping, and the
// circular portrait once cropped.
func (m Model) renderImage() string {
	switch m.state {
	case StateCropping:
		if m.thumb == nil {
			return ""
		}
		crop := m.sess.Snapshot().Crop
		return lipgloss.NewStyle().
			Border(m.theme.BorderStyle).
			BorderForeground(m.theme.Border).
			Render(m.thumb.Render(&crop, m.theme.DimFactor))
	case StateCropped, StateRevealing, StateDone:
		return m.portrait
	default:
		return ""
	}
}

func (m Model) renderPanel() string {
	var b strings.Builder

	switch m.state {
	case StateEmpty:
		if m.loading {
			fmt.Fprintf(&b, "%s Reading image...", m.spinner.View())
		} else {
			b.WriteString(m.theme.Subtitle.Render("Choose a portrait and the hat will decide where it belongs."))
		}

	case StateCropping:
		snap := m.sess.Snapshot()
		b.WriteString(m.theme.Bold.Render("Choose your crop"))
		b.WriteString("\n\n")
		fmt.Fprintf(&b, "Image  %s\n", snap.Source.Name)
		fmt.Fprintf(&b, "Shown  %dx%d\n", snap.Source.DisplayWidth, snap.Source.DisplayHeight)
		fmt.Fprintf(&b, "Crop   %s\n\n", snap.Crop)
		b.WriteString(m.theme.StatusMuted.Render("Move with the arrow keys, resize with +/-, Enter to confirm."))
		if m.loading {
			fmt.Fprintf(&b, "\n\n%s Reading next image...", m.spinner.View())
		}

	case StateCropped:
		b.WriteString(m.theme.Bold.Render("Ready to be sorted"))
		b.WriteString("\n\n")
		b.WriteString(m.theme.StatusMuted.Render("Press Space and the hat will speak."))

	case StateRevealing:
		b.WriteString(m.theme.Message.Render(m.reveal.Message))
		b.WriteString("\n\n")
		fmt.Fprintf(&b, "%s %s", m.spinner.View(), m.progress.ViewAs(revealProgress(m.reveal)))

	case StateDone:
		house := m.reveal.Category
		b.WriteString(m.theme.Message.Render(m.reveal.Message))
		b.WriteString("\n\n")
		b.WriteString(themes.HouseStyle(house).Render(
			fmt.Sprintf("%s  %s!", themes.GetHouseIcon(house), house.Name),
		))
		b.WriteString("\n\n")
		b.WriteString(m.theme.StatusMuted.Render("Press o to sort another portrait."))
	}

	return m.theme.RoundedBox.Render(b.String())
}

func (m Model) renderStatus() string {
	if m.lastError != nil {
		return m.theme.StatusError.Render(common.Describe(m.lastError))
	}
	if m.status != "" {
		return m.theme.StatusOK.Render(m.status)
	}
	return ""
}

// revealProgress is the fraction of the reveal already shown.
func revealProgress(st reveal.State) float64 {
	total := float64(len(sorting.Messages) + 1)
	switch st.Phase {
	case reveal.PhaseRunning:
		return float64(st.Step+1) / total
	case reveal.PhaseDone:
		return 1
	default:
		return 0
	}
}
