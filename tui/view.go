package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/philtim/timeplanner/clock"
	"github.com/philtim/timeplanner/editor"
)

// cardOverhead is border (2) + padding (4) + margins (2)
const cardOverhead = 8

// maxSuggestions is how many typed-time suggestions are listed at once
const maxSuggestions = 8

// View renders the UI
func (m model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	if !m.ready {
		return "Initializing..."
	}

	switch m.state {
	case viewMain:
		return m.renderMain()
	case viewAdd:
		return m.renderAdd()
	case viewEdit:
		return m.renderEdit()
	case viewConfirm:
		return m.renderConfirm()
	case viewHelp:
		return m.renderHelp()
	}

	return ""
}

func (m model) palette() palette {
	if m.terminalTheme {
		return terminalPalette
	}
	if m.session.State().Dark {
		return darkPalette
	}
	return lightPalette
}

// renderMain renders the card grid, keeping the selected card in view
func (m model) renderMain() string {
	content, top, bottom := m.renderCards()
	vp := m.viewport
	vp.SetContent(content)
	if top < vp.YOffset {
		vp.SetYOffset(top)
	} else if bottom > vp.YOffset+vp.Height {
		vp.SetYOffset(bottom - vp.Height)
	}

	return fmt.Sprintf("%s\n%s\n%s", vp.View(), m.renderStatusBar(), m.renderCommandBar())
}

// renderCards renders all zones in a grid. It also returns the first and
// one-past-last line of the row holding the selected card.
func (m model) renderCards() (string, int, int) {
	st := m.session.State()
	p := m.palette()

	if len(st.Zones) == 0 {
		helpStyle := lipgloss.NewStyle().
			Foreground(p.Muted).
			Align(lipgloss.Center).
			Padding(2, 4)
		return helpStyle.Render("Press 'a' to add a timezone"), 0, 0
	}

	cols := calculateColumns(st.Zones, m.width)
	widthPerCard := m.width / cols
	cardWidth := widthPerCard - cardOverhead
	if cardWidth < 20 {
		cardWidth = 20
	}

	var rows []string
	line, top, bottom := 0, 0, 0
	for start := 0; start < len(st.Zones); start += cols {
		end := min(start+cols, len(st.Zones))
		var cards []string
		for i := start; i < end; i++ {
			cards = append(cards, m.renderZoneCard(st.Zones[i], i == m.selected, cardWidth))
		}
		row := lipgloss.JoinHorizontal(lipgloss.Top, cards...)
		h := lipgloss.Height(row)
		if m.selected >= start && m.selected < end {
			top, bottom = line, line+h
		}
		line += h
		rows = append(rows, row)
	}

	return strings.Join(rows, "\n"), top, bottom
}

// renderZoneCard renders a single zone card with its slider
func (m model) renderZoneCard(zone string, selected bool, width int) string {
	p := m.palette()
	instant := m.session.State().Instant.Time()

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Title).
		Align(lipgloss.Center).
		Width(width).
		PaddingTop(1).
		PaddingBottom(1)

	timeStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Time).
		Align(lipgloss.Center).
		Width(width).
		MarginBottom(1)

	dateStyle := lipgloss.NewStyle().
		Foreground(p.Muted).
		Align(lipgloss.Center).
		Width(width).
		PaddingBottom(1)

	border := p.Border
	if selected {
		border = p.SelectedBorder
	}
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 2).
		Margin(1, 1, 0, 1)

	title := titleStyle.Render(ansi.Truncate(strings.ToUpper(zone), width, "…"))

	clk, err := clock.New(zone)
	if err != nil {
		body := dateStyle.Foreground(p.Error).Render("unknown timezone")
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, body))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		timeStyle.Render(clk.FormatTime(instant)),
		dateStyle.Render(clk.FormatDateWithOffset(instant)),
		renderSlider(editor.SliderIndex(instant, clk.Location), width, p),
	)

	return cardStyle.Render(content)
}

// renderSlider draws the position of the day's quarter hour index
func renderSlider(index, width int, p palette) string {
	if width < 3 {
		width = 3
	}
	knob := index * (width - 1) / editor.SliderMax
	fill := lipgloss.NewStyle().Foreground(p.SliderFill)
	empty := lipgloss.NewStyle().Foreground(p.SliderEmpty)
	return fill.Render(strings.Repeat("━", knob)+"●") + empty.Render(strings.Repeat("─", width-1-knob))
}

// calculateColumns determines the number of columns based on terminal width
// and zone name lengths
func calculateColumns(zones []string, width int) int {
	maxNameLen := 0
	for _, zone := range zones {
		if n := ansi.StringWidth(zone); n > maxNameLen {
			maxNameLen = n
		}
	}

	// The date line is ~29 chars: "Mon, Jan 2 2006 - UTC+05:30"
	minContentWidth := max(maxNameLen, 29)
	minCardWidth := minContentWidth + cardOverhead

	if width >= minCardWidth*4 {
		return 4
	}
	if width >= minCardWidth*2 {
		return 2
	}
	return 1
}

func (m model) titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(m.palette().Time).
		Padding(1, 0)
}

func (m model) hint(s string) string {
	return lipgloss.NewStyle().Foreground(m.palette().Muted).Render(s)
}

// renderAdd renders the zone search view
func (m model) renderAdd() string {
	var b strings.Builder
	p := m.palette()

	b.WriteString(m.titleStyle().Render("Add Timezone"))
	b.WriteString("\n\n")

	b.WriteString("Search by zone name, or by city name once the city database is loaded:\n")
	b.WriteString(m.searchInput.View())
	b.WriteString("\n\n")

	switch {
	case m.searchInput.Value() == "":
		b.WriteString(m.hint("Start typing to search..."))
	case len(m.searchResults) == 0:
		b.WriteString(m.hint("No timezones found"))
	default:
		b.WriteString(fmt.Sprintf("Results (%d of %d):\n", m.shownResults, len(m.searchResults)))
		for i := 0; i < m.shownResults; i++ {
			line := "  " + m.searchResults[i].Label
			if i == m.selectedResult {
				line = lipgloss.NewStyle().
					Foreground(p.Time).
					Bold(true).
					Render("> " + line)
			} else {
				line = "  " + line
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		if rest := len(m.searchResults) - m.shownResults; rest > 0 {
			b.WriteString(m.hint(fmt.Sprintf("    … %d more, tab to show more", rest)))
			b.WriteString("\n")
		}
	}

	if !m.geonamesReady {
		b.WriteString("\n")
		b.WriteString(m.hint(spinnerFrames[m.spinnerFrame] + " Loading city database..."))
	}

	b.WriteString("\n")
	b.WriteString(m.hint("↑/↓: Navigate | Tab: More | Enter: Add | ESC: Cancel"))

	return b.String()
}

// renderEdit renders the typed time view
func (m model) renderEdit() string {
	var b strings.Builder
	p := m.palette()

	if m.field == nil {
		return ""
	}

	b.WriteString(m.titleStyle().Render("Set time in " + m.field.Zone))
	b.WriteString("\n\n")
	b.WriteString(m.timeInput.View())
	b.WriteString("\n")

	if m.field.Invalid {
		b.WriteString(lipgloss.NewStyle().Foreground(p.Error).Render("Invalid time, use hh:mm AM/PM (e.g. 09:30 PM)"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	suggestions := m.field.Suggestions
	if len(suggestions) > 0 {
		start := 0
		if m.selectedSuggestion >= maxSuggestions {
			start = m.selectedSuggestion - maxSuggestions + 1
		}
		end := min(start+maxSuggestions, len(suggestions))
		for i := start; i < end; i++ {
			line := "  " + suggestions[i]
			if i == m.selectedSuggestion {
				line = lipgloss.NewStyle().Foreground(p.Time).Bold(true).Render("> " + line)
			} else {
				line = "  " + line
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(m.hint("↑/↓: Suggestions | Enter: Apply | ESC: Cancel"))
	return b.String()
}

// renderConfirm renders the confirmation dialog
func (m model) renderConfirm() string {
	var b strings.Builder

	b.WriteString(m.titleStyle().Render("Confirm"))
	b.WriteString("\n\n")

	b.WriteString(m.confirmMsg)
	b.WriteString("\n\n")
	b.WriteString(m.hint("y: Yes | n/ESC: No"))

	return b.String()
}

// renderHelp renders the key bindings
func (m model) renderHelp() string {
	width := min(m.width, 100)
	body := renderMarkdown(helpMarkdown(m.keys.all()), m.palette().glamourStyle(), width)
	return body + "\n\n" + m.hint("?/ESC: Back")
}

// renderStatusBar shows whether the instant follows the clock and the last
// message
func (m model) renderStatusBar() string {
	p := m.palette()
	st := m.session.State()

	mode := "PAUSED " + st.Instant.Time().UTC().Format("Mon Jan 2 15:04 UTC")
	if st.Live {
		mode = "LIVE"
	}
	modeStyle := lipgloss.NewStyle().Bold(true).Foreground(p.Title).Padding(0, 1)
	left := modeStyle.Render(mode)

	if m.flash != "" {
		color := p.Muted
		if m.flashErr {
			color = p.Error
		}
		left += lipgloss.NewStyle().Foreground(color).Render(m.flash)
	}

	var undo []string
	if st.History.CanUndo() {
		undo = append(undo, "u: undo")
	}
	if st.History.CanRedo() {
		undo = append(undo, "ctrl+r: redo")
	}
	right := lipgloss.NewStyle().Foreground(p.Muted).Padding(0, 1).Render(strings.Join(undo, " | "))

	spacing := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return ansi.Truncate(left+strings.Repeat(" ", spacing)+right, max(m.width, 1), "")
}

// renderCommandBar renders the command bar at the bottom
func (m model) renderCommandBar() string {
	p := m.palette()
	barStyle := lipgloss.NewStyle().
		Foreground(p.BarFg).
		Background(p.BarBg).
		Padding(0, 1)

	leftContent := barStyle.Render("a: Add | d: Remove | e: Edit | ←/→: Slide | c/s: Copy | ?: Help | q: Quit")

	var status string
	if m.geonamesReady {
		status = "Zones: Ready"
	} else {
		status = fmt.Sprintf("%s Loading cities...", spinnerFrames[m.spinnerFrame])
	}
	rightContent := barStyle.Render(status)

	spacingWidth := max(m.width-lipgloss.Width(leftContent)-lipgloss.Width(rightContent), 0)
	spacing := lipgloss.NewStyle().Background(p.BarBg).Render(strings.Repeat(" ", spacingWidth))

	return leftContent + spacing + rightContent
}
