package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// palette is the set of colors the views draw with
type palette struct {
	Title          lipgloss.TerminalColor
	Time           lipgloss.TerminalColor
	Muted          lipgloss.TerminalColor
	Border         lipgloss.TerminalColor
	SelectedBorder lipgloss.TerminalColor
	BarFg          lipgloss.TerminalColor
	BarBg          lipgloss.TerminalColor
	SliderFill     lipgloss.TerminalColor
	SliderEmpty    lipgloss.TerminalColor
	Error          lipgloss.TerminalColor
	markdownStyle  string
}

var darkPalette = palette{
	Title:          lipgloss.Color("86"),
	Time:           lipgloss.Color("205"),
	Muted:          lipgloss.Color("241"),
	Border:         lipgloss.Color("62"),
	SelectedBorder: lipgloss.Color("205"),
	BarFg:          lipgloss.Color("240"),
	BarBg:          lipgloss.Color("235"),
	SliderFill:     lipgloss.Color("86"),
	SliderEmpty:    lipgloss.Color("238"),
	Error:          lipgloss.Color("196"),
	markdownStyle:  "dark",
}

var lightPalette = palette{
	Title:          lipgloss.Color("30"),
	Time:           lipgloss.Color("162"),
	Muted:          lipgloss.Color("243"),
	Border:         lipgloss.Color("250"),
	SelectedBorder: lipgloss.Color("162"),
	BarFg:          lipgloss.Color("238"),
	BarBg:          lipgloss.Color("254"),
	SliderFill:     lipgloss.Color("30"),
	SliderEmpty:    lipgloss.Color("252"),
	Error:          lipgloss.Color("160"),
	markdownStyle:  "light",
}

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

// terminalPalette follows the terminal's own background
var terminalPalette = palette{
	Title:          ac("30", "86"),
	Time:           ac("162", "205"),
	Muted:          ac("243", "241"),
	Border:         ac("250", "62"),
	SelectedBorder: ac("162", "205"),
	BarFg:          ac("238", "240"),
	BarBg:          ac("254", "235"),
	SliderFill:     ac("30", "86"),
	SliderEmpty:    ac("252", "238"),
	Error:          ac("160", "196"),
}

func (p palette) glamourStyle() string {
	if p.markdownStyle != "" {
		return p.markdownStyle
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

// applyColorProfile honours NO_COLOR and otherwise trusts TERM/COLORTERM
// when they claim more colors than termenv detected
func applyColorProfile() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()
	term := strings.ToLower(os.Getenv("TERM"))
	colorterm := strings.ToLower(os.Getenv("COLORTERM"))
	switch {
	case strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit"):
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	case strings.Contains(term, "256color"):
		if profile == termenv.Ascii || profile == termenv.ANSI {
			profile = termenv.ANSI256
		}
	}
	lipgloss.SetColorProfile(profile)
}
