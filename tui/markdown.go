package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/glamour"
)

var (
	mdRendererMu sync.Mutex
	// keyed by style and wrap width
	mdRenderers = map[string]*glamour.TermRenderer{}
)

// renderMarkdown renders md with a fixed glamour style. WithAutoStyle is
// avoided since it queries the terminal.
func renderMarkdown(md, style string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}

	cacheKey := fmt.Sprintf("%s:%d", style, width)
	mdRendererMu.Lock()
	r := mdRenderers[cacheKey]
	mdRendererMu.Unlock()

	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		mdRendererMu.Lock()
		mdRenderers[cacheKey] = rr
		mdRendererMu.Unlock()
		r = rr
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// helpMarkdown lists every binding as a markdown table
func helpMarkdown(bindings []key.Binding) string {
	var b strings.Builder
	b.WriteString("# timeplanner\n\n")
	b.WriteString("One instant, many zones. Move the slider or type a time in any zone ")
	b.WriteString("and every other zone follows. Zone list changes can be undone.\n\n")
	b.WriteString("| Key | Action |\n|-----|--------|\n")
	for _, kb := range bindings {
		h := kb.Help()
		fmt.Fprintf(&b, "| `%s` | %s |\n", h.Key, h.Desc)
	}
	b.WriteString("\nIn the add and edit views: `↑/↓` choose, `enter` confirm, `esc` cancel, ")
	b.WriteString("`tab` shows more search results.\n")
	return b.String()
}
