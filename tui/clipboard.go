package tui

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/muesli/termenv"
)

// copyToClipboard writes s to the system clipboard, falling back to an OSC52
// escape sequence when no clipboard tool is available (e.g. over SSH)
func copyToClipboard(s string) error {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if !clipboard.Unsupported {
		if err := clipboard.WriteAll(s); err == nil {
			return nil
		}
	}
	termenv.Copy(s)
	return nil
}
