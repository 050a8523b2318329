package cli

import (
	"io"
	"strings"

	"github.com/NazishAyoob/AutoCompleteInput/pkg/match"
	"github.com/charmbracelet/lipgloss"
)

// Styles are the lipgloss styles shared by the CLI and the TUI.
type Styles struct {
	Plain    lipgloss.Style
	Match    lipgloss.Style
	Selected lipgloss.Style
	Cursor   lipgloss.Style
	Muted    lipgloss.Style
	Box      lipgloss.Style
}

// NewStyles binds styles to a renderer for w, so colors are dropped when w is not a terminal.
func NewStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	return Styles{
		Plain: r.NewStyle(),
		Match: r.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"}),
		Selected: r.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"}),
		Cursor: r.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#d7827e", Dark: "#ebbcba"}),
		Muted: r.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#9893a5", Dark: "#6e6a86"}),
		Box: r.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#9893a5", Dark: "#6e6a86"}).
			Padding(0, 1),
	}
}

// Name renders name with every occurrence of query emphasized.
func (s Styles) Name(name, query string, selected bool) string {
	var b strings.Builder
	for _, seg := range match.Highlight(name, query) {
		style := s.Plain
		if seg.Matched {
			style = s.Match
		}
		if selected {
			style = style.Inherit(s.Selected)
		}
		b.WriteString(style.Render(seg.Text))
	}
	return b.String()
}
