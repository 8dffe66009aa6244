package highlighter

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/loganalyzer/rtlog/pkg/models"
)

// Highlighter styles rendered rows and panel chrome for one theme
type Highlighter struct {
	theme  Theme
	styles map[string]lipgloss.Style
}

// Theme represents a color theme
type Theme struct {
	Name       string
	Background lipgloss.Color
	Foreground lipgloss.Color
	Colors     map[string]lipgloss.Color
}

// Predefined themes
var (
	DarkTheme = Theme{
		Name:       "dark",
		Background: lipgloss.Color("#1e1e1e"),
		Foreground: lipgloss.Color("#d4d4d4"),
		Colors: map[string]lipgloss.Color{
			"match":       lipgloss.Color("#dcdcaa"),
			"match_bg":    lipgloss.Color("#3a3d41"),
			"alert":       lipgloss.Color("#f44747"),
			"selected_bg": lipgloss.Color("#264f78"),
			"border":      lipgloss.Color("#3c3c3c"),
			"focus":       lipgloss.Color("#569cd6"),
			"title":       lipgloss.Color("#4fc1ff"),
			"muted":       lipgloss.Color("#808080"),
			"error":       lipgloss.Color("#f44747"),
			"warning":     lipgloss.Color("#dcdcaa"),
			"ok":          lipgloss.Color("#4ec9b0"),
			"banner_bg":   lipgloss.Color("#f44747"),
			"banner_fg":   lipgloss.Color("#ffffff"),
		},
	}

	LightTheme = Theme{
		Name:       "light",
		Background: lipgloss.Color("#ffffff"),
		Foreground: lipgloss.Color("#333333"),
		Colors: map[string]lipgloss.Color{
			"match":       lipgloss.Color("#9a6700"),
			"match_bg":    lipgloss.Color("#fff8c5"),
			"alert":       lipgloss.Color("#d1242f"),
			"selected_bg": lipgloss.Color("#ddf4ff"),
			"border":      lipgloss.Color("#d0d7de"),
			"focus":       lipgloss.Color("#0969da"),
			"title":       lipgloss.Color("#0969da"),
			"muted":       lipgloss.Color("#656d76"),
			"error":       lipgloss.Color("#d1242f"),
			"warning":     lipgloss.Color("#9a6700"),
			"ok":          lipgloss.Color("#1f883d"),
			"banner_bg":   lipgloss.Color("#d1242f"),
			"banner_fg":   lipgloss.Color("#ffffff"),
		},
	}

	MonochromeTheme = Theme{
		Name:       "monochrome",
		Background: lipgloss.Color("#000000"),
		Foreground: lipgloss.Color("#ffffff"),
		Colors: map[string]lipgloss.Color{
			"match":       lipgloss.Color("#ffffff"),
			"match_bg":    lipgloss.Color("#000000"),
			"alert":       lipgloss.Color("#ffffff"),
			"selected_bg": lipgloss.Color("#808080"),
			"border":      lipgloss.Color("#808080"),
			"focus":       lipgloss.Color("#ffffff"),
			"title":       lipgloss.Color("#ffffff"),
			"muted":       lipgloss.Color("#808080"),
			"error":       lipgloss.Color("#ffffff"),
			"warning":     lipgloss.Color("#ffffff"),
			"ok":          lipgloss.Color("#ffffff"),
			"banner_bg":   lipgloss.Color("#ffffff"),
			"banner_fg":   lipgloss.Color("#000000"),
		},
	}
)

// Row gutters
const (
	GutterSelected = "> "
	GutterAlert    = "! "
	GutterPlain    = "  "
)

// New creates a Highlighter for the named theme. Unknown names fall back to dark.
func New(themeName string) *Highlighter {
	h := &Highlighter{}
	h.SetTheme(themeName)
	return h
}

// ThemeByName returns the named theme, or the dark theme.
func ThemeByName(name string) Theme {
	switch name {
	case "light":
		return LightTheme
	case "monochrome":
		return MonochromeTheme
	default:
		return DarkTheme
	}
}

// SetTheme changes the current theme
func (h *Highlighter) SetTheme(themeName string) {
	h.theme = ThemeByName(themeName)
	h.buildStyles()
}

// Theme returns the active theme.
func (h *Highlighter) Theme() Theme {
	return h.theme
}

// ThemeNames returns the names ThemeByName resolves.
func ThemeNames() []string {
	return []string{DarkTheme.Name, LightTheme.Name, MonochromeTheme.Name}
}

func (h *Highlighter) buildStyles() {
	c := h.theme.Colors
	base := lipgloss.NewStyle().Foreground(h.theme.Foreground)
	h.styles = map[string]lipgloss.Style{
		"text":       base,
		"match":      lipgloss.NewStyle().Foreground(c["match"]).Background(c["match_bg"]).Bold(true),
		"alert":      lipgloss.NewStyle().Foreground(c["alert"]),
		"selected":   lipgloss.NewStyle().Background(c["selected_bg"]),
		"title":      lipgloss.NewStyle().Foreground(c["title"]).Bold(true),
		"muted":      lipgloss.NewStyle().Foreground(c["muted"]),
		"error":      lipgloss.NewStyle().Foreground(c["error"]),
		"warning":    lipgloss.NewStyle().Foreground(c["warning"]),
		"ok":         lipgloss.NewStyle().Foreground(c["ok"]),
		"focus":      lipgloss.NewStyle().Foreground(c["focus"]).Bold(true),
		"banner":     lipgloss.NewStyle().Foreground(c["banner_fg"]).Background(c["banner_bg"]).Bold(true),
		"banner_dim": lipgloss.NewStyle().Foreground(c["banner_bg"]).Bold(true),
	}
}

// Style returns a named style: text, match, alert, selected, title, muted,
// error, warning, ok, focus, banner or banner_dim.
func (h *Highlighter) Style(name string) lipgloss.Style {
	if s, ok := h.styles[name]; ok {
		return s
	}
	return h.styles["text"]
}

// Border returns a rounded border style, highlighted when focused.
func (h *Highlighter) Border(focused bool) lipgloss.Style {
	color := h.theme.Colors["border"]
	if focused {
		color = h.theme.Colors["focus"]
	}
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(color)
}

// State styles a tailer state label.
func (h *Highlighter) State(st models.TailerState) string {
	switch st {
	case models.TailerFailed:
		return h.Style("error").Render(st.String())
	case models.TailerFollowing:
		return h.Style("ok").Render(st.String())
	case models.TailerClosed:
		return h.Style("muted").Render(st.String())
	default:
		return h.Style("warning").Render(st.String())
	}
}

// Gutter returns the two-column marker shown left of a row.
func Gutter(row models.Row) string {
	switch {
	case row.Selected:
		return GutterSelected
	case row.Alert:
		return GutterAlert
	default:
		return GutterPlain
	}
}

// Row renders a log row with its gutter, clipped to width columns
// (including the gutter). Spans are byte ranges into row.Text.
func (h *Highlighter) Row(row models.Row, width int) string {
	text := clip(row.Text, width-len(GutterPlain))

	base := h.Style("text")
	if row.Alert {
		base = h.Style("alert")
	}
	body := h.applySpans(text, row.Spans, base)

	line := Gutter(row) + body
	if row.Selected {
		return h.Style("selected").Render(line)
	}
	return line
}

// applySpans styles the highlighted ranges of text and leaves the rest in base.
func (h *Highlighter) applySpans(text string, spans []models.Span, base lipgloss.Style) string {
	if len(spans) == 0 {
		return base.Render(text)
	}

	match := h.Style("match")
	var result strings.Builder
	lastEnd := 0
	for _, sp := range spans {
		start, end := min(sp.Start, len(text)), min(sp.End, len(text))
		if start < lastEnd || start >= end {
			continue
		}
		if start > lastEnd {
			result.WriteString(base.Render(text[lastEnd:start]))
		}
		result.WriteString(match.Render(text[start:end]))
		lastEnd = end
	}
	if lastEnd < len(text) {
		result.WriteString(base.Render(text[lastEnd:]))
	}
	return result.String()
}

// clip truncates s to at most n runes. Tabs are expanded to single spaces
// so that column counts stay predictable.
func clip(s string, n int) string {
	s = strings.ReplaceAll(s, "\t", " ")
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
