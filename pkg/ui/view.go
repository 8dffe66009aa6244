package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/loganalyzer/rtlog/pkg/models"
)

const (
	sidebarWidth = 32
	blinkPeriod  = 400 // ms
	maxRuleRows  = 8
)

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// layout heights: header, status and help lines plus the log pane border.
const chromeRows = 3 + 2

func (m *Model) contextRows() int {
	if !m.snap.ContextPanelOpen {
		return 0
	}
	return 2*m.snap.ContextRadius + 1 + 2
}

// logRows is the number of log lines the log pane can show.
func (m *Model) logRows() int {
	rows := m.height - chromeRows - m.contextRows()
	if m.showHelp {
		rows -= helpRows(m.decoder.Keys.FullHelp()) - 1
	}
	return max(rows, 1)
}

// helpRows is the height of the full help view.
func helpRows(groups [][]key.Binding) int {
	rows := 0
	for _, g := range groups {
		rows = max(rows, len(g))
	}
	return rows
}

// View implements the bubbletea.Model interface
func (m *Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.quitting {
		return "Shutting down...\n"
	}
	if m.width < sidebarWidth+20 || m.height < chromeRows+3 {
		return "Terminal too small"
	}

	logWidth := m.width - sidebarWidth
	rows := m.logRows()

	main := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderLogs(logWidth, rows),
		m.renderSidebar(sidebarWidth, rows+2),
	)

	sections := []string{m.renderHeader(), main}
	if m.snap.ContextPanelOpen {
		sections = append(sections, m.renderContext(m.width))
	}
	sections = append(sections, m.renderStatus())
	if m.showHelp {
		sections = append(sections, m.help.FullHelpView(m.decoder.Keys.FullHelp()))
	} else if m.snap.FilterPanelOpen {
		sections = append(sections, m.help.ShortHelpView(m.decoder.Keys.FilterHelp()))
	} else {
		sections = append(sections, m.help.ShortHelpView(m.decoder.Keys.ShortHelp()))
	}
	return strings.Join(sections, "\n")
}

// renderHeader shows the title or the alert banner.
func (m *Model) renderHeader() string {
	h := m.highlighter
	a := m.snap.Alert
	if !a.Active {
		return h.Style("title").Render("rtlog") + h.Style("muted").Render("  "+m.sourceSummary())
	}

	style := h.Style("banner")
	if a.Blinking && (m.snap.Now.UnixMilli()/blinkPeriod)%2 == 1 {
		style = h.Style("banner_dim")
	}
	msg := truncate(" ALERT "+a.Message+" ", m.width)
	return style.Render(msg)
}

func (m *Model) sourceSummary() string {
	total := 0
	for _, s := range m.snap.Sources {
		total += s.Lines
	}
	return fmt.Sprintf("%d sources, %s lines", len(m.snap.Sources), humanize.Comma(int64(total)))
}

// renderLogs draws the focused source's visible rows inside a border.
func (m *Model) renderLogs(width, rows int) string {
	h := m.highlighter
	inner := width - 2

	lines := make([]string, 0, rows)
	for _, row := range m.snap.Rows {
		if len(lines) == rows {
			break
		}
		lines = append(lines, h.Row(row, inner))
	}
	if len(lines) == 0 {
		msg := "No logs"
		if m.snap.EnabledFilters > 0 {
			msg = "No lines match the enabled filters"
		}
		lines = append(lines, h.Style("muted").Render(msg))
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}

	return h.Border(!m.snap.FilterPanelOpen).
		Width(inner).
		Height(rows).
		Render(strings.Join(lines, "\n"))
}

// renderSidebar shows the filter panel when open, otherwise sources and stats.
func (m *Model) renderSidebar(width, height int) string {
	h := m.highlighter
	inner := width - 2

	var body string
	if m.snap.FilterPanelOpen {
		body = m.renderFilters(inner)
	} else {
		body = m.renderSources(inner) + "\n\n" + m.renderStats(inner)
	}
	return h.Border(m.snap.FilterPanelOpen).
		Width(inner).
		Height(height - 2).
		Render(clipLines(body, height-2))
}

func (m *Model) renderSources(width int) string {
	h := m.highlighter
	live := 0
	for _, s := range m.snap.Sources {
		if s.State.Active() {
			live++
		}
	}
	title := fmt.Sprintf("Sources %d/%d", live, len(m.snap.Sources))
	lines := []string{h.Style("title").Render(title)}
	for i, s := range m.snap.Sources {
		marker := "  "
		name := truncate(s.Name, width-2)
		if i == m.snap.Focused {
			marker = "> "
			name = h.Style("focus").Render(name)
		}
		lines = append(lines, marker+name)
		lines = append(lines, "    "+h.State(s.State)+h.Style("muted").Render(" "+humanize.Comma(int64(s.Lines))))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderStats(width int) string {
	h := m.highlighter
	st := m.snap.Stats
	n := max(width-4, 1)
	errs, warns := sum(st.Errors), sum(st.Warnings)
	lines := []string{
		h.Style("title").Render(fmt.Sprintf("Last %ds", len(st.Errors))),
		h.Style("error").Render("E ") + h.Style("error").Render(Sparkline(tail(st.Errors, n))),
		h.Style("muted").Render(fmt.Sprintf("  %s errors", humanize.Comma(int64(errs)))),
		h.Style("warning").Render("W ") + h.Style("warning").Render(Sparkline(tail(st.Warnings, n))),
		h.Style("muted").Render(fmt.Sprintf("  %s warnings", humanize.Comma(int64(warns)))),
	}
	if len(m.snap.Filters) > 0 {
		lines = append(lines, "", h.Style("title").Render("Filters"))
		for _, r := range m.snap.Filters {
			lines = append(lines, ruleLine(r, width))
		}
	}
	return strings.Join(lines, "\n")
}

// renderFilters draws the filter input and rule list.
func (m *Model) renderFilters(width int) string {
	h := m.highlighter
	in := m.snap.FilterInput
	inputFocused := m.snap.FilterFocus == models.FocusInput

	flags := models.FilterRule{
		IsRegex:         in.IsRegex,
		CaseInsensitive: in.CaseInsensitive,
		WholeWord:       in.WholeWord,
		WholeLine:       in.WholeLine,
	}.Flags()

	prompt := "filter: "
	text := in.Text
	if inputFocused {
		prompt = h.Style("focus").Render(prompt)
		text += "_"
	}
	lines := []string{
		h.Style("title").Render("Filters") + h.Style("muted").Render(" ["+flags+"]"),
		prompt + truncate(text, width-8),
		"",
	}

	if len(m.snap.Filters) == 0 {
		lines = append(lines, h.Style("muted").Render("no rules"))
	}
	first := max(0, m.snap.SelectedFilter-maxRuleRows+1)
	for i := first; i < len(m.snap.Filters) && i < first+maxRuleRows; i++ {
		line := ruleLine(m.snap.Filters[i], width-2)
		if i == m.snap.SelectedFilter && !inputFocused {
			line = h.Style("selected").Render("> " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
		if err := m.snap.Filters[i].Err; err != "" {
			lines = append(lines, "    "+h.Style("error").Render(truncate(err, width-4)))
		}
	}
	return strings.Join(lines, "\n")
}

func ruleLine(r models.RuleView, width int) string {
	box := "[ ]"
	if r.Enabled {
		box = "[x]"
	}
	suffix := fmt.Sprintf(" %s %s", r.Flags(), humanize.Comma(int64(r.MatchCount)))
	pattern := truncate(r.Pattern, width-len(box)-len(suffix)-1)
	return box + " " + pattern + suffix
}

// renderContext shows the lines around the selection.
func (m *Model) renderContext(width int) string {
	h := m.highlighter
	inner := width - 2
	lines := make([]string, 0, len(m.snap.Context))
	for _, row := range m.snap.Context {
		prefix := fmt.Sprintf("%6d ", row.Index+1)
		lines = append(lines, h.Style("muted").Render(prefix)+h.Row(row, inner-len(prefix)))
	}
	if len(lines) == 0 {
		lines = append(lines, h.Style("muted").Render("nothing selected"))
	}
	return h.Border(false).
		Width(inner).
		Height(2*m.snap.ContextRadius + 1).
		Render(strings.Join(lines, "\n"))
}

// renderStatus shows the search popup while it is open, otherwise the
// focused source's position.
func (m *Model) renderStatus() string {
	h := m.highlighter
	s := m.snap.Search
	if s.Open {
		flags := flag(s.IsRegex, 'r') + flag(s.CaseInsensitive, 'i')
		return h.Style("focus").Render("search ["+flags+"]: ") + s.Input + "_"
	}

	src, ok := m.snap.FocusedSource()
	if !ok {
		return h.Style("muted").Render("no sources")
	}
	parts := []string{
		h.Style("title").Render(src.Name),
		humanize.Comma(int64(src.Lines)) + " lines",
	}
	if src.AutoScroll {
		parts = append(parts, h.Style("ok").Render("auto"))
	} else {
		parts = append(parts, h.Style("warning").Render(fmt.Sprintf("paused +%d", src.ScrollOffset)))
	}
	if src.Selected >= 0 {
		parts = append(parts, fmt.Sprintf("line %d", src.Selected+1))
	}
	parts = append(parts, fmt.Sprintf("filters %d/%d", m.snap.EnabledFilters, len(m.snap.Filters)))
	if s.Applied != "" {
		parts = append(parts, "search "+fmt.Sprintf("%q", s.Applied))
	}
	if s.Err != "" {
		parts = append(parts, h.Style("error").Render(s.Err))
	}
	return truncate(strings.Join(parts, "  "), m.width)
}

// clipLines keeps the first n lines of s.
func clipLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:max(n, 0)], "\n")
}

func flag(on bool, c byte) string {
	if on {
		return string(c)
	}
	return "-"
}

// Sparkline renders one block character per value, scaled to the largest
// value. Zero renders as a space.
func Sparkline(values []int) string {
	peak := 0
	for _, v := range values {
		peak = max(peak, v)
	}
	var b strings.Builder
	for _, v := range values {
		if v <= 0 || peak == 0 {
			b.WriteRune(' ')
			continue
		}
		level := (v*len(sparkLevels) - 1) / peak
		b.WriteRune(sparkLevels[min(level, len(sparkLevels)-1)])
	}
	return b.String()
}

func tail(values []int, n int) []int {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

// truncate cuts s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
