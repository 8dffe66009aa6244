// Package state holds the single mutable application core. An AppState is
// owned by one goroutine; nothing in this package locks.
package state

import (
	"path/filepath"
	"time"

	"github.com/loganalyzer/rtlog/pkg/filter"
	"github.com/loganalyzer/rtlog/pkg/models"
	"github.com/loganalyzer/rtlog/pkg/stats"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultContextRadius = 3
	DefaultViewport      = 25
	DefaultAlertDisplay  = 5 * time.Second
	DefaultAlertBlink    = 1500 * time.Millisecond
)

// DefaultAlertPatterns trigger the alert banner unless overridden.
var DefaultAlertPatterns = []string{"ERROR", "FATAL"}

// Options configures a new AppState. Zero values select the defaults.
type Options struct {
	AlertPatterns  []string
	AlertsDisabled bool
	AlertDisplay   time.Duration
	AlertBlink     time.Duration
	StatsWindow    int
	ContextRadius  int
	Viewport       int
	Now            func() time.Time
}

// Source is one tailed input and its view position.
type Source struct {
	Name string
	Path string

	lines *LineBuffer

	// ScrollOffset counts lines up from the newest; 0 pins the view to the bottom.
	ScrollOffset int
	AutoScroll   bool
	// Selected is an absolute line index, or -1.
	Selected int
	State    models.TailerState
}

// Lines returns the source's line buffer.
func (s *Source) Lines() *LineBuffer {
	return s.lines
}

// AppState is the application core: sources, filter rules, search, alerts
// and rolling statistics.
type AppState struct {
	now func() time.Time

	sources  []*Source
	focused  int
	viewport int

	filters        []models.FilterRule
	nextRuleID     uint64
	cache          *filter.Cache
	selectedFilter int
	input          models.FilterInput
	filterFocus    models.FilterFocus

	filterPanelOpen  bool
	contextPanelOpen bool
	contextRadius    int

	search        models.SearchState
	searchMatcher *filter.Matcher

	stats *stats.Window

	alertsDisabled bool
	alertPatterns  []string
	alertMatchers  []*filter.Matcher
	alertDisplay   time.Duration
	alertBlink     time.Duration
	alert          models.AlertState
}

// New creates an empty AppState.
func New(opts Options) *AppState {
	s := &AppState{
		now:           opts.Now,
		viewport:      opts.Viewport,
		contextRadius: opts.ContextRadius,
		cache:         filter.NewCache(),
		stats:         stats.NewWindow(opts.StatsWindow),
		input:         models.FilterInput{CaseInsensitive: true},
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.viewport <= 0 {
		s.viewport = DefaultViewport
	}
	if s.contextRadius <= 0 {
		s.contextRadius = DefaultContextRadius
	}

	patterns := opts.AlertPatterns
	if patterns == nil {
		patterns = DefaultAlertPatterns
	}
	s.SetAlerts(patterns, opts.AlertsDisabled, opts.AlertDisplay, opts.AlertBlink)
	return s
}

// AddSource registers a source and returns its id. The display name is the
// file's base name.
func (s *AppState) AddSource(path string) int {
	s.sources = append(s.sources, &Source{
		Name:       filepath.Base(path),
		Path:       path,
		lines:      NewLineBuffer(),
		AutoScroll: true,
		Selected:   -1,
		State:      models.TailerOpening,
	})
	return len(s.sources) - 1
}

// Source returns the source with the given id, or nil.
func (s *AppState) Source(id int) *Source {
	if id < 0 || id >= len(s.sources) {
		return nil
	}
	return s.sources[id]
}

// SourceCount returns the number of registered sources.
func (s *AppState) SourceCount() int {
	return len(s.sources)
}

// Focused returns the focused source id.
func (s *AppState) Focused() int {
	return s.focused
}

func (s *AppState) current() *Source {
	return s.Source(s.focused)
}

// SetSourceState records the tailer state reported for a source.
func (s *AppState) SetSourceState(id int, st models.TailerState) {
	if src := s.Source(id); src != nil {
		src.State = st
	}
}

// SetViewport sets how many log rows fit on screen.
func (s *AppState) SetViewport(rows int) {
	if rows > 0 {
		s.viewport = rows
	}
}

// Viewport returns the number of log rows considered visible.
func (s *AppState) Viewport() int {
	return s.viewport
}

// PushLine ingests one line for the given source: the statistics window is
// advanced and updated, per-rule counters are bumped, the line is appended,
// auto-scroll re-pins the view and alert patterns are evaluated.
// Lines for unknown sources are dropped.
func (s *AppState) PushLine(id int, text string) {
	src := s.Source(id)
	if src == nil {
		log.WithField("source_id", id).Debug("dropping line for unknown source")
		return
	}

	now := s.now()
	s.stats.Record(now, text)

	for i := range s.filters {
		rule := &s.filters[i]
		if !rule.Enabled {
			continue
		}
		if m, err := s.cache.Matcher(*rule); err == nil && m.IsMatch(text) {
			rule.MatchCount++
		}
	}

	src.lines.Append(text)
	if src.AutoScroll {
		src.ScrollOffset = 0
	}

	if s.alertMatch(text) {
		s.armAlert(now, src.Name+": "+text)
	}
}

// Focus cycling

// FocusNextSource moves focus to the next source, wrapping around.
func (s *AppState) FocusNextSource() {
	if len(s.sources) == 0 {
		return
	}
	s.focused = (s.focused + 1) % len(s.sources)
}

// FocusPrevSource moves focus to the previous source, wrapping around.
func (s *AppState) FocusPrevSource() {
	if len(s.sources) == 0 {
		return
	}
	s.focused = (s.focused - 1 + len(s.sources)) % len(s.sources)
}

// Scrolling. All operate on the focused source.

func maxOffset(src *Source) int {
	if n := src.lines.Len(); n > 0 {
		return n - 1
	}
	return 0
}

// ScrollUp moves the view n lines toward older content and pauses auto-scroll.
func (s *AppState) ScrollUp(n int) {
	src := s.current()
	if src == nil {
		return
	}
	src.AutoScroll = false
	src.ScrollOffset = min(src.ScrollOffset+max(n, 0), maxOffset(src))
}

// ScrollDown moves the view n lines toward newer content. Reaching the
// bottom re-enables auto-scroll.
func (s *AppState) ScrollDown(n int) {
	src := s.current()
	if src == nil {
		return
	}
	src.ScrollOffset = max(src.ScrollOffset-max(n, 0), 0)
	if src.ScrollOffset == 0 {
		src.AutoScroll = true
	}
}

// ScrollTop shows the oldest line and pauses auto-scroll.
func (s *AppState) ScrollTop() {
	src := s.current()
	if src == nil {
		return
	}
	src.AutoScroll = false
	src.ScrollOffset = maxOffset(src)
}

// ScrollBottom pins the view to the newest line.
func (s *AppState) ScrollBottom() {
	src := s.current()
	if src == nil {
		return
	}
	src.ScrollOffset = 0
	src.AutoScroll = true
}

// ToggleAutoScroll flips auto-scroll; enabling it jumps to the bottom.
func (s *AppState) ToggleAutoScroll() {
	src := s.current()
	if src == nil {
		return
	}
	if src.AutoScroll {
		src.AutoScroll = false
		return
	}
	s.ScrollBottom()
}

// window returns the raw line range [start, end) shown for src.
func (s *AppState) window(src *Source) (int, int) {
	end := max(src.lines.Len()-src.ScrollOffset, 0)
	start := max(end-s.viewport, 0)
	return start, end
}

// Selection

// defaultSelection is the newest line in the window that passes the
// filters, or the newest line in the window. Returns -1 for an empty source.
func (s *AppState) defaultSelection(src *Source) int {
	if src.lines.Len() == 0 {
		return -1
	}
	start, end := s.window(src)
	matchers := s.cache.Enabled(s.filters)
	for i := end - 1; i >= start; i-- {
		line, _ := src.lines.Get(i)
		if filter.LineMatches(line, matchers) {
			return i
		}
	}
	return max(end-1, 0)
}

// EnsureLogSelection selects the newest visible line of the focused source
// if nothing is selected yet.
func (s *AppState) EnsureLogSelection() {
	src := s.current()
	if src == nil || src.Selected >= 0 {
		return
	}
	src.Selected = s.defaultSelection(src)
}

// MoveLogSelectionUp selects the previous line, stopping at the first.
func (s *AppState) MoveLogSelectionUp() {
	s.EnsureLogSelection()
	src := s.current()
	if src == nil || src.Selected < 0 {
		return
	}
	if src.Selected > 0 {
		src.Selected--
	}
	s.reveal(src, src.Selected)
}

// MoveLogSelectionDown selects the next line, stopping at the last.
func (s *AppState) MoveLogSelectionDown() {
	s.EnsureLogSelection()
	src := s.current()
	if src == nil || src.Selected < 0 {
		return
	}
	if src.Selected < src.lines.Len()-1 {
		src.Selected++
	}
	s.reveal(src, src.Selected)
}

// reveal scrolls src just enough for index to fall inside the window.
func (s *AppState) reveal(src *Source, index int) {
	start, end := s.window(src)
	switch {
	case index >= end:
		src.ScrollOffset = src.lines.Len() - 1 - index
	case index < start:
		src.ScrollOffset = max(src.lines.Len()-(index+s.viewport), 0)
	default:
		return
	}
	if src.ScrollOffset > 0 {
		src.AutoScroll = false
	}
}

// Panels

// ToggleFilterPanel opens or closes the filter panel.
func (s *AppState) ToggleFilterPanel() {
	s.filterPanelOpen = !s.filterPanelOpen
}

// FilterPanelOpen reports whether the filter panel is open.
func (s *AppState) FilterPanelOpen() bool {
	return s.filterPanelOpen
}

// ToggleContextPanel opens or closes the context panel, selecting a line first.
func (s *AppState) ToggleContextPanel() {
	s.EnsureLogSelection()
	s.contextPanelOpen = !s.contextPanelOpen
}

// ContextPanelOpen reports whether the context panel is open.
func (s *AppState) ContextPanelOpen() bool {
	return s.contextPanelOpen
}

// SetContextRadius sets how many lines around the selection the context panel shows.
func (s *AppState) SetContextRadius(n int) {
	if n > 0 {
		s.contextRadius = n
	}
}
