package models

import "time"

// Snapshot is the read-only view of the application state handed to a
// renderer once per frame. It shares no memory with the live state.
type Snapshot struct {
	Now     time.Time    `json:"now"`
	Sources []SourceView `json:"sources"`
	Focused int          `json:"focused"`

	// Rows are the visible lines of the focused source, oldest first.
	Rows []Row `json:"rows"`
	// Context holds the lines around the selection when the context panel is open.
	Context []Row `json:"context,omitempty"`

	Filters          []RuleView  `json:"filters"`
	EnabledFilters   int         `json:"enabled_filters"`
	SelectedFilter   int         `json:"selected_filter"`
	FilterInput      FilterInput `json:"filter_input"`
	FilterFocus      FilterFocus `json:"filter_focus"`
	FilterPanelOpen  bool        `json:"filter_panel_open"`
	ContextPanelOpen bool        `json:"context_panel_open"`
	ContextRadius    int         `json:"context_radius"`

	Stats  StatsView   `json:"stats"`
	Search SearchState `json:"search"`
	Alert  AlertView   `json:"alert"`

	// IntentsApplied counts the intents the engine had dispatched when this frame was taken.
	IntentsApplied uint64 `json:"intents_applied"`
}

// SourceView describes one source for the sidebar and status bar.
type SourceView struct {
	Name         string      `json:"name"`
	Path         string      `json:"path"`
	Lines        int         `json:"lines"`
	ScrollOffset int         `json:"scroll_offset"`
	AutoScroll   bool        `json:"auto_scroll"`
	Selected     int         `json:"selected"` // -1 when nothing is selected
	State        TailerState `json:"state"`
}

// Row is one rendered line with its presentation hints.
type Row struct {
	Index    int    `json:"index"`
	Text     string `json:"text"`
	Spans    []Span `json:"spans,omitempty"`
	Alert    bool   `json:"alert"`
	Selected bool   `json:"selected"`
}

// RuleView is a filter rule plus its compile status.
type RuleView struct {
	FilterRule
	Err string `json:"err,omitempty"`
}

// StatsView is a copy of the rolling statistics window.
type StatsView struct {
	Errors   []int `json:"errors"`
	Warnings []int `json:"warnings"`
	EpochSec int64 `json:"epoch_sec"`
}

// AlertView is the derived alert banner state at Snapshot.Now.
type AlertView struct {
	Active   bool   `json:"active"`
	Blinking bool   `json:"blinking"`
	Message  string `json:"message"`
}

// FocusedSource returns the focused source view, if any.
func (s Snapshot) FocusedSource() (SourceView, bool) {
	if s.Focused < 0 || s.Focused >= len(s.Sources) {
		return SourceView{}, false
	}
	return s.Sources[s.Focused], true
}

// TextEntry reports whether printable keys should be treated as text input.
func (s Snapshot) TextEntry() bool {
	return s.Search.Open || (s.FilterPanelOpen && s.FilterFocus == FocusInput)
}
