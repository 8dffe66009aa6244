package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds the configurable bindings of the log view.
type KeyMap struct {
	Quit          key.Binding
	ScrollUp      key.Binding
	ScrollDown    key.Binding
	PageUp        key.Binding
	PageDown      key.Binding
	Top           key.Binding
	Bottom        key.Binding
	ToggleAuto    key.Binding
	FilterPanel   key.Binding
	Search        key.Binding
	ToggleContext key.Binding
	SelectUp      key.Binding
	SelectDown    key.Binding
	NextMatch     key.Binding
	PrevMatch     key.Binding
	NextSource    key.Binding
	PrevSource    key.Binding
	FocusSwitch   key.Binding
	DeleteFilter  key.Binding
	ToggleRegex   key.Binding
	ToggleCase    key.Binding
	ToggleWord    key.Binding
	ToggleLine    key.Binding
}

// defaultKeys mirrors the config defaults so that a partial keybindings map
// still yields a usable key map.
var defaultKeys = map[string]string{
	"quit":           "q",
	"scroll_up":      "up",
	"scroll_down":    "down",
	"page_up":        "pgup",
	"page_down":      "pgdown",
	"goto_top":       "home",
	"goto_bottom":    "end",
	"toggle_auto":    "space",
	"filter_panel":   "/",
	"search":         "?",
	"toggle_context": "enter",
	"select_up":      "k",
	"select_down":    "j",
	"next_match":     "n",
	"prev_match":     "N",
	"next_source":    "]",
	"prev_source":    "[",
	"focus_switch":   "tab",
	"delete_filter":  "d",
	"toggle_regex":   "alt+r",
	"toggle_case":    "alt+i",
	"toggle_word":    "alt+w",
	"toggle_line":    "alt+x",
}

// NewKeyMap builds bindings from an action → key map as found in the config.
func NewKeyMap(bindings map[string]string) KeyMap {
	get := func(action string) string {
		if k, ok := bindings[action]; ok && k != "" {
			return k
		}
		return defaultKeys[action]
	}
	bind := func(action, desc string) key.Binding {
		k := get(action)
		return key.NewBinding(key.WithKeys(normalizeKey(k)), key.WithHelp(k, desc))
	}

	km := KeyMap{
		Quit:          bind("quit", "quit"),
		ScrollUp:      bind("scroll_up", "scroll up"),
		ScrollDown:    bind("scroll_down", "scroll down"),
		PageUp:        bind("page_up", "page up"),
		PageDown:      bind("page_down", "page down"),
		Top:           bind("goto_top", "top"),
		Bottom:        bind("goto_bottom", "bottom"),
		ToggleAuto:    bind("toggle_auto", "auto-scroll"),
		FilterPanel:   bind("filter_panel", "filters"),
		Search:        bind("search", "search"),
		ToggleContext: bind("toggle_context", "context"),
		SelectUp:      bind("select_up", "select up"),
		SelectDown:    bind("select_down", "select down"),
		NextMatch:     bind("next_match", "next match"),
		PrevMatch:     bind("prev_match", "prev match"),
		NextSource:    bind("next_source", "next source"),
		PrevSource:    bind("prev_source", "prev source"),
		FocusSwitch:   bind("focus_switch", "switch focus"),
		DeleteFilter:  bind("delete_filter", "delete filter"),
		ToggleRegex:   bind("toggle_regex", "regex"),
		ToggleCase:    bind("toggle_case", "ignore case"),
		ToggleWord:    bind("toggle_word", "whole word"),
		ToggleLine:    bind("toggle_line", "whole line"),
	}
	km.Quit.SetKeys(normalizeKey(get("quit")), "ctrl+c")
	return km
}

// normalizeKey converts config key names to the strings tea.KeyMsg reports.
func normalizeKey(k string) string {
	switch k {
	case "space":
		return " "
	case "pageup":
		return "pgup"
	case "pagedown":
		return "pgdown"
	case "esc", "escape":
		return "esc"
	}
	return k
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.FilterPanel, k.Search, k.ToggleContext, k.ToggleAuto, k.NextSource}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ScrollUp, k.ScrollDown, k.PageUp, k.PageDown, k.Top, k.Bottom, k.ToggleAuto},
		{k.SelectUp, k.SelectDown, k.ToggleContext, k.NextSource, k.PrevSource},
		{k.Search, k.NextMatch, k.PrevMatch},
		{k.FilterPanel, k.FocusSwitch, k.DeleteFilter, k.ToggleRegex, k.ToggleCase, k.ToggleWord, k.ToggleLine},
		{k.Quit},
	}
}

// FilterHelp lists the bindings active while the filter panel is open.
func (k KeyMap) FilterHelp() []key.Binding {
	return []key.Binding{k.FocusSwitch, k.DeleteFilter, k.ToggleRegex, k.ToggleCase, k.ToggleWord, k.ToggleLine}
}
