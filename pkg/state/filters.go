package state

import (
	"unicode/utf8"

	"github.com/loganalyzer/rtlog/pkg/models"
)

// AddFilter appends a rule, assigning it a fresh id. The rule is compiled
// right away; a compile failure is kept and retried on later use.
func (s *AppState) AddFilter(rule models.FilterRule) uint64 {
	s.nextRuleID++
	rule.ID = s.nextRuleID
	rule.MatchCount = 0
	s.filters = append(s.filters, rule)
	_, _ = s.cache.Matcher(rule)
	return rule.ID
}

// AddFilterFromInput turns the filter input into an enabled rule and clears
// the input text. An empty input does nothing.
func (s *AppState) AddFilterFromInput() bool {
	if s.input.Text == "" {
		return false
	}
	s.AddFilter(models.FilterRule{
		Pattern:         s.input.Text,
		IsRegex:         s.input.IsRegex,
		CaseInsensitive: s.input.CaseInsensitive,
		WholeWord:       s.input.WholeWord,
		WholeLine:       s.input.WholeLine,
		Enabled:         true,
	})
	s.input.Text = ""
	return true
}

// RemoveSelectedFilter deletes the selected rule and keeps the selection on
// a valid index.
func (s *AppState) RemoveSelectedFilter() {
	if len(s.filters) == 0 {
		return
	}
	if s.selectedFilter >= len(s.filters) {
		s.selectedFilter = len(s.filters) - 1
	}
	s.cache.Forget(s.filters[s.selectedFilter].ID)
	s.filters = append(s.filters[:s.selectedFilter], s.filters[s.selectedFilter+1:]...)
	if s.selectedFilter >= len(s.filters) && len(s.filters) > 0 {
		s.selectedFilter = len(s.filters) - 1
	}
	if len(s.filters) == 0 {
		s.selectedFilter = 0
	}
}

// ToggleSelectedFilter enables or disables the selected rule.
func (s *AppState) ToggleSelectedFilter() {
	if s.selectedFilter < len(s.filters) {
		s.filters[s.selectedFilter].Enabled = !s.filters[s.selectedFilter].Enabled
	}
}

// MoveFilterSelectionUp selects the previous rule.
func (s *AppState) MoveFilterSelectionUp() {
	if s.selectedFilter > 0 {
		s.selectedFilter--
	}
}

// MoveFilterSelectionDown selects the next rule.
func (s *AppState) MoveFilterSelectionDown() {
	if s.selectedFilter+1 < len(s.filters) {
		s.selectedFilter++
	}
}

// Filters returns a copy of the rule list.
func (s *AppState) Filters() []models.FilterRule {
	return append([]models.FilterRule(nil), s.filters...)
}

// SelectedFilter returns the index of the selected rule.
func (s *AppState) SelectedFilter() int {
	return s.selectedFilter
}

// Filter input editing

// FilterInput returns the pending rule text and flags.
func (s *AppState) FilterInput() models.FilterInput {
	return s.input
}

// FilterFocus returns which part of the filter panel has focus.
func (s *AppState) FilterFocus() models.FilterFocus {
	return s.filterFocus
}

// FilterPushChar appends r to the filter input.
func (s *AppState) FilterPushChar(r rune) {
	s.input.Text += string(r)
}

// FilterPopChar removes the last character of the filter input.
func (s *AppState) FilterPopChar() {
	s.input.Text = popRune(s.input.Text)
}

func (s *AppState) ToggleInputRegex() { s.input.IsRegex = !s.input.IsRegex }
func (s *AppState) ToggleInputCase()  { s.input.CaseInsensitive = !s.input.CaseInsensitive }
func (s *AppState) ToggleInputWord()  { s.input.WholeWord = !s.input.WholeWord }
func (s *AppState) ToggleInputLine()  { s.input.WholeLine = !s.input.WholeLine }

// SwitchFilterFocus moves focus between the input line and the rule list.
func (s *AppState) SwitchFilterFocus() {
	if s.filterFocus == models.FocusInput {
		s.filterFocus = models.FocusList
	} else {
		s.filterFocus = models.FocusInput
	}
}

func popRune(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}
