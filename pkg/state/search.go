package state

import (
	"errors"

	"github.com/loganalyzer/rtlog/pkg/models"
	"github.com/loganalyzer/rtlog/pkg/search"
)

// OpenSearch shows the search popup, keeping the previous input for editing.
func (s *AppState) OpenSearch() {
	s.search.Open = true
}

// CloseSearch hides the search popup.
func (s *AppState) CloseSearch() {
	s.search.Open = false
}

// SearchPushChar appends r to the search input.
func (s *AppState) SearchPushChar(r rune) {
	s.search.Input += string(r)
}

// SearchPopChar removes the last character of the search input.
func (s *AppState) SearchPopChar() {
	s.search.Input = popRune(s.search.Input)
}

func (s *AppState) ToggleSearchRegex() { s.search.IsRegex = !s.search.IsRegex }
func (s *AppState) ToggleSearchCase()  { s.search.CaseInsensitive = !s.search.CaseInsensitive }

// Search returns the search panel state.
func (s *AppState) Search() models.SearchState {
	return s.search
}

// ApplySearch makes the current input the active query, closes the popup
// and jumps to the next match. An empty input clears the query; an invalid
// one is reported in the search state and leaves no active query.
func (s *AppState) ApplySearch() bool {
	s.search.Open = false
	s.search.Applied = s.search.Input
	s.search.Err = ""
	s.searchMatcher = nil

	m, err := search.Query{
		Text:            s.search.Input,
		IsRegex:         s.search.IsRegex,
		CaseInsensitive: s.search.CaseInsensitive,
	}.Compile()
	if err != nil {
		if !errors.Is(err, search.ErrNoQuery) {
			s.search.Err = err.Error()
		}
		return false
	}
	s.searchMatcher = m
	return s.JumpNextMatch()
}

// JumpNextMatch selects the next line of the focused source matching the
// active query, wrapping once past the end. The selection is unchanged when
// nothing matches.
func (s *AppState) JumpNextMatch() bool {
	return s.jump(search.Next)
}

// JumpPrevMatch is JumpNextMatch in the other direction.
func (s *AppState) JumpPrevMatch() bool {
	return s.jump(search.Prev)
}

func (s *AppState) jump(scan func(n, from int, match func(int) bool) (int, bool)) bool {
	src := s.current()
	if src == nil || s.searchMatcher == nil || src.lines.Len() == 0 {
		return false
	}

	from := src.Selected
	if from < 0 {
		from = s.defaultSelection(src)
	}

	idx, ok := scan(src.lines.Len(), from, func(i int) bool {
		line, _ := src.lines.Get(i)
		return s.searchMatcher.IsMatch(line)
	})
	if !ok {
		return false
	}
	src.Selected = idx
	s.reveal(src, idx)
	return true
}
