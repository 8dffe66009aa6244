package state

import (
	"github.com/loganalyzer/rtlog/pkg/filter"
	"github.com/loganalyzer/rtlog/pkg/models"
)

// Snapshot copies everything a renderer needs. The statistics window is
// advanced to the current second first so idle seconds read as zero.
func (s *AppState) Snapshot() models.Snapshot {
	now := s.now()
	s.stats.Advance(now)

	snap := models.Snapshot{
		Now:              now,
		Focused:          s.focused,
		SelectedFilter:   s.selectedFilter,
		FilterInput:      s.input,
		FilterFocus:      s.filterFocus,
		FilterPanelOpen:  s.filterPanelOpen,
		ContextPanelOpen: s.contextPanelOpen,
		ContextRadius:    s.contextRadius,
		Stats:            s.stats.View(),
		Search:           s.search,
		Alert: models.AlertView{
			Active:   s.alert.Active(now),
			Blinking: s.alert.Blinking(now),
			Message:  s.alert.Message,
		},
	}

	for _, src := range s.sources {
		snap.Sources = append(snap.Sources, models.SourceView{
			Name:         src.Name,
			Path:         src.Path,
			Lines:        src.lines.Len(),
			ScrollOffset: src.ScrollOffset,
			AutoScroll:   src.AutoScroll,
			Selected:     src.Selected,
			State:        src.State,
		})
	}

	matchers := s.cache.Enabled(s.filters)
	snap.EnabledFilters = len(matchers)
	for _, rule := range s.filters {
		view := models.RuleView{FilterRule: rule}
		if err := s.cache.Err(rule.ID); err != nil {
			view.Err = err.Error()
		}
		snap.Filters = append(snap.Filters, view)
	}

	highlights := matchers
	if s.searchMatcher != nil {
		highlights = append(append([]*filter.Matcher(nil), matchers...), s.searchMatcher)
	}

	src := s.current()
	if src == nil {
		return snap
	}

	start, end := s.window(src)
	src.lines.ForEach(start, end, func(i int, line string) bool {
		if filter.LineMatches(line, matchers) {
			snap.Rows = append(snap.Rows, s.row(src, i, line, highlights))
		}
		return true
	})

	if s.contextPanelOpen && src.Selected >= 0 {
		from := max(src.Selected-s.contextRadius, 0)
		to := min(src.Selected+s.contextRadius+1, src.lines.Len())
		src.lines.ForEach(from, to, func(i int, line string) bool {
			snap.Context = append(snap.Context, s.row(src, i, line, highlights))
			return true
		})
	}

	return snap
}

func (s *AppState) row(src *Source, index int, line string, highlights []*filter.Matcher) models.Row {
	return models.Row{
		Index:    index,
		Text:     line,
		Spans:    filter.HighlightSpans(line, highlights),
		Alert:    s.alertMatch(line),
		Selected: index == src.Selected,
	}
}
