package engine

import "github.com/loganalyzer/rtlog/pkg/models"

// Dispatch applies one intent to the state and reports whether it asks the
// loop to quit. Filter editing intents only apply while the filter panel is
// open; selection moves act on the rule list while it is.
func (e *Engine) Dispatch(in models.Intent) bool {
	s := e.state
	filterPanel := s.FilterPanelOpen()
	filterInput := filterPanel && s.FilterFocus() == models.FocusInput

	switch in.Kind {
	case models.IntentQuit:
		return true
	case models.IntentResize:
		s.SetViewport(in.Height)

	case models.IntentScrollUp:
		s.ScrollUp(e.amount(in))
	case models.IntentScrollDown:
		s.ScrollDown(e.amount(in))
	case models.IntentTop:
		s.ScrollTop()
	case models.IntentBottom:
		s.ScrollBottom()
	case models.IntentToggleAuto:
		s.ToggleAutoScroll()

	case models.IntentToggleFilterPanel:
		s.ToggleFilterPanel()
	case models.IntentToggleContextPanel:
		s.ToggleContextPanel()

	case models.IntentFilterChar:
		if filterInput {
			s.FilterPushChar(in.Char)
		}
	case models.IntentFilterBackspace:
		if filterInput {
			s.FilterPopChar()
		}
	case models.IntentAddFilter:
		if filterPanel {
			s.AddFilterFromInput()
		}
	case models.IntentToggleInputRegex:
		if filterPanel {
			s.ToggleInputRegex()
		}
	case models.IntentToggleInputCase:
		if filterPanel {
			s.ToggleInputCase()
		}
	case models.IntentToggleInputWord:
		if filterPanel {
			s.ToggleInputWord()
		}
	case models.IntentToggleInputLine:
		if filterPanel {
			s.ToggleInputLine()
		}
	case models.IntentToggleFilterEnabled:
		if filterPanel {
			s.ToggleSelectedFilter()
		}
	case models.IntentDeleteFilter:
		if filterPanel {
			s.RemoveSelectedFilter()
		}
	case models.IntentSwitchFilterFocus:
		if filterPanel {
			s.SwitchFilterFocus()
		}

	case models.IntentSelectUp:
		if filterPanel {
			s.MoveFilterSelectionUp()
		} else {
			s.MoveLogSelectionUp()
		}
	case models.IntentSelectDown:
		if filterPanel {
			s.MoveFilterSelectionDown()
		} else {
			s.MoveLogSelectionDown()
		}
	case models.IntentNextSource:
		s.FocusNextSource()
	case models.IntentPrevSource:
		s.FocusPrevSource()

	case models.IntentOpenSearch:
		s.OpenSearch()
	case models.IntentCloseSearch:
		s.CloseSearch()
	case models.IntentSearchChar:
		s.SearchPushChar(in.Char)
	case models.IntentSearchBackspace:
		s.SearchPopChar()
	case models.IntentApplySearch:
		s.ApplySearch()
	case models.IntentNextMatch:
		s.JumpNextMatch()
	case models.IntentPrevMatch:
		s.JumpPrevMatch()
	case models.IntentToggleSearchRegex:
		s.ToggleSearchRegex()
	case models.IntentToggleSearchCase:
		s.ToggleSearchCase()
	}
	return false
}

func (e *Engine) amount(in models.Intent) int {
	if in.N > 0 {
		return in.N
	}
	return 1
}

// PageSize returns the scroll amount used for page up/down.
func (e *Engine) PageSize() int {
	return e.pageSize
}
