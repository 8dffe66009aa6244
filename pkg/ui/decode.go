package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/loganalyzer/rtlog/pkg/models"
)

// Mode is the input mode derived from the last snapshot.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeFilterInput
	ModeFilterList
)

// ModeOf returns the input mode a snapshot implies.
func ModeOf(s models.Snapshot) Mode {
	return inputStateOf(s).mode()
}

// inputState is the part of the application state that decides how keys
// are decoded. The model advances it as it sends intents so that keys typed
// before the next frame arrives are decoded in the right mode.
type inputState struct {
	searchOpen  bool
	filterOpen  bool
	filterFocus models.FilterFocus
	contextOpen bool
}

func inputStateOf(s models.Snapshot) inputState {
	return inputState{
		searchOpen:  s.Search.Open,
		filterOpen:  s.FilterPanelOpen,
		filterFocus: s.FilterFocus,
		contextOpen: s.ContextPanelOpen,
	}
}

func (st inputState) mode() Mode {
	switch {
	case st.searchOpen:
		return ModeSearch
	case st.filterOpen && st.filterFocus == models.FocusInput:
		return ModeFilterInput
	case st.filterOpen:
		return ModeFilterList
	default:
		return ModeNormal
	}
}

// apply advances st the way the engine will once it dispatches in.
// It reports whether in changes the input mode.
func (st *inputState) apply(in models.Intent) bool {
	switch in.Kind {
	case models.IntentOpenSearch:
		st.searchOpen = true
	case models.IntentCloseSearch, models.IntentApplySearch:
		st.searchOpen = false
	case models.IntentToggleFilterPanel:
		st.filterOpen = !st.filterOpen
	case models.IntentSwitchFilterFocus:
		if !st.filterOpen {
			return false
		}
		if st.filterFocus == models.FocusInput {
			st.filterFocus = models.FocusList
		} else {
			st.filterFocus = models.FocusInput
		}
	case models.IntentToggleContextPanel:
		st.contextOpen = !st.contextOpen
	default:
		return false
	}
	return true
}

func intent(kind models.IntentKind) models.Intent {
	return models.Intent{Kind: kind}
}

// chars turns typed runes into one intent per rune.
func chars(kind models.IntentKind, runes []rune) []models.Intent {
	out := make([]models.Intent, 0, len(runes))
	for _, r := range runes {
		out = append(out, models.Intent{Kind: kind, Char: r})
	}
	return out
}

// Decoder maps key presses to intents.
type Decoder struct {
	Keys     KeyMap
	PageSize int
}

// Decode returns the intents for msg in mode. It returns nil for keys that
// mean nothing in that mode.
func (d Decoder) Decode(msg tea.KeyMsg, mode Mode, contextOpen bool) []models.Intent {
	if msg.Type == tea.KeyCtrlC {
		return []models.Intent{intent(models.IntentQuit)}
	}

	switch mode {
	case ModeSearch:
		return d.decodeSearch(msg)
	case ModeFilterInput:
		return d.decodeFilterInput(msg)
	case ModeFilterList:
		return d.decodeFilterList(msg)
	}
	return d.decodeNormal(msg, contextOpen)
}

func (d Decoder) decodeSearch(msg tea.KeyMsg) []models.Intent {
	k := d.Keys
	switch {
	case msg.Type == tea.KeyEsc:
		return []models.Intent{intent(models.IntentCloseSearch)}
	case msg.Type == tea.KeyEnter:
		return []models.Intent{intent(models.IntentApplySearch)}
	case msg.Type == tea.KeyBackspace:
		return []models.Intent{intent(models.IntentSearchBackspace)}
	case key.Matches(msg, k.ToggleRegex):
		return []models.Intent{intent(models.IntentToggleSearchRegex)}
	case key.Matches(msg, k.ToggleCase):
		return []models.Intent{intent(models.IntentToggleSearchCase)}
	case msg.Type == tea.KeySpace:
		return chars(models.IntentSearchChar, []rune{' '})
	case msg.Type == tea.KeyRunes && !msg.Alt:
		return chars(models.IntentSearchChar, msg.Runes)
	}
	return nil
}

// filterCommon handles keys shared by both filter panel focuses.
func (d Decoder) filterCommon(msg tea.KeyMsg) ([]models.Intent, bool) {
	k := d.Keys
	switch {
	case msg.Type == tea.KeyEsc:
		return []models.Intent{intent(models.IntentToggleFilterPanel)}, true
	case key.Matches(msg, k.FocusSwitch):
		return []models.Intent{intent(models.IntentSwitchFilterFocus)}, true
	case key.Matches(msg, k.ToggleRegex):
		return []models.Intent{intent(models.IntentToggleInputRegex)}, true
	case key.Matches(msg, k.ToggleCase):
		return []models.Intent{intent(models.IntentToggleInputCase)}, true
	case key.Matches(msg, k.ToggleWord):
		return []models.Intent{intent(models.IntentToggleInputWord)}, true
	case key.Matches(msg, k.ToggleLine):
		return []models.Intent{intent(models.IntentToggleInputLine)}, true
	case msg.Type == tea.KeyUp:
		return []models.Intent{intent(models.IntentSelectUp)}, true
	case msg.Type == tea.KeyDown:
		return []models.Intent{intent(models.IntentSelectDown)}, true
	}
	return nil, false
}

func (d Decoder) decodeFilterInput(msg tea.KeyMsg) []models.Intent {
	if out, ok := d.filterCommon(msg); ok {
		return out
	}
	switch {
	case msg.Type == tea.KeyEnter:
		return []models.Intent{intent(models.IntentAddFilter)}
	case msg.Type == tea.KeyBackspace:
		return []models.Intent{intent(models.IntentFilterBackspace)}
	case msg.Type == tea.KeySpace:
		return chars(models.IntentFilterChar, []rune{' '})
	case msg.Type == tea.KeyRunes && !msg.Alt:
		return chars(models.IntentFilterChar, msg.Runes)
	}
	return nil
}

func (d Decoder) decodeFilterList(msg tea.KeyMsg) []models.Intent {
	if out, ok := d.filterCommon(msg); ok {
		return out
	}
	k := d.Keys
	switch {
	case key.Matches(msg, k.Quit):
		return []models.Intent{intent(models.IntentQuit)}
	case msg.Type == tea.KeyEnter || msg.Type == tea.KeySpace:
		return []models.Intent{intent(models.IntentToggleFilterEnabled)}
	case key.Matches(msg, k.DeleteFilter):
		return []models.Intent{intent(models.IntentDeleteFilter)}
	case key.Matches(msg, k.SelectUp):
		return []models.Intent{intent(models.IntentSelectUp)}
	case key.Matches(msg, k.SelectDown):
		return []models.Intent{intent(models.IntentSelectDown)}
	case key.Matches(msg, k.FilterPanel):
		return []models.Intent{intent(models.IntentToggleFilterPanel)}
	}
	return nil
}

func (d Decoder) decodeNormal(msg tea.KeyMsg, contextOpen bool) []models.Intent {
	k := d.Keys
	page := max(d.PageSize, 1)
	switch {
	case key.Matches(msg, k.Quit):
		return []models.Intent{intent(models.IntentQuit)}
	case key.Matches(msg, k.ScrollUp):
		return []models.Intent{{Kind: models.IntentScrollUp, N: 1}}
	case key.Matches(msg, k.ScrollDown):
		return []models.Intent{{Kind: models.IntentScrollDown, N: 1}}
	case key.Matches(msg, k.PageUp):
		return []models.Intent{{Kind: models.IntentScrollUp, N: page}}
	case key.Matches(msg, k.PageDown):
		return []models.Intent{{Kind: models.IntentScrollDown, N: page}}
	case key.Matches(msg, k.Top):
		return []models.Intent{intent(models.IntentTop)}
	case key.Matches(msg, k.Bottom):
		return []models.Intent{intent(models.IntentBottom)}
	case key.Matches(msg, k.ToggleAuto):
		return []models.Intent{intent(models.IntentToggleAuto)}
	case key.Matches(msg, k.FilterPanel):
		return []models.Intent{intent(models.IntentToggleFilterPanel)}
	case key.Matches(msg, k.Search):
		return []models.Intent{intent(models.IntentOpenSearch)}
	case key.Matches(msg, k.ToggleContext):
		return []models.Intent{intent(models.IntentToggleContextPanel)}
	case key.Matches(msg, k.SelectUp):
		return []models.Intent{intent(models.IntentSelectUp)}
	case key.Matches(msg, k.SelectDown):
		return []models.Intent{intent(models.IntentSelectDown)}
	case key.Matches(msg, k.NextMatch):
		return []models.Intent{intent(models.IntentNextMatch)}
	case key.Matches(msg, k.PrevMatch):
		return []models.Intent{intent(models.IntentPrevMatch)}
	case key.Matches(msg, k.NextSource), key.Matches(msg, k.FocusSwitch):
		return []models.Intent{intent(models.IntentNextSource)}
	case key.Matches(msg, k.PrevSource), msg.Type == tea.KeyShiftTab:
		return []models.Intent{intent(models.IntentPrevSource)}
	case msg.Type == tea.KeyEsc && contextOpen:
		return []models.Intent{intent(models.IntentToggleContextPanel)}
	}
	return nil
}
