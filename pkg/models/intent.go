package models

// IntentKind enumerates the user intents a renderer can emit.
type IntentKind int

const (
	IntentNone IntentKind = iota
	IntentQuit
	IntentResize

	// Scrolling
	IntentScrollUp
	IntentScrollDown
	IntentTop
	IntentBottom
	IntentToggleAuto

	// Panels
	IntentToggleFilterPanel
	IntentToggleContextPanel

	// Filter panel
	IntentFilterChar
	IntentFilterBackspace
	IntentAddFilter
	IntentToggleInputRegex
	IntentToggleInputCase
	IntentToggleInputWord
	IntentToggleInputLine
	IntentToggleFilterEnabled
	IntentDeleteFilter
	IntentSwitchFilterFocus

	// Selection and sources
	IntentSelectUp
	IntentSelectDown
	IntentNextSource
	IntentPrevSource

	// Search
	IntentOpenSearch
	IntentCloseSearch
	IntentSearchChar
	IntentSearchBackspace
	IntentApplySearch
	IntentNextMatch
	IntentPrevMatch
	IntentToggleSearchRegex
	IntentToggleSearchCase
)

// Intent is a decoded user action. N carries scroll amounts, Char the typed
// rune, Width/Height the viewport size for IntentResize.
type Intent struct {
	Kind   IntentKind
	N      int
	Char   rune
	Width  int
	Height int
}
