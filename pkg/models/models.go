package models

import (
	"fmt"
	"time"
)

// SourceLine is a single complete line read from a tailed source, tagged with
// the id of the source that produced it.
type SourceLine struct {
	SourceID int    `json:"source_id"`
	Text     string `json:"text"`
}

// FilterRule represents a user-defined matching specification.
// Compiled matchers are kept outside the record (see filter.Cache) so the rule
// stays a plain comparable value.
type FilterRule struct {
	ID              uint64 `json:"id"`
	Pattern         string `json:"pattern"`
	IsRegex         bool   `json:"is_regex"`
	CaseInsensitive bool   `json:"case_insensitive"`
	WholeWord       bool   `json:"whole_word"`
	WholeLine       bool   `json:"whole_line"`
	Enabled         bool   `json:"enabled"`
	MatchCount      uint64 `json:"match_count"`
}

// Signature identifies the fields a compiled matcher is derived from.
// Two rules with the same signature compile to the same matcher.
func (r FilterRule) Signature() string {
	return fmt.Sprintf("%t|%t|%t|%t|%s", r.IsRegex, r.CaseInsensitive, r.WholeWord, r.WholeLine, r.Pattern)
}

// Flags renders the rule flags in the compact "riwx" form used by the filter panel.
func (r FilterRule) Flags() string {
	flag := func(on bool, c byte) byte {
		if on {
			return c
		}
		return '-'
	}
	return string([]byte{
		flag(r.IsRegex, 'r'),
		flag(r.CaseInsensitive, 'i'),
		flag(r.WholeWord, 'w'),
		flag(r.WholeLine, 'x'),
	})
}

// Span is a half-open byte range [Start, End) inside a line.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Class is a bit set of the statistic classes a line falls into.
type Class uint8

const (
	ClassError Class = 1 << iota
	ClassWarning
)

// Has reports whether c contains all bits of other.
func (c Class) Has(other Class) bool {
	return c&other == other
}

// TailerState represents the lifecycle of a single source tailer
type TailerState int32

const (
	TailerOpening TailerState = iota
	TailerFollowing
	TailerDraining
	TailerClosed
	TailerFailed
)

func (s TailerState) String() string {
	switch s {
	case TailerOpening:
		return "opening"
	case TailerFollowing:
		return "following"
	case TailerDraining:
		return "draining"
	case TailerClosed:
		return "closed"
	case TailerFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Active reports whether the tailer may still produce lines.
func (s TailerState) Active() bool {
	return s == TailerOpening || s == TailerFollowing || s == TailerDraining
}

// FilterFocus selects which part of the filter panel receives input
type FilterFocus int

const (
	FocusInput FilterFocus = iota
	FocusList
)

// FilterInput is the pending rule being edited in the filter panel.
type FilterInput struct {
	Text            string `json:"text"`
	IsRegex         bool   `json:"is_regex"`
	CaseInsensitive bool   `json:"case_insensitive"`
	WholeWord       bool   `json:"whole_word"`
	WholeLine       bool   `json:"whole_line"`
}

// SearchState holds the search panel. No match list is materialized; matches
// are recomputed by scanning from the current selection.
type SearchState struct {
	Open            bool   `json:"open"`
	Input           string `json:"input"`
	Applied         string `json:"applied"`
	IsRegex         bool   `json:"is_regex"`
	CaseInsensitive bool   `json:"case_insensitive"`
	Err             string `json:"err,omitempty"`
}

// AlertState is armed whenever an incoming line matches an alert pattern.
type AlertState struct {
	Message       string    `json:"message"`
	Deadline      time.Time `json:"deadline"`
	BlinkDeadline time.Time `json:"blink_deadline"`
}

// Active reports whether the alert banner should be visible at now.
func (a AlertState) Active(now time.Time) bool {
	return a.Message != "" && now.Before(a.Deadline)
}

// Blinking reports whether now falls inside the blink window.
func (a AlertState) Blinking(now time.Time) bool {
	return a.Message != "" && now.Before(a.BlinkDeadline)
}
