package filter

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/loganalyzer/rtlog/pkg/models"
)

// ErrEmptyPattern is returned when a rule with no pattern text is compiled.
var ErrEmptyPattern = errors.New("empty pattern")

// CompileError reports a rule whose pattern could not be turned into a matcher.
type CompileError struct {
	Pattern string
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// Matcher is a compiled filter rule.
type Matcher struct {
	re       *regexp.Regexp
	anchored bool
}

// Compile builds a matcher from the rule's pattern and flags.
// Literal patterns are escaped; whole_line anchors both ends and takes
// precedence over whole_word, which wraps the pattern in word boundaries.
func Compile(rule models.FilterRule) (*Matcher, error) {
	if rule.Pattern == "" {
		return nil, ErrEmptyPattern
	}

	pattern := rule.Pattern
	if !rule.IsRegex {
		pattern = regexp.QuoteMeta(pattern)
	}

	anchored := false
	switch {
	case rule.WholeLine:
		pattern = `^(?:` + pattern + `)$`
		anchored = true
	case rule.WholeWord:
		pattern = `\b(?:` + pattern + `)\b`
	}

	if rule.CaseInsensitive {
		pattern = `(?i)` + pattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &CompileError{Pattern: rule.Pattern, Err: err}
	}

	return &Matcher{re: re, anchored: anchored}, nil
}

// String returns the source text of the compiled expression.
func (m *Matcher) String() string {
	return m.re.String()
}

// IsMatch reports whether line satisfies the matcher. Anchored matchers
// require the whole line to match, others any substring.
func (m *Matcher) IsMatch(line string) bool {
	if m.anchored {
		loc := m.re.FindStringIndex(line)
		return loc != nil && loc[0] == 0 && loc[1] == len(line)
	}
	return m.re.MatchString(line)
}

// Find returns the non-empty match ranges of the matcher in line.
func (m *Matcher) Find(line string) []models.Span {
	var spans []models.Span
	for _, loc := range m.re.FindAllStringIndex(line, -1) {
		if loc[1] > loc[0] {
			spans = append(spans, models.Span{Start: loc[0], End: loc[1]})
		}
	}
	return spans
}

// LineMatches reports whether line is visible under the given matchers.
// An empty set shows everything; otherwise any single match is enough.
func LineMatches(line string, matchers []*Matcher) bool {
	if len(matchers) == 0 {
		return true
	}
	for _, m := range matchers {
		if m.IsMatch(line) {
			return true
		}
	}
	return false
}

// HighlightSpans returns the union of all match ranges in line, sorted and
// with overlapping or touching ranges merged.
func HighlightSpans(line string, matchers []*Matcher) []models.Span {
	var spans []models.Span
	for _, m := range matchers {
		spans = append(spans, m.Find(line)...)
	}
	return MergeSpans(spans)
}

// MergeSpans sorts spans by start and merges overlapping or adjacent ones.
func MergeSpans(spans []models.Span) []models.Span {
	if len(spans) == 0 {
		return nil
	}

	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Start == spans[j].Start {
			return spans[i].End < spans[j].End
		}
		return spans[i].Start < spans[j].Start
	})

	merged := []models.Span{spans[0]}
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.Start <= last.End {
			if s.End > last.End {
				last.End = s.End
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}
