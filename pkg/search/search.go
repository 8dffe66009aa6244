// Package search finds matching lines relative to a cursor, wrapping at the
// ends of the buffer.
package search

import (
	"errors"

	"github.com/loganalyzer/rtlog/pkg/filter"
	"github.com/loganalyzer/rtlog/pkg/models"
)

// ErrNoQuery is returned when a predicate is requested for an empty query.
var ErrNoQuery = errors.New("no search query")

// Query describes what to look for.
type Query struct {
	Text            string
	IsRegex         bool
	CaseInsensitive bool
}

// Compile turns the query into a matcher using the same rules as filters.
func (q Query) Compile() (*filter.Matcher, error) {
	if q.Text == "" {
		return nil, ErrNoQuery
	}
	return filter.Compile(models.FilterRule{
		Pattern:         q.Text,
		IsRegex:         q.IsRegex,
		CaseInsensitive: q.CaseInsensitive,
	})
}

// Next scans forward from just after from, wrapping past the end once.
// The line at from is examined last. A negative from starts at index 0.
func Next(n, from int, match func(int) bool) (int, bool) {
	if n <= 0 {
		return 0, false
	}
	if from < 0 || from >= n {
		from = n - 1
	}
	for step := 1; step <= n; step++ {
		i := (from + step) % n
		if match(i) {
			return i, true
		}
	}
	return 0, false
}

// Prev scans backward from just before from, wrapping past the start once.
// The line at from is examined last. An out-of-range from starts at n-1.
func Prev(n, from int, match func(int) bool) (int, bool) {
	if n <= 0 {
		return 0, false
	}
	if from < 0 || from >= n {
		from = 0
	}
	for step := 1; step <= n; step++ {
		i := ((from-step)%n + n) % n
		if match(i) {
			return i, true
		}
	}
	return 0, false
}
