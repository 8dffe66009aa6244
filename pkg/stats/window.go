// Package stats keeps rolling per-second error and warning counts.
package stats

import (
	"strings"
	"time"

	"github.com/loganalyzer/rtlog/pkg/models"
)

// DefaultWindowSeconds is the number of one-second buckets kept.
const DefaultWindowSeconds = 60

// Classify returns the statistic classes of a line. "error" and "warn" are
// matched as case-insensitive substrings and are independent of each other.
func Classify(line string) models.Class {
	lower := strings.ToLower(line)
	var c models.Class
	if strings.Contains(lower, "error") {
		c |= models.ClassError
	}
	if strings.Contains(lower, "warn") {
		c |= models.ClassWarning
	}
	return c
}

// Window is a fixed-size sliding window of per-second counters. The last
// slot belongs to the second recorded in epoch.
type Window struct {
	errors   []int
	warnings []int
	epoch    int64
}

// NewWindow creates a window of size one-second buckets.
func NewWindow(size int) *Window {
	if size <= 0 {
		size = DefaultWindowSeconds
	}
	return &Window{
		errors:   make([]int, size),
		warnings: make([]int, size),
	}
}

// Advance moves the window forward to now's wall-clock second, evicting one
// bucket and appending a zero bucket per elapsed second. Time going
// backwards leaves the window untouched.
func (w *Window) Advance(now time.Time) {
	sec := now.Unix()
	if w.epoch == 0 {
		w.epoch = sec
		return
	}

	elapsed := sec - w.epoch
	if elapsed <= 0 {
		return
	}

	if elapsed >= int64(len(w.errors)) {
		clear(w.errors)
		clear(w.warnings)
	} else {
		shift(w.errors, int(elapsed))
		shift(w.warnings, int(elapsed))
	}
	w.epoch = sec
}

// shift drops the n oldest buckets and zeroes the n newest.
func shift(buckets []int, n int) {
	copy(buckets, buckets[n:])
	clear(buckets[len(buckets)-n:])
}

// Record advances the window to now, classifies line and bumps the newest
// buckets accordingly.
func (w *Window) Record(now time.Time, line string) models.Class {
	w.Advance(now)
	c := Classify(line)
	last := len(w.errors) - 1
	if c.Has(models.ClassError) {
		w.errors[last]++
	}
	if c.Has(models.ClassWarning) {
		w.warnings[last]++
	}
	return c
}

// Len returns the window size, which never changes.
func (w *Window) Len() int {
	return len(w.errors)
}

// Errors returns a copy of the error buckets, oldest first.
func (w *Window) Errors() []int {
	return append([]int(nil), w.errors...)
}

// Warnings returns a copy of the warning buckets, oldest first.
func (w *Window) Warnings() []int {
	return append([]int(nil), w.warnings...)
}

// View copies the window into a snapshot record.
func (w *Window) View() models.StatsView {
	return models.StatsView{
		Errors:   w.Errors(),
		Warnings: w.Warnings(),
		EpochSec: w.epoch,
	}
}
