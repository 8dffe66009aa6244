package state

import (
	"fmt"
	"testing"
	"time"

	"github.com/loganalyzer/rtlog/pkg/models"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestState(t *testing.T, sources ...string) (*AppState, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	s := New(Options{Now: clock.Now, Viewport: 10})
	for _, src := range sources {
		s.AddSource(src)
	}
	return s, clock
}

func pushN(s *AppState, id, n int, format string) {
	for i := 0; i < n; i++ {
		s.PushLine(id, fmt.Sprintf(format, i))
	}
}

func TestPushLineScenario(t *testing.T) {
	s, _ := newTestState(t, "/var/log/app.log")
	s.AddFilter(models.FilterRule{Pattern: "ERROR", CaseInsensitive: true, Enabled: true})

	for _, line := range []string{"a ERROR 1", "b", "c ERROR 2"} {
		s.PushLine(0, line)
	}

	if got := s.Source(0).Lines().Len(); got != 3 {
		t.Errorf("Expected 3 buffered lines, got %d", got)
	}
	if got := s.Filters()[0].MatchCount; got != 2 {
		t.Errorf("Expected match_count 2, got %d", got)
	}

	snap := s.Snapshot()
	if len(snap.Rows) != 2 || snap.Rows[0].Index != 0 || snap.Rows[1].Index != 2 {
		t.Errorf("Expected rows 0 and 2 visible, got %+v", snap.Rows)
	}
	if errs := snap.Stats.Errors; errs[len(errs)-1] != 2 {
		t.Errorf("Expected 2 errors in the newest bucket, got %d", errs[len(errs)-1])
	}
	if snap.Sources[0].Name != "app.log" {
		t.Errorf("Expected source name 'app.log', got '%s'", snap.Sources[0].Name)
	}
}

func TestPushLineCountsHiddenMatches(t *testing.T) {
	s, _ := newTestState(t, "a.log")
	s.AddFilter(models.FilterRule{Pattern: "alpha", Enabled: true})
	s.AddFilter(models.FilterRule{Pattern: "beta", Enabled: true})
	s.AddFilter(models.FilterRule{Pattern: "alpha", Enabled: false})

	s.PushLine(0, "alpha beta")
	s.PushLine(0, "alpha")

	rules := s.Filters()
	if rules[0].MatchCount != 2 || rules[1].MatchCount != 1 {
		t.Errorf("Expected counts 2/1, got %d/%d", rules[0].MatchCount, rules[1].MatchCount)
	}
	if rules[2].MatchCount != 0 {
		t.Errorf("Expected disabled rule to stay at 0, got %d", rules[2].MatchCount)
	}
}

func TestPushLineUnknownSource(t *testing.T) {
	s, _ := newTestState(t, "a.log")
	s.PushLine(5, "lost")
	s.PushLine(-1, "lost")
	if got := s.Source(0).Lines().Len(); got != 0 {
		t.Errorf("Expected no lines, got %d", got)
	}
}

func TestPushLineAutoScroll(t *testing.T) {
	s, _ := newTestState(t, "a.log")
	pushN(s, 0, 20, "line %d")

	src := s.Source(0)
	s.ScrollUp(5)
	if src.AutoScroll || src.ScrollOffset != 5 {
		t.Fatalf("Expected paused at offset 5, got auto=%v offset=%d", src.AutoScroll, src.ScrollOffset)
	}

	s.PushLine(0, "more")
	if src.ScrollOffset != 5 {
		t.Errorf("Expected offset unchanged while paused, got %d", src.ScrollOffset)
	}

	s.ToggleAutoScroll()
	if !src.AutoScroll || src.ScrollOffset != 0 {
		t.Errorf("Expected auto-scroll at bottom, got auto=%v offset=%d", src.AutoScroll, src.ScrollOffset)
	}

	src.ScrollOffset = 3 // simulate a stale offset with auto-scroll on
	s.PushLine(0, "again")
	if src.ScrollOffset != 0 {
		t.Errorf("Expected push to re-pin the view, got offset %d", src.ScrollOffset)
	}
}

func TestScrolling(t *testing.T) {
	s, _ := newTestState(t, "a.log")
	pushN(s, 0, 10, "%d")
	src := s.Source(0)

	s.ScrollUp(100)
	if src.ScrollOffset != 9 {
		t.Errorf("Expected offset clamped to 9, got %d", src.ScrollOffset)
	}

	s.ScrollDown(4)
	if src.ScrollOffset != 5 || src.AutoScroll {
		t.Errorf("Expected offset 5 paused, got %d auto=%v", src.ScrollOffset, src.AutoScroll)
	}

	s.ScrollDown(10)
	if src.ScrollOffset != 0 || !src.AutoScroll {
		t.Errorf("Expected bottom with auto-scroll, got %d auto=%v", src.ScrollOffset, src.AutoScroll)
	}

	s.ScrollTop()
	if src.ScrollOffset != 9 || src.AutoScroll {
		t.Errorf("Expected top paused, got %d auto=%v", src.ScrollOffset, src.AutoScroll)
	}

	s.ScrollBottom()
	if src.ScrollOffset != 0 || !src.AutoScroll {
		t.Errorf("Expected bottom, got %d auto=%v", src.ScrollOffset, src.AutoScroll)
	}

	s.ToggleAutoScroll()
	if src.AutoScroll {
		t.Error("Expected toggle to pause")
	}
	s.ScrollDown(1)
	if !src.AutoScroll {
		t.Error("Expected scrolling down at the bottom to re-enable auto-scroll")
	}
}

func TestScrollingEmpty(t *testing.T) {
	s, _ := newTestState(t)
	s.ScrollUp(3)
	s.ScrollDown(3)
	s.ScrollTop()
	s.ScrollBottom()
	s.ToggleAutoScroll()
	s.MoveLogSelectionUp()
	s.MoveLogSelectionDown()
	s.FocusNextSource()
	s.FocusPrevSource()
	if s.JumpNextMatch() {
		t.Error("Expected no match without sources")
	}

	s.AddSource("empty.log")
	s.ScrollUp(3)
	if got := s.Source(0).ScrollOffset; got != 0 {
		t.Errorf("Expected offset 0 on an empty source, got %d", got)
	}
	s.EnsureLogSelection()
	if got := s.Source(0).Selected; got != -1 {
		t.Errorf("Expected no selection on an empty source, got %d", got)
	}
}

func TestSelection(t *testing.T) {
	s, _ := newTestState(t, "a.log")
	pushN(s, 0, 30, "line %d")
	src := s.Source(0)

	s.EnsureLogSelection()
	if src.Selected != 29 {
		t.Errorf("Expected newest line selected, got %d", src.Selected)
	}

	s.MoveLogSelectionDown()
	if src.Selected != 29 {
		t.Errorf("Expected selection clamped at 29, got %d", src.Selected)
	}

	for i := 0; i < 12; i++ {
		s.MoveLogSelectionUp()
	}
	if src.Selected != 17 {
		t.Errorf("Expected 17, got %d", src.Selected)
	}
	start, end := s.window(src)
	if src.Selected < start || src.Selected >= end {
		t.Errorf("Expected selection %d inside window [%d,%d)", src.Selected, start, end)
	}
	if src.AutoScroll {
		t.Error("Expected auto-scroll paused after revealing an older line")
	}

	for i := 0; i < 40; i++ {
		s.MoveLogSelectionUp()
	}
	if src.Selected != 0 {
		t.Errorf("Expected selection clamped at 0, got %d", src.Selected)
	}
	if src.ScrollOffset > src.Lines().Len()-1 {
		t.Errorf("Expected offset within bounds, got %d", src.ScrollOffset)
	}
}

func TestSelectionPrefersVisibleMatch(t *testing.T) {
	s, _ := newTestState(t, "a.log")
	s.PushLine(0, "ERROR one")
	s.PushLine(0, "ERROR two")
	s.PushLine(0, "info")
	s.AddFilter(models.FilterRule{Pattern: "ERROR", Enabled: true})

	s.EnsureLogSelection()
	if got := s.Source(0).Selected; got != 1 {
		t.Errorf("Expected newest matching line 1, got %d", got)
	}
}

func TestSelectionRespectsScrollOffset(t *testing.T) {
	s, _ := newTestState(t, "a.log")
	pushN(s, 0, 30, "line %d")
	s.ScrollUp(10)

	s.EnsureLogSelection()
	if got := s.Source(0).Selected; got != 19 {
		t.Errorf("Expected 19, got %d", got)
	}
}

func TestFocusCycling(t *testing.T) {
	s, _ := newTestState(t, "a.log", "b.log", "c.log")
	s.FocusPrevSource()
	if s.Focused() != 2 {
		t.Errorf("Expected wrap to 2, got %d", s.Focused())
	}
	s.FocusNextSource()
	if s.Focused() != 0 {
		t.Errorf("Expected wrap to 0, got %d", s.Focused())
	}
	s.FocusNextSource()
	if s.Focused() != 1 {
		t.Errorf("Expected 1, got %d", s.Focused())
	}
}

func TestScrollAffectsFocusedSourceOnly(t *testing.T) {
	s, _ := newTestState(t, "a.log", "b.log")
	pushN(s, 0, 10, "a%d")
	pushN(s, 1, 10, "b%d")

	s.FocusNextSource()
	s.ScrollUp(3)
	if s.Source(0).ScrollOffset != 0 || s.Source(1).ScrollOffset != 3 {
		t.Errorf("Expected only source 1 scrolled, got %d/%d", s.Source(0).ScrollOffset, s.Source(1).ScrollOffset)
	}
}

func TestSetSourceState(t *testing.T) {
	s, _ := newTestState(t, "a.log")
	s.SetSourceState(0, models.TailerFollowing)
	s.SetSourceState(9, models.TailerFailed)
	if got := s.Snapshot().Sources[0].State; got != models.TailerFollowing {
		t.Errorf("Expected following, got %s", got)
	}
}
