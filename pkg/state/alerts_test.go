package state

import (
	"strings"
	"testing"
	"time"

	"github.com/loganalyzer/rtlog/pkg/models"
)

func TestAlertArming(t *testing.T) {
	s, clock := newTestState(t, "app.log")

	s.PushLine(0, "all fine")
	if s.Alert().Message != "" {
		t.Fatal("Expected no alert for a quiet line")
	}

	s.PushLine(0, "disk ERROR on sda")
	alert := s.Alert()
	if !strings.Contains(alert.Message, "disk ERROR on sda") || !strings.HasPrefix(alert.Message, "app.log") {
		t.Errorf("unexpected alert message %q", alert.Message)
	}
	if !alert.Deadline.Equal(clock.Now().Add(DefaultAlertDisplay)) {
		t.Errorf("unexpected deadline %v", alert.Deadline)
	}

	snap := s.Snapshot()
	if !snap.Alert.Active || !snap.Alert.Blinking {
		t.Errorf("Expected active blinking alert, got %+v", snap.Alert)
	}

	clock.Advance(2 * time.Second)
	snap = s.Snapshot()
	if !snap.Alert.Active || snap.Alert.Blinking {
		t.Errorf("Expected active steady alert, got %+v", snap.Alert)
	}

	clock.Advance(4 * time.Second)
	if s.Snapshot().Alert.Active {
		t.Error("Expected alert to expire")
	}

	s.PushLine(0, "FATAL: out of memory")
	if !s.Snapshot().Alert.Active {
		t.Error("Expected FATAL to re-arm the alert")
	}
}

func TestAlertCaseSensitive(t *testing.T) {
	s, _ := newTestState(t, "app.log")
	s.PushLine(0, "an error in lower case")
	if s.Alert().Message != "" {
		t.Error("Expected default alert patterns to be case-sensitive")
	}
}

func TestAlertIgnoresFilters(t *testing.T) {
	s, _ := newTestState(t, "app.log")
	s.AddFilter(models.FilterRule{Pattern: "INFO", Enabled: true})
	s.PushLine(0, "ERROR hidden by filters")

	snap := s.Snapshot()
	if !snap.Alert.Active {
		t.Error("Expected alerts to fire for lines hidden by filters")
	}
	if len(snap.Rows) != 0 {
		t.Errorf("Expected the line to stay hidden, got %d rows", len(snap.Rows))
	}
}

func TestAlertsDisabledAndEmpty(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}

	disabled := New(Options{Now: clock.Now, AlertsDisabled: true})
	disabled.AddSource("a.log")
	disabled.PushLine(0, "ERROR")
	if disabled.Alert().Message != "" {
		t.Error("Expected no alert when disabled")
	}

	empty := New(Options{Now: clock.Now, AlertPatterns: []string{}})
	empty.AddSource("a.log")
	empty.PushLine(0, "ERROR")
	if empty.Alert().Message != "" {
		t.Error("Expected an empty pattern set to never alert")
	}
	if len(empty.AlertPatterns()) != 0 {
		t.Errorf("Expected no patterns, got %v", empty.AlertPatterns())
	}
}

func TestSetAlerts(t *testing.T) {
	s, clock := newTestState(t, "a.log")
	s.SetAlerts([]string{"", "panic:"}, false, time.Second, 100*time.Millisecond)

	if got := s.AlertPatterns(); len(got) != 1 || got[0] != "panic:" {
		t.Errorf("Expected [panic:], got %v", got)
	}

	s.PushLine(0, "ERROR")
	if s.Alert().Message != "" {
		t.Error("Expected old patterns to be replaced")
	}

	s.PushLine(0, "panic: nil map")
	if !s.Alert().Deadline.Equal(clock.Now().Add(time.Second)) {
		t.Errorf("Expected custom display duration, got %v", s.Alert().Deadline)
	}

	rows := s.Snapshot().Rows
	if len(rows) != 2 || rows[0].Alert || !rows[1].Alert {
		t.Errorf("Expected only the panic row marked, got %+v", rows)
	}
}
