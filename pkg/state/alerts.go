package state

import (
	"time"

	"github.com/loganalyzer/rtlog/pkg/filter"
	"github.com/loganalyzer/rtlog/pkg/models"
	log "github.com/sirupsen/logrus"
)

// SetAlerts replaces the alert patterns and timings. Patterns are literal
// and case-sensitive; empty patterns are ignored. Zero durations select the
// defaults.
func (s *AppState) SetAlerts(patterns []string, disabled bool, display, blink time.Duration) {
	if display <= 0 {
		display = DefaultAlertDisplay
	}
	if blink <= 0 {
		blink = DefaultAlertBlink
	}
	s.alertsDisabled = disabled
	s.alertDisplay = display
	s.alertBlink = blink
	s.alertPatterns = nil
	s.alertMatchers = nil

	for _, p := range patterns {
		m, err := filter.Compile(models.FilterRule{Pattern: p})
		if err != nil {
			continue
		}
		s.alertPatterns = append(s.alertPatterns, p)
		s.alertMatchers = append(s.alertMatchers, m)
	}
	log.WithFields(log.Fields{"patterns": s.alertPatterns, "disabled": disabled}).Debug("alert patterns set")
}

// AlertPatterns returns the active alert patterns.
func (s *AppState) AlertPatterns() []string {
	return append([]string(nil), s.alertPatterns...)
}

// AlertsDisabled reports whether alerting is turned off.
func (s *AppState) AlertsDisabled() bool {
	return s.alertsDisabled
}

// alertMatch reports whether line triggers an alert. Unlike filters, an
// empty pattern set matches nothing.
func (s *AppState) alertMatch(line string) bool {
	if s.alertsDisabled || len(s.alertMatchers) == 0 {
		return false
	}
	return filter.LineMatches(line, s.alertMatchers)
}

func (s *AppState) armAlert(now time.Time, message string) {
	s.alert = models.AlertState{
		Message:       message,
		Deadline:      now.Add(s.alertDisplay),
		BlinkDeadline: now.Add(s.alertBlink),
	}
}

// Alert returns the current alert state.
func (s *AppState) Alert() models.AlertState {
	return s.alert
}
