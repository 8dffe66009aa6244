package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/loganalyzer/rtlog/pkg/highlighter"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("Expected defaults to validate, got %v", err)
	}
	if c.FrameInterval() != 33*time.Millisecond {
		t.Errorf("Expected 33ms frame interval, got %v", c.FrameInterval())
	}
	if c.Ingest.QueueCapacity != 1024 {
		t.Errorf("Expected queue capacity 1024, got %d", c.Ingest.QueueCapacity)
	}
	if len(c.Alerts.Patterns) != 2 || c.Alerts.Patterns[0] != "ERROR" || c.Alerts.Patterns[1] != "FATAL" {
		t.Errorf("Expected [ERROR FATAL], got %v", c.Alerts.Patterns)
	}
	if c.Stats.WindowSeconds != 60 {
		t.Errorf("Expected 60s window, got %d", c.Stats.WindowSeconds)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	l := NewLoader("")
	c, err := l.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if l.ConfigFile() != "" {
		t.Errorf("Expected no config file, got %q", l.ConfigFile())
	}
	if c.UI.Theme != "dark" || c.GetKeybinding("quit") != "q" {
		t.Errorf("Expected defaults, got theme=%q quit=%q", c.UI.Theme, c.GetKeybinding("quit"))
	}
	if l.Watch(func(*Config) {}) {
		t.Error("Expected Watch to refuse without a file")
	}
}

func TestLoadFileMergesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rtlog.yaml")
	content := `
ui:
  theme: light
alerts:
  patterns: [PANIC]
keybindings:
  quit: x
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(path)
	c, err := l.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if l.ConfigFile() != path {
		t.Errorf("Expected config file %q, got %q", path, l.ConfigFile())
	}
	if c.UI.Theme != "light" {
		t.Errorf("Expected theme 'light', got '%s'", c.UI.Theme)
	}
	if c.UI.FrameIntervalMs != 33 {
		t.Errorf("Expected default frame interval, got %d", c.UI.FrameIntervalMs)
	}
	if len(c.Alerts.Patterns) != 1 || c.Alerts.Patterns[0] != "PANIC" {
		t.Errorf("Expected [PANIC], got %v", c.Alerts.Patterns)
	}
	if got := c.GetKeybinding("quit"); got != "x" {
		t.Errorf("Expected quit bound to 'x', got '%s'", got)
	}
	if got := c.GetKeybinding("prev_match"); got != "N" {
		t.Errorf("Expected default prev_match 'N', got '%s'", got)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for a missing explicit config file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("ui: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected error for invalid yaml")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("RTLOG_ALERTS_DISABLED", "true")
	t.Setenv("RTLOG_INGEST_POLL_INTERVAL_MS", "50")

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !c.Alerts.Disabled {
		t.Error("Expected alerts disabled from the environment")
	}
	if c.PollInterval() != 50*time.Millisecond {
		t.Errorf("Expected 50ms poll interval, got %v", c.PollInterval())
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	c := DefaultConfig()
	c.UI.Theme = "monochrome"
	c.Ingest.Follow = true

	if err := Save(c, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.UI.Theme != "monochrome" || !loaded.Ingest.Follow {
		t.Errorf("unexpected loaded config %+v", loaded)
	}
}

func TestYAML(t *testing.T) {
	data, err := DefaultConfig().YAML()
	if err != nil {
		t.Fatalf("YAML failed: %v", err)
	}
	out := string(data)
	for _, want := range []string{"frame_interval_ms: 33", "queue_capacity: 1024", "- ERROR"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestValidate(t *testing.T) {
	c := DefaultConfig()
	c.UI.Theme = "neon"
	c.Ingest.QueueCapacity = 0
	c.General.LogLevel = "loud"
	c.Alerts.Patterns = []string{"ERROR", ""}

	err := c.Validate()
	if err == nil {
		t.Fatal("Expected validation errors")
	}
	for _, want := range []string{"ui.theme", "ingest.queue_capacity", "general.log_level", "alerts.patterns[1]"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected %q in %v", want, err)
		}
	}
}

func TestValidateAcceptsHighlighterThemes(t *testing.T) {
	for _, name := range highlighter.ThemeNames() {
		c := DefaultConfig()
		c.UI.Theme = name
		if err := c.Validate(); err != nil {
			t.Errorf("Expected theme %q to validate, got %v", name, err)
		}
	}
}

func TestDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "rtlog", "config.yaml"); path != want {
		t.Errorf("Expected %q, got %q", want, path)
	}
}
