package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestInitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "rtlog.log")
	closer, err := Init("debug", path)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer Init("info", "")

	log.WithField("source", "app.log").Debug("tailer started")
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "tailer started") || !strings.Contains(out, "source=app.log") {
		t.Errorf("unexpected log output %q", out)
	}
}

func TestInitDiscard(t *testing.T) {
	closer, err := Init("warn", "")
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer closer.Close()
	if log.GetLevel() != log.WarnLevel {
		t.Errorf("Expected warn level, got %s", log.GetLevel())
	}
}

func TestInitBadLevel(t *testing.T) {
	if _, err := Init("chatty", ""); err == nil {
		t.Error("Expected error for an unknown level")
	}
}
