package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/vsariola/clipseq/cmd/clipseq/internal/config"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "routes:\n  synth: \"Midi Through\"\ntakes_dir: " + dir + "\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := config.Load(path)
	if err != nil {
		t.Fatalf("could not load config: %v", err)
	}
	if got := c.Routes["synth"]; got != "Midi Through" {
		t.Errorf("route for synth: got %q", got)
	}
	if c.TakesDir != dir {
		t.Errorf("takes dir: got %q, want %q", c.TakesDir, dir)
	}
	if l, err := c.Level(); err != nil || l != slog.LevelDebug {
		t.Errorf("level: got %v, %v", l, err)
	}
}

func TestLoadMissingExplicit(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing explicit config file")
	}
}

func TestInvalidLevel(t *testing.T) {
	c := &config.Config{LogLevel: "loud"}
	if _, err := c.Level(); err == nil {
		t.Error("expected an error for an invalid log level")
	}
}
