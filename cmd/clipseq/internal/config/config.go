// Package config loads the clipseq command line configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the contents of ~/.clipseq/config.yaml.
type Config struct {
	// Routes maps instrument device names to MIDI output port name prefixes.
	Routes map[string]string `yaml:"routes,omitempty"`

	// TakesDir is where recorded takes are stored.
	TakesDir string `yaml:"takes_dir,omitempty"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level,omitempty"`

	// QueueLength is the number of messages a MIDI output buffers.
	QueueLength int `yaml:"queue_length,omitempty"`
}

// Dir returns the configuration directory, ~/.clipseq.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the home directory: %w", err)
	}
	return filepath.Join(home, ".clipseq"), nil
}

// Load reads the configuration from path, or from the default location if
// path is empty. A missing file at the default location is not an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	c := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return c, c.defaults()
		}
		return nil, fmt.Errorf("could not read config %v: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("could not parse config %v: %w", path, err)
	}
	return c, c.defaults()
}

func (c *Config) defaults() error {
	if c.TakesDir == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		c.TakesDir = filepath.Join(dir, "takes")
	}
	if strings.HasPrefix(c.TakesDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		c.TakesDir = filepath.Join(home, c.TakesDir[2:])
	}
	return nil
}

// Level returns the configured log level, Info if unset.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}
