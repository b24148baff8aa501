package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Notation selects how wheel cells are labelled
type Notation string

const (
	NotationCamelot Notation = "camelot" // "8B"
	NotationMusical Notation = "musical" // "C"
)

// Octave shift limits, kept in step with session.MinOctave/MaxOctave
const (
	minOctave = -5
	maxOctave = 4
)

// Config is the main configuration structure
type Config struct {
	OutputPort    string   `json:"outputPort,omitempty"`
	Channel       uint8    `json:"channel"`
	Velocity      uint8    `json:"velocity"`
	Octave        int      `json:"octave"`
	GracePeriodMs int      `json:"gracePeriodMs"`
	Notation      Notation `json:"notation"`
	Launchpad     bool     `json:"launchpad"`             // auto-connect a Launchpad as a second gesture surface
	Palette       string   `json:"palette,omitempty"`     // GPL palette file
	ExcludePorts  []string `json:"excludePorts,omitempty"` // output ports never offered
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Channel:       0,
		Velocity:      127,
		Octave:        0,
		GracePeriodMs: 30,
		Notation:      NotationCamelot,
		Launchpad:     true,
		ExcludePorts:  []string{"Midi Through", "Through Port"},
	}
}

// GracePeriod returns the note-off delay as a duration
func (c *Config) GracePeriod() time.Duration {
	return time.Duration(c.GracePeriodMs) * time.Millisecond
}

// Validate clamps out-of-range values in place
func (c *Config) Validate() {
	if c.Channel > 15 {
		c.Channel = 15
	}
	if c.Velocity == 0 || c.Velocity > 127 {
		c.Velocity = 127
	}
	c.Octave = max(minOctave, min(maxOctave, c.Octave))
	c.GracePeriodMs = max(0, min(1000, c.GracePeriodMs))
	if c.Notation != NotationMusical {
		c.Notation = NotationCamelot
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "camelot"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from the default path, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. Missing fields keep their defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Validate()
	return cfg, nil
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
