package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Velocity != 127 || cfg.Notation != NotationCamelot || cfg.GracePeriod() != 30*time.Millisecond {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	cfg := DefaultConfig()
	cfg.OutputPort = "IAC Driver Bus 1"
	cfg.Octave = -2
	cfg.Notation = NotationMusical
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.OutputPort != cfg.OutputPort || got.Octave != -2 || got.Notation != NotationMusical {
		t.Errorf("round trip = %+v, want %+v", got, cfg)
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"octave": 1}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Octave != 1 || cfg.Velocity != 127 || cfg.GracePeriodMs != 30 {
		t.Errorf("partial load = %+v", cfg)
	}
}

func TestValidateClamps(t *testing.T) {
	cfg := &Config{Channel: 40, Velocity: 0, Octave: 9, GracePeriodMs: -5, Notation: "roman"}
	cfg.Validate()
	if cfg.Channel != 15 || cfg.Velocity != 127 || cfg.Octave != maxOctave || cfg.GracePeriodMs != 0 || cfg.Notation != NotationCamelot {
		t.Errorf("Validate() = %+v", cfg)
	}
}

func TestLoadRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte(`{`), 0644)
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected parse error")
	}
}
