package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lixenwraith/cube-hunter/cube"
)

// TestDefaultIsValid verifies the arcade defaults pass validation
func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected defaults to validate, got %v", err)
	}
	if cfg.Grid.Columns != 6 || cfg.Grid.Rows != 6 {
		t.Errorf("Expected 6x6 grid, got %dx%d", cfg.Grid.Columns, cfg.Grid.Rows)
	}
	if cfg.Round.Window.Duration != 500*time.Millisecond {
		t.Errorf("Expected 500ms window, got %s", cfg.Round.Window)
	}

	table, err := cfg.SpawnTable()
	if err != nil {
		t.Fatal(err)
	}
	if table.Total() != 10 || table.Pick(4) != cube.SlowDown {
		t.Error("Expected default spawn table to match 1:1:1:1:1:5")
	}
}

// TestLoadTOML verifies file values override defaults and unknown keys fail
func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.toml")
	content := `
[grid]
columns = 8

[round]
window = "250ms"

[[powerups.spawn]]
kind = "life"
weight = 2

[[powerups.spawn]]
kind = "none"
weight = 1
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Expected load to succeed, got %v", err)
	}
	if cfg.Grid.Columns != 8 || cfg.Grid.Rows != 6 {
		t.Errorf("Expected 8x6 grid, got %dx%d", cfg.Grid.Columns, cfg.Grid.Rows)
	}
	if cfg.Round.Window.Duration != 250*time.Millisecond {
		t.Errorf("Expected 250ms window, got %s", cfg.Round.Window)
	}
	if len(cfg.PowerUps.Spawn) != 2 {
		t.Errorf("Expected 2 spawn rows, got %d", len(cfg.PowerUps.Spawn))
	}

	bad := filepath.Join(dir, "bad.toml")
	os.WriteFile(bad, []byte("[grid]\ncolumnz = 3\n"), 0o644)
	if _, err := Load(bad); !errors.Is(err, ErrInvalid) {
		t.Errorf("Expected unknown key to be rejected, got %v", err)
	}

	dur := filepath.Join(dir, "dur.toml")
	os.WriteFile(dur, []byte("[round]\nwindow = \"soon\"\n"), 0o644)
	if _, err := Load(dur); err == nil {
		t.Error("Expected malformed duration to fail")
	}
}

// TestApplyEnv verifies environment overrides and parse errors
func TestApplyEnv(t *testing.T) {
	t.Setenv("CUBE_HUNTER_LIFE", "3")
	t.Setenv("CUBE_HUNTER_WINDOW", "1s")
	t.Setenv("CUBE_HUNTER_VOLUME", "150")
	t.Setenv("CUBE_HUNTER_AUDIO_ENABLED", "false")
	t.Setenv("CUBE_HUNTER_SPAWN", "freeze=1, none=1")

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("Expected env to apply, got %v", err)
	}
	if cfg.Session.StartingLife != 3 {
		t.Errorf("Expected life 3, got %d", cfg.Session.StartingLife)
	}
	if cfg.Round.Window.Duration != time.Second {
		t.Errorf("Expected 1s window, got %s", cfg.Round.Window)
	}
	if cfg.Audio.Volume != 1 || cfg.Audio.Enabled {
		t.Errorf("Expected clamped volume and audio off, got %f %v", cfg.Audio.Volume, cfg.Audio.Enabled)
	}
	if len(cfg.PowerUps.Spawn) != 2 || cfg.PowerUps.Spawn[0].Kind != "freeze" {
		t.Errorf("Expected spawn override, got %+v", cfg.PowerUps.Spawn)
	}

	t.Setenv("CUBE_HUNTER_LIFE", "many")
	if err := Default().ApplyEnv(); err == nil {
		t.Error("Expected malformed life to fail")
	}
}

// TestLoadDotEnv verifies .env files feed ApplyEnv and a missing file is ignored
func TestLoadDotEnv(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("Expected missing file to be ignored, got %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	os.WriteFile(path, []byte("CUBE_HUNTER_CUBES=2\n"), 0o644)
	t.Setenv("CUBE_HUNTER_CUBES", "")
	os.Unsetenv("CUBE_HUNTER_CUBES")

	if err := LoadDotEnv(path); err != nil {
		t.Fatal(err)
	}
	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatal(err)
	}
	if cfg.Cubes.Initial != 2 {
		t.Errorf("Expected 2 cubes from .env, got %d", cfg.Cubes.Initial)
	}
}

// TestValidateRejects verifies impossible settings are caught
func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty grid", func(c *Config) { c.Grid.Columns = 0 }},
		{"too many cubes", func(c *Config) { c.Cubes.Initial = 37 }},
		{"short lifetime", func(c *Config) { c.Cubes.MaxLifetime = 1 }},
		{"zero window", func(c *Config) { c.Round.Window = Duration{} }},
		{"small large radius", func(c *Config) { c.Crosshair.LargeRadius = 2 }},
		{"zero life", func(c *Config) { c.Session.StartingLife = 0 }},
		{"loud", func(c *Config) { c.Audio.Volume = 2 }},
		{"unknown power-up", func(c *Config) { c.PowerUps.Spawn = []SpawnWeight{{Kind: "laser", Weight: 1}} }},
		{"all zero weights", func(c *Config) { c.PowerUps.Spawn = []SpawnWeight{{Kind: "none", Weight: 0}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Expected ErrInvalid, got %v", err)
			}
		})
	}
}

// TestDurationText verifies text round trip
func TestDurationText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("1m30s")); err != nil {
		t.Fatal(err)
	}
	out, _ := d.MarshalText()
	if string(out) != "1m30s" {
		t.Errorf("Expected 1m30s, got %s", out)
	}
}
