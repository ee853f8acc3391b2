package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lixenwraith/cube-hunter/input"
	"github.com/lixenwraith/cube-hunter/rng"
)

// TestParseFlags verifies flag values land in the options
func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"cube-hunter", "--headless", "--duration", "2s", "--seed", "0x10", "--mute", "--status-addr", "127.0.0.1:0"})
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}
	if !opts.headless || !opts.mute {
		t.Error("Expected headless and mute set")
	}
	if opts.duration != 2*time.Second {
		t.Errorf("Expected 2s, got %v", opts.duration)
	}
	if opts.seed != 16 {
		t.Errorf("Expected seed 16, got %d", opts.seed)
	}
	if opts.statusAddr != "127.0.0.1:0" {
		t.Errorf("Expected status addr, got %q", opts.statusAddr)
	}
}

// TestParseFlagsRejectsBadValues verifies malformed durations and seeds fail
func TestParseFlagsRejectsBadValues(t *testing.T) {
	if _, err := parseFlags([]string{"cube-hunter", "--duration", "soon"}); err == nil {
		t.Error("Expected error for bad duration")
	}
	if _, err := parseFlags([]string{"cube-hunter", "--seed", "-1"}); err == nil {
		t.Error("Expected error for bad seed")
	}
}

// TestLoadConfigAppliesFlags verifies flags override file and defaults
func TestLoadConfigAppliesFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.toml")
	if err := os.WriteFile(path, []byte("[session]\nstarting_life = 9\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := loadConfig(&options{configPath: path, seed: 42, mute: true, statusAddr: ":9999"})
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Session.StartingLife != 9 {
		t.Errorf("Expected starting life 9, got %d", cfg.Session.StartingLife)
	}
	if cfg.Seed != 42 || cfg.Audio.Enabled || cfg.Telemetry.Addr != ":9999" {
		t.Errorf("Expected flag overrides, got seed %d audio %v addr %q", cfg.Seed, cfg.Audio.Enabled, cfg.Telemetry.Addr)
	}
}

type fixedSampler struct{ raw input.Raw }

func (f fixedSampler) Sample() (input.Raw, error) { return f.raw, nil }

// TestSeedRNGFixed verifies a fixed seed gives reproducible draws
func TestSeedRNGFixed(t *testing.T) {
	a, b := rng.New(), rng.New()
	if err := seedRNG(a, 0xDEADBEEF12345678, nil); err != nil {
		t.Fatalf("seedRNG failed: %v", err)
	}
	if err := seedRNG(b, 0xDEADBEEF12345678, nil); err != nil {
		t.Fatalf("seedRNG failed: %v", err)
	}
	for i := 0; i < 8; i++ {
		if x, y := a.Next(), b.Next(); x != y {
			t.Fatalf("Draw %d differs: %d vs %d", i, x, y)
		}
	}
}

// TestSeedRNGFromSample verifies an unset seed is derived from the stick
func TestSeedRNGFromSample(t *testing.T) {
	g := rng.New()
	if err := seedRNG(g, 0, fixedSampler{raw: input.Raw{X: 100, Y: 200}}); err != nil {
		t.Fatalf("seedRNG failed: %v", err)
	}
	if !g.Seeded() {
		t.Error("Expected generator seeded")
	}
}
