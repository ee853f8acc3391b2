// Package config assembles game settings from defaults, a TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/cube-hunter/cube"
)

// Duration is a time.Duration written as a string ("500ms") in config files
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func ms(n int) Duration { return Duration{time.Duration(n) * time.Millisecond} }

// GridConfig sizes the playfield
type GridConfig struct {
	Columns    int `toml:"columns"`
	Rows       int `toml:"rows"`
	CellWidth  int `toml:"cell_width"`
	CellHeight int `toml:"cell_height"`
}

// CubeConfig controls spawning and movement
type CubeConfig struct {
	Initial       int `toml:"initial"`
	MaxLifetime   int `toml:"max_lifetime"`
	MaxAttempts   int `toml:"max_attempts"`
	RepopulateMax int `toml:"repopulate_max"`
	MoveRetries   int `toml:"move_retries"`
}

// RoundConfig times the movement rounds
type RoundConfig struct {
	Window          Duration `toml:"window"`
	RepopulateDelay Duration `toml:"repopulate_delay"`
	CollisionPoll   Duration `toml:"collision_poll"`
	RestartScreen   Duration `toml:"restart_screen"`
}

// SessionConfig sets per-game counters
type SessionConfig struct {
	StartingLife   int `toml:"starting_life"`
	HighScoreSlots int `toml:"highscore_slots"`
}

// CrosshairConfig shapes the aiming cursor and the field it moves in
type CrosshairConfig struct {
	Radius      int `toml:"radius"`
	LargeRadius int `toml:"large_radius"`
	BaseSpeed   int `toml:"base_speed"`
	StartX      int `toml:"start_x"`
	StartY      int `toml:"start_y"`
	FieldWidth  int `toml:"field_width"`
	FieldHeight int `toml:"field_height"`
	Size        int `toml:"size"`
}

// InputConfig drives the sampling pipeline
type InputConfig struct {
	SamplePeriod  Duration `toml:"sample_period"`
	QueueSize     int      `toml:"queue_size"`
	JitterBuckets int      `toml:"jitter_buckets"`
	Smoothing     Duration `toml:"smoothing"`
}

// SpawnWeight is one configurable row of the power-up spawn table
type SpawnWeight struct {
	Kind   string `toml:"kind"`
	Weight int    `toml:"weight"`
}

// PowerUpConfig sets effect durations and spawn odds
type PowerUpConfig struct {
	AimAssist Duration      `toml:"aim_assist"`
	Speed     Duration      `toml:"speed"`
	Freeze    Duration      `toml:"freeze"`
	Spawn     []SpawnWeight `toml:"spawn"`
}

// AudioConfig toggles sound cues
type AudioConfig struct {
	Enabled    bool    `toml:"enabled"`
	Volume     float64 `toml:"volume"`
	SampleRate int     `toml:"sample_rate"`
}

// TelemetryConfig configures the debug status feed
type TelemetryConfig struct {
	Addr           string   `toml:"addr"`
	StreamInterval Duration `toml:"stream_interval"`
}

// DebounceConfig sets the minimum gap between button presses
type DebounceConfig struct {
	ScoreEntry Duration `toml:"score_entry"`
	Restart    Duration `toml:"restart"`
}

// Config is the complete game configuration
type Config struct {
	Grid      GridConfig      `toml:"grid"`
	Cubes     CubeConfig      `toml:"cubes"`
	Round     RoundConfig     `toml:"round"`
	Session   SessionConfig   `toml:"session"`
	Crosshair CrosshairConfig `toml:"crosshair"`
	Input     InputConfig     `toml:"input"`
	PowerUps  PowerUpConfig   `toml:"powerups"`
	Audio     AudioConfig     `toml:"audio"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Debounce  DebounceConfig  `toml:"debounce"`
	Seed      uint64          `toml:"seed"`
}

// Default returns the arcade settings
func Default() *Config {
	return &Config{
		Grid: GridConfig{Columns: 6, Rows: 6, CellWidth: 18, CellHeight: 18},
		Cubes: CubeConfig{
			Initial:       5,
			MaxLifetime:   20,
			MaxAttempts:   50,
			RepopulateMax: 4,
			MoveRetries:   4,
		},
		Round: RoundConfig{
			Window:          ms(500),
			RepopulateDelay: ms(500),
			CollisionPoll:   ms(10),
			RestartScreen:   ms(500),
		},
		Session: SessionConfig{StartingLife: 5, HighScoreSlots: 4},
		Crosshair: CrosshairConfig{
			Radius:      4,
			LargeRadius: 7,
			BaseSpeed:   6,
			StartX:      63,
			StartY:      63,
			FieldWidth:  128,
			FieldHeight: 112,
			Size:        5,
		},
		Input: InputConfig{
			SamplePeriod:  ms(50),
			QueueSize:     16,
			JitterBuckets: 64,
			Smoothing:     ms(100),
		},
		PowerUps: PowerUpConfig{
			AimAssist: ms(5000),
			Speed:     ms(2000),
			Freeze:    ms(2000),
			Spawn: []SpawnWeight{
				{Kind: "life", Weight: 1},
				{Kind: "aim", Weight: 1},
				{Kind: "speed", Weight: 1},
				{Kind: "freeze", Weight: 1},
				{Kind: "slow", Weight: 1},
				{Kind: "none", Weight: 5},
			},
		},
		Audio:     AudioConfig{Enabled: true, Volume: 0.5, SampleRate: 44100},
		Telemetry: TelemetryConfig{StreamInterval: ms(250)},
		Debounce:  DebounceConfig{ScoreEntry: ms(250), Restart: ms(20)},
	}
}

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid config")

// Load reads a TOML file over the defaults. An empty path returns the defaults
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown key %s in %s", ErrInvalid, undecoded[0], path)
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with
func (c *Config) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
	}

	switch {
	case c.Grid.Columns <= 0 || c.Grid.Rows <= 0:
		return fail("grid %dx%d", c.Grid.Columns, c.Grid.Rows)
	case c.Grid.CellWidth <= 0 || c.Grid.CellHeight <= 0:
		return fail("cell %dx%d", c.Grid.CellWidth, c.Grid.CellHeight)
	case c.Cubes.Initial <= 0 || c.Cubes.Initial > c.Grid.Columns*c.Grid.Rows:
		return fail("initial cubes %d for %d cells", c.Cubes.Initial, c.Grid.Columns*c.Grid.Rows)
	case c.Cubes.MaxLifetime < 2:
		return fail("max lifetime %d below 2", c.Cubes.MaxLifetime)
	case c.Cubes.MaxAttempts <= 0:
		return fail("max attempts %d", c.Cubes.MaxAttempts)
	case c.Cubes.RepopulateMax <= 0 || c.Cubes.RepopulateMax > c.Grid.Columns*c.Grid.Rows:
		return fail("repopulate max %d", c.Cubes.RepopulateMax)
	case c.Cubes.MoveRetries <= 0:
		return fail("move retries %d", c.Cubes.MoveRetries)
	case c.Round.Window.Duration <= 0 || c.Round.CollisionPoll.Duration <= 0:
		return fail("round window %s poll %s", c.Round.Window, c.Round.CollisionPoll)
	case c.Round.RepopulateDelay.Duration < 0 || c.Round.RestartScreen.Duration < 0:
		return fail("negative round delay")
	case c.Session.StartingLife <= 0:
		return fail("starting life %d", c.Session.StartingLife)
	case c.Session.HighScoreSlots <= 0:
		return fail("highscore slots %d", c.Session.HighScoreSlots)
	case c.Crosshair.Radius < 0 || c.Crosshair.LargeRadius < c.Crosshair.Radius:
		return fail("crosshair radius %d large %d", c.Crosshair.Radius, c.Crosshair.LargeRadius)
	case c.Crosshair.BaseSpeed <= 0:
		return fail("base speed %d", c.Crosshair.BaseSpeed)
	case c.Crosshair.FieldWidth <= 0 || c.Crosshair.FieldHeight <= c.Crosshair.Size:
		return fail("field %dx%d", c.Crosshair.FieldWidth, c.Crosshair.FieldHeight)
	case c.Input.SamplePeriod.Duration <= 0 || c.Input.QueueSize <= 0 || c.Input.JitterBuckets <= 0:
		return fail("input period %s queue %d buckets %d", c.Input.SamplePeriod, c.Input.QueueSize, c.Input.JitterBuckets)
	case c.PowerUps.AimAssist.Duration <= 0 || c.PowerUps.Speed.Duration <= 0 || c.PowerUps.Freeze.Duration <= 0:
		return fail("power-up durations must be positive")
	case c.Audio.Volume < 0 || c.Audio.Volume > 1:
		return fail("volume %f", c.Audio.Volume)
	}

	if _, err := c.SpawnTable(); err != nil {
		return fail("spawn table: %v", err)
	}
	return nil
}

// SpawnTable builds the weighted power-up table
func (c *Config) SpawnTable() (*cube.SpawnTable, error) {
	rows := make([]cube.Weight, 0, len(c.PowerUps.Spawn))
	for _, w := range c.PowerUps.Spawn {
		kind, err := cube.ParsePowerUp(w.Kind)
		if err != nil {
			return nil, err
		}
		rows = append(rows, cube.Weight{Kind: kind, Weight: w.Weight})
	}
	return cube.NewSpawnTable(rows)
}
