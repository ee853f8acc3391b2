package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix namespaces every environment override
const EnvPrefix = "CUBE_HUNTER_"

// LoadDotEnv loads a .env file into the process environment without overriding set variables.
// A missing file is not an error
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from CUBE_HUNTER_* variables. Malformed values are errors
func (c *Config) ApplyEnv() error {
	ints := map[string]*int{
		"LIFE":           &c.Session.StartingLife,
		"CUBES":          &c.Cubes.Initial,
		"MAX_LIFETIME":   &c.Cubes.MaxLifetime,
		"REPOPULATE_MAX": &c.Cubes.RepopulateMax,
		"HIGHSCORES":     &c.Session.HighScoreSlots,
		"QUEUE_SIZE":     &c.Input.QueueSize,
		"SAMPLE_RATE":    &c.Audio.SampleRate,
	}
	for key, dst := range ints {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
	}

	durations := map[string]*Duration{
		"WINDOW":           &c.Round.Window,
		"REPOPULATE_DELAY": &c.Round.RepopulateDelay,
		"SAMPLE_PERIOD":    &c.Input.SamplePeriod,
		"AIM_ASSIST":       &c.PowerUps.AimAssist,
		"SPEED":            &c.PowerUps.Speed,
		"FREEZE":           &c.PowerUps.Freeze,
	}
	for key, dst := range durations {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		dst.Duration = d
	}

	if v, ok := lookup("AUDIO_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sAUDIO_ENABLED: %w", EnvPrefix, err)
		}
		c.Audio.Enabled = b
	}

	// Volume is given as 0-100
	if v, ok := lookup("VOLUME"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sVOLUME: %w", EnvPrefix, err)
		}
		c.Audio.Volume = min(max(float64(n)/100.0, 0), 1)
	}

	if v, ok := lookup("STATUS_ADDR"); ok {
		c.Telemetry.Addr = v
	}

	if v, ok := lookup("SEED"); ok {
		n, err := strconv.ParseUint(v, 0, 64)
		if err != nil {
			return fmt.Errorf("%sSEED: %w", EnvPrefix, err)
		}
		c.Seed = n
	}

	// Spawn table as "life=1,aim=1,none=5"
	if v, ok := lookup("SPAWN"); ok {
		table, err := parseSpawn(v)
		if err != nil {
			return fmt.Errorf("%sSPAWN: %w", EnvPrefix, err)
		}
		c.PowerUps.Spawn = table
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func parseSpawn(s string) ([]SpawnWeight, error) {
	var out []SpawnWeight
	for _, part := range strings.Split(s, ",") {
		kind, weight, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return nil, fmt.Errorf("entry %q is not kind=weight", part)
		}
		n, err := strconv.Atoi(weight)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", part, err)
		}
		out = append(out, SpawnWeight{Kind: strings.TrimSpace(kind), Weight: n})
	}
	return out, nil
}
