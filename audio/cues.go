package audio

import (
	"time"

	"github.com/gopxl/beep"
)

// Cue names a game sound
type Cue int

const (
	CueHit Cue = iota
	CuePowerUp
	CueLifeLost
	CueGameOver
	CueRestart
	cueCount
)

func (c Cue) String() string {
	switch c {
	case CueHit:
		return "hit"
	case CuePowerUp:
		return "powerup"
	case CueLifeLost:
		return "life_lost"
	case CueGameOver:
		return "game_over"
	case CueRestart:
		return "restart"
	}
	return "unknown"
}

// tone is a sine with a short attack and a long tail
func tone(rate beep.SampleRate, freq float64, d time.Duration) beep.Streamer {
	return voice(WaveSine, freq, d, 5*time.Millisecond, d/2, rate)
}

// Build synthesizes a cue at the given rate and volume
func Build(c Cue, rate beep.SampleRate, vol float64) beep.Streamer {
	var s beep.Streamer
	switch c {
	case CueHit:
		s = beep.Mix(
			newVolume(tone(rate, 880, 90*time.Millisecond), 0.7),
			newVolume(tone(rate, 1760, 60*time.Millisecond), 0.3),
		)
	case CuePowerUp:
		s = beep.Seq(
			voice(WaveSquare, 987.77, 70*time.Millisecond, 2*time.Millisecond, 30*time.Millisecond, rate),
			voice(WaveSquare, 1318.51, 140*time.Millisecond, 2*time.Millisecond, 90*time.Millisecond, rate),
		)
	case CueLifeLost:
		s = voice(WaveSaw, 110, 120*time.Millisecond, 5*time.Millisecond, 60*time.Millisecond, rate)
	case CueGameOver:
		s = beep.Seq(
			tone(rate, 440, 180*time.Millisecond),
			tone(rate, 330, 180*time.Millisecond),
			voice(WaveTriangle, 220, 360*time.Millisecond, 5*time.Millisecond, 240*time.Millisecond, rate),
		)
	case CueRestart:
		s = voice(WaveNoise, 0, 150*time.Millisecond, 20*time.Millisecond, 100*time.Millisecond, rate)
	default:
		return nil
	}
	return newVolume(s, vol)
}
