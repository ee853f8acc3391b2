// Package engine runs the cube simulation: one coordinator goroutine per cube,
// a round synchronizer, renderers, and the restart and score-entry transitions.
package engine

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/cube-hunter/audio"
	"github.com/lixenwraith/cube-hunter/collision"
	"github.com/lixenwraith/cube-hunter/cube"
	"github.com/lixenwraith/cube-hunter/grid"
	"github.com/lixenwraith/cube-hunter/input"
	"github.com/lixenwraith/cube-hunter/powerup"
	"github.com/lixenwraith/cube-hunter/render"
	"github.com/lixenwraith/cube-hunter/rng"
	"github.com/lixenwraith/cube-hunter/session"
	"github.com/lixenwraith/cube-hunter/status"
)

// Timing holds the round and lifecycle parameters
type Timing struct {
	Window          time.Duration
	CollisionPoll   time.Duration
	RepopulateDelay time.Duration
	RestartScreen   time.Duration
	SamplePeriod    time.Duration
	MoveRetries     int
	InitialCubes    int
	RepopulateMax   int
	StartX, StartY  int
	BaseRadius      int
	LargeRadius     int
}

// World is the state shared by every engine goroutine
type World struct {
	Grid       *grid.Grid
	RNG        *rng.Generator
	Spawner    *cube.Spawner
	Crosshair  *collision.Crosshair
	Scheduler  *powerup.Scheduler
	Session    *session.Session
	HighScores *session.HighScores
	Window     *Window
	Queue      *input.Queue
	Surface    render.Surface
	Layout     render.Layout
	Sound      audio.Player
	Registry   *status.Registry
	Log        *logrus.Entry
	Timing     Timing

	// drawMu keeps cube positions stable while the field is drawn
	drawMu sync.Mutex
	redraw chan struct{}

	// gameOver is called once, by the coordinator whose life loss ended the game
	gameOver func()
}

// RequestRedraw asks the cube renderer for a frame; coalesces with a pending request
func (w *World) RequestRedraw() {
	select {
	case w.redraw <- struct{}{}:
	default:
	}
}

// Modifiers returns the live power-up state
func (w *World) Modifiers() *powerup.Modifiers { return w.Scheduler.Modifiers() }

// applyPowerUp grants the effect of a collected cube
func (w *World) applyPowerUp(p cube.PowerUp) {
	switch p {
	case cube.None:
	case cube.Life:
		w.Session.AddLife(1)
	default:
		w.Scheduler.Apply(p)
	}
}
