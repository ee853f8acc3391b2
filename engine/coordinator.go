package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/cube-hunter/audio"
	"github.com/lixenwraith/cube-hunter/collision"
	"github.com/lixenwraith/cube-hunter/cube"
	"github.com/lixenwraith/cube-hunter/render"
	"github.com/lixenwraith/cube-hunter/status"
)

// CoordinatorState is the position of a coordinator in its round cycle
type CoordinatorState int32

const (
	WaitingForRound CoordinatorState = iota
	MaybeCollide
	WaitingForMoveSignal
	Moving
	ReportedDone
	WaitingThrottle
	Exited
)

func (s CoordinatorState) String() string {
	switch s {
	case WaitingForRound:
		return "waiting_for_round"
	case MaybeCollide:
		return "maybe_collide"
	case WaitingForMoveSignal:
		return "waiting_for_move"
	case Moving:
		return "moving"
	case ReportedDone:
		return "reported_done"
	case WaitingThrottle:
		return "waiting_throttle"
	case Exited:
		return "exited"
	}
	return "unknown"
}

// Coordinator drives one cube through collision windows and movement rounds
type Coordinator struct {
	w    *World
	cube *cube.Cube

	// Per-round permits, each holds at most one pending signal
	move     chan struct{}
	throttle chan struct{}
	done     chan<- struct{}

	state atomic.Int32
}

func newCoordinator(w *World, c *cube.Cube, done chan<- struct{}) *Coordinator {
	return &Coordinator{
		w:        w,
		cube:     c,
		move:     make(chan struct{}, 1),
		throttle: make(chan struct{}, 1),
		done:     done,
	}
}

// Cube returns the driven cube
func (c *Coordinator) Cube() *cube.Cube { return c.cube }

// State returns the current cycle position
func (c *Coordinator) State() CoordinatorState { return CoordinatorState(c.state.Load()) }

func (c *Coordinator) setState(s CoordinatorState) { c.state.Store(int32(s)) }

// run cycles until the cube dies or ctx is cancelled
func (c *Coordinator) run(ctx context.Context) {
	for {
		c.setState(WaitingForRound)
		if !c.awaitMove(ctx) {
			return
		}

		c.setState(Moving)
		c.step()

		c.setState(ReportedDone)
		c.done <- struct{}{}

		c.setState(WaitingThrottle)
		select {
		case <-c.throttle:
		case <-ctx.Done():
			return
		}

		if !c.cube.IsAlive() {
			return
		}
	}
}

// awaitMove blocks for the move permit, polling for collisions whenever the window opens.
// Returns false when the coordinator must exit
func (c *Coordinator) awaitMove(ctx context.Context) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case <-c.move:
			return true
		case <-c.w.Window.Opened():
			c.setState(MaybeCollide)
			if c.collide(ctx) {
				return false
			}
			c.setState(WaitingForMoveSignal)
		}
	}
}

// collide polls the detector until the window shuts. Returns true if the cube was hit
// or ctx ended
func (c *Coordinator) collide(ctx context.Context) bool {
	ticker := time.NewTicker(c.w.Timing.CollisionPoll)
	defer ticker.Stop()

	for {
		hit := false
		if !c.w.Window.Do(func() { hit = c.check() }) {
			return false
		}
		if hit {
			return true
		}
		select {
		case <-ctx.Done():
			return true
		case <-ticker.C:
		}
	}
}

// check tests the cube against the crosshair and resolves a hit. Runs under the window hold
func (c *Coordinator) check() bool {
	c.cube.Lock()
	defer c.cube.Unlock()

	if !c.cube.Alive {
		return false
	}
	l := c.w.Layout
	if !c.w.Crosshair.Hits(collision.CellBounds(c.cube.Pos, l.CellWidth, l.CellHeight)) {
		return false
	}

	render.ClearCube(c.w.Surface, l, cube.View{Pos: c.cube.Pos})
	c.cube.KillLocked(c.w.Grid)
	c.w.Session.AddScore(1)
	c.w.applyPowerUp(c.cube.PowerUp)
	c.w.Registry.Ints.Get(status.Hits).Add(1)

	if c.cube.PowerUp == cube.None {
		c.w.Sound.Play(audio.CueHit)
	} else {
		c.w.Sound.Play(audio.CuePowerUp)
	}
	c.w.Log.WithFields(logrus.Fields{"cube": c.cube.ID, "powerup": c.cube.PowerUp.String()}).Debug("cube hit")
	return true
}

// step moves the cube one cell and ages it. Freeze skips both
func (c *Coordinator) step() {
	c.cube.Lock()
	defer c.cube.Unlock()

	if !c.cube.Alive || c.w.Modifiers().Frozen() {
		return
	}

	c.cube.StepLocked(c.w.Grid, c.w.RNG, c.w.Timing.MoveRetries)
	c.cube.Lifetime--
	if c.cube.Lifetime > 0 {
		return
	}

	c.cube.KillLocked(c.w.Grid)
	c.w.Registry.Ints.Get(status.Expired).Add(1)
	if !c.cube.PowerUp.CostsLife() {
		return
	}
	c.w.Sound.Play(audio.CueLifeLost)
	if c.w.Session.DecLife() && c.w.gameOver != nil {
		c.w.gameOver()
	}
}
