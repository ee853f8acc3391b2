package engine

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/cube-hunter/audio"
	"github.com/lixenwraith/cube-hunter/collision"
	"github.com/lixenwraith/cube-hunter/config"
	"github.com/lixenwraith/cube-hunter/core"
	"github.com/lixenwraith/cube-hunter/cube"
	"github.com/lixenwraith/cube-hunter/grid"
	"github.com/lixenwraith/cube-hunter/input"
	"github.com/lixenwraith/cube-hunter/powerup"
	"github.com/lixenwraith/cube-hunter/render"
	"github.com/lixenwraith/cube-hunter/rng"
	"github.com/lixenwraith/cube-hunter/session"
	"github.com/lixenwraith/cube-hunter/status"
)

var (
	ErrNoConfig       = errors.New("engine: config required")
	ErrNoSurface      = errors.New("engine: surface required")
	ErrNoRNG          = errors.New("engine: rng required")
	ErrAlreadyStarted = errors.New("engine: already started")
)

// Options wires a Game to its collaborators. Nil Sound, Queue, Registry and Log get defaults
type Options struct {
	Config   *config.Config
	RNG      *rng.Generator
	Surface  render.Surface
	Sound    audio.Player
	Queue    *input.Queue
	Registry *status.Registry
	Log      *logrus.Entry

	// OnReset runs during a restart after the engine state is reset
	OnReset func()
	// OnField reports whether the playing field is on screen. False while the
	// game-over, restarting or score-entry screens are up
	OnField func(shown bool)
}

// roundMetrics are zeroed on restart
var roundMetrics = []string{
	status.Rounds, status.Signals, status.Completions, status.Throttles,
	status.Hits, status.Expired, status.Repopulations, status.CohortExits,
}

// run is one game's worker set: synchronizer, cube renderer and crosshair consumer
type run struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	// done closes once every worker has returned
	done chan struct{}
}

// Game owns the world and the lifecycle transitions between games
type Game struct {
	world   *World
	sync    *Synchronizer
	onReset func()
	onField func(bool)

	root       context.Context
	rootCancel context.CancelFunc
	started    atomic.Bool
	stopped    atomic.Bool

	// gate orders restarts against repopulation
	gate sync.Mutex
	// lifecycle serializes whole restart transitions
	lifecycle sync.Mutex

	mu     sync.Mutex
	cohort *Cohort
	run    *run

	nextID      atomic.Int64
	transitions sync.WaitGroup
}

// NewGame builds the world from cfg. Nothing runs until Start
func NewGame(opts Options) (*Game, error) {
	cfg := opts.Config
	switch {
	case cfg == nil:
		return nil, ErrNoConfig
	case opts.Surface == nil:
		return nil, ErrNoSurface
	case opts.RNG == nil:
		return nil, ErrNoRNG
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	table, err := cfg.SpawnTable()
	if err != nil {
		return nil, err
	}

	if opts.Sound == nil {
		opts.Sound = audio.Silent{}
	}
	if opts.Queue == nil {
		opts.Queue = input.NewQueue(cfg.Input.QueueSize)
	}
	if opts.Registry == nil {
		opts.Registry = status.NewRegistry()
	}
	if opts.Log == nil {
		l := logrus.New()
		l.Out = io.Discard
		opts.Log = logrus.NewEntry(l)
	}

	g := grid.New(cfg.Grid.Columns, cfg.Grid.Rows)
	ch := collision.NewCrosshair(cfg.Crosshair.StartX, cfg.Crosshair.StartY, cfg.Crosshair.Radius)
	mods := powerup.NewModifiers(ch, cfg.Crosshair.Radius, cfg.Crosshair.LargeRadius)
	sched := powerup.NewScheduler(mods, powerup.Durations{
		Aim:    cfg.PowerUps.AimAssist.Duration,
		Speed:  cfg.PowerUps.Speed.Duration,
		Freeze: cfg.PowerUps.Freeze.Duration,
	}, opts.Registry, opts.Log.WithField("component", "powerup"))

	w := &World{
		Grid: g,
		RNG:  opts.RNG,
		Spawner: &cube.Spawner{
			Grid:        g,
			RNG:         opts.RNG,
			Table:       table,
			MaxLifetime: cfg.Cubes.MaxLifetime,
			MaxAttempts: cfg.Cubes.MaxAttempts,
		},
		Crosshair:  ch,
		Scheduler:  sched,
		Session:    session.New(cfg.Session.StartingLife),
		HighScores: session.NewHighScores(cfg.Session.HighScoreSlots),
		Window:     NewWindow(),
		Queue:      opts.Queue,
		Surface:    opts.Surface,
		Layout: render.Layout{
			FieldWidth:  cfg.Crosshair.FieldWidth,
			FieldHeight: cfg.Crosshair.FieldHeight,
			CellWidth:   cfg.Grid.CellWidth,
			CellHeight:  cfg.Grid.CellHeight,
			LineHeight:  render.PixelsPerRow,
		},
		Sound:    opts.Sound,
		Registry: opts.Registry,
		Log:      opts.Log.WithField("component", "engine"),
		Timing: Timing{
			Window:          cfg.Round.Window.Duration,
			CollisionPoll:   cfg.Round.CollisionPoll.Duration,
			RepopulateDelay: cfg.Round.RepopulateDelay.Duration,
			RestartScreen:   cfg.Round.RestartScreen.Duration,
			SamplePeriod:    cfg.Input.SamplePeriod.Duration,
			MoveRetries:     cfg.Cubes.MoveRetries,
			InitialCubes:    cfg.Cubes.Initial,
			RepopulateMax:   cfg.Cubes.RepopulateMax,
			StartX:          cfg.Crosshair.StartX,
			StartY:          cfg.Crosshair.StartY,
			BaseRadius:      cfg.Crosshair.Radius,
			LargeRadius:     cfg.Crosshair.LargeRadius,
		},
		redraw: make(chan struct{}, 1),
	}

	game := &Game{world: w, onReset: opts.OnReset, onField: opts.OnField}
	game.sync = &Synchronizer{g: game}
	w.gameOver = game.endRun
	return game, nil
}

// Start spawns the first cohort and the run workers under ctx
func (g *Game) Start(ctx context.Context) error {
	if !g.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	g.root, g.rootCancel = context.WithCancel(ctx)
	g.launch(g.newRun())
	return nil
}

// newRun spawns the initial cohort under a fresh run context and makes both current
func (g *Game) newRun() *run {
	w := g.world
	ctx, cancel := context.WithCancel(g.root)
	r := &run{ctx: ctx, cancel: cancel, done: make(chan struct{})}

	w.drawMu.Lock()
	w.Surface.FillScreen(render.ColorBackground)
	w.Surface.Show()
	w.drawMu.Unlock()
	g.showField(true)

	co := g.newCohort(ctx, w.Timing.InitialCubes)
	g.mu.Lock()
	g.run = r
	g.cohort = co
	g.mu.Unlock()
	co.Start()

	w.Registry.Ints.Get(status.CohortSize).Store(int64(co.Size()))
	w.Registry.Strings.Get(status.RunID).Store(w.Session.RunID().String())
	w.Log.WithField("run", w.Session.RunID().String()).Info("game started")
	return r
}

func (g *Game) showField(shown bool) {
	if g.onField != nil {
		g.onField(shown)
	}
}

// launch starts the run workers
func (g *Game) launch(r *run) {
	r.wg.Add(3)
	core.Go(func() {
		defer r.wg.Done()
		// The run lasts as long as its rounds
		defer r.cancel()
		g.sync.Run(r.ctx)
	})
	core.Go(func() {
		defer r.wg.Done()
		g.renderCubes(r.ctx)
	})
	core.Go(func() {
		defer r.wg.Done()
		g.trackCrosshair(r.ctx)
	})
	core.Go(func() {
		r.wg.Wait()
		close(r.done)
	})
}

// newCohort spawns n cubes with fresh ids
func (g *Game) newCohort(ctx context.Context, n int) *Cohort {
	first := int(g.nextID.Add(int64(n))) - n + 1
	return NewCohort(ctx, g.world, g.world.Spawner.SpawnCohort(first, n))
}

func (g *Game) setCohort(co *Cohort) {
	g.mu.Lock()
	g.cohort = co
	g.mu.Unlock()
}

// Cohort returns the current cohort
func (g *Game) Cohort() *Cohort {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cohort
}

func (g *Game) currentRun() *run {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.run
}

// endRun is called by the coordinator whose life loss ended the game
func (g *Game) endRun() {
	w := g.world
	if r := g.currentRun(); r != nil {
		r.cancel()
	}
	w.Sound.Play(audio.CueGameOver)
	w.Registry.Ints.Get(status.GameOvers).Add(1)
	w.Log.WithField("score", w.Session.Score()).Info("game over")
}

// Restart ends the current game and starts a new one.
// Returns false if a restart or score entry is already in progress
func (g *Game) Restart() bool {
	if !g.started.Load() || g.stopped.Load() {
		return false
	}
	w := g.world

	g.gate.Lock()
	ok := w.Session.TryBeginRestart()
	g.gate.Unlock()
	if !ok {
		return false
	}

	g.lifecycle.Lock()
	defer g.lifecycle.Unlock()

	w.Session.ForceGameOver()
	r := g.currentRun()
	r.cancel()

	w.drawMu.Lock()
	render.DrawRestarting(w.Surface, w.Layout)
	w.drawMu.Unlock()
	g.showField(false)
	w.Sound.Play(audio.CueRestart)
	sleep(g.root, w.Timing.RestartScreen)

	<-r.done
	exits := g.Cohort().Wait()
	w.Registry.Ints.Get(status.RestartExits).Store(int64(exits))
	w.Registry.Ints.Get(status.Restarts).Add(1)

	g.reset()
	w.Session.EndRestart()
	w.Log.WithField("exits", exits).Info("restarted")

	if g.stopped.Load() {
		return true
	}
	g.launch(g.newRun())
	return true
}

// reset returns shared state to its start values. Every worker has exited
func (g *Game) reset() {
	w := g.world
	w.Grid.Reset()
	w.Window.Shut()
	w.Scheduler.Reset()
	w.Crosshair.Recenter(w.Timing.StartX, w.Timing.StartY, w.Timing.BaseRadius)
	w.Registry.ResetInts(roundMetrics...)
	w.Queue.Drain()
	select {
	case <-w.redraw:
	default:
	}
	if g.onReset != nil {
		g.onReset()
	}
}

// RequestRestart runs Restart in the background
func (g *Game) RequestRestart() {
	g.background(func() { g.Restart() })
}

// RequestScoreEntry runs ScoreEntry in the background
func (g *Game) RequestScoreEntry() {
	g.background(g.ScoreEntry)
}

func (g *Game) background(fn func()) {
	if !g.started.Load() || g.stopped.Load() {
		return
	}
	g.transitions.Add(1)
	core.Go(func() {
		defer g.transitions.Done()
		fn()
	})
}

// Stop ends the game and waits for every goroutine it started
func (g *Game) Stop() {
	if !g.started.Load() || !g.stopped.CompareAndSwap(false, true) {
		return
	}
	g.rootCancel()
	g.transitions.Wait()
	if r := g.currentRun(); r != nil {
		<-r.done
	}
	g.Cohort().Wait()
	g.world.Scheduler.Reset()
}

// Session returns the game counters
func (g *Game) Session() *session.Session { return g.world.Session }

// HighScores returns the high-score table
func (g *Game) HighScores() *session.HighScores { return g.world.HighScores }

// Crosshair returns the shared crosshair
func (g *Game) Crosshair() *collision.Crosshair { return g.world.Crosshair }

// Modifiers returns the live power-up state, used as the input speed source
func (g *Game) Modifiers() *powerup.Modifiers { return g.world.Modifiers() }

// Queue returns the input sample queue
func (g *Game) Queue() *input.Queue { return g.world.Queue }

// Registry returns the metrics registry
func (g *Game) Registry() *status.Registry { return g.world.Registry }

// Synchronizer returns the round synchronizer
func (g *Game) Synchronizer() *Synchronizer { return g.sync }

// Targets returns the pixel bounds of every live cube
func (g *Game) Targets() []collision.Rect {
	co := g.Cohort()
	if co == nil {
		return nil
	}
	l := g.world.Layout
	var out []collision.Rect
	for _, c := range co.Coordinators() {
		v := c.cube.Snapshot()
		if v.Alive {
			out = append(out, collision.CellBounds(v.Pos, l.CellWidth, l.CellHeight))
		}
	}
	return out
}
