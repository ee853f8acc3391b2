package engine

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/cube-hunter/collision"
	"github.com/lixenwraith/cube-hunter/config"
	"github.com/lixenwraith/cube-hunter/cube"
	"github.com/lixenwraith/cube-hunter/input"
	"github.com/lixenwraith/cube-hunter/render"
	"github.com/lixenwraith/cube-hunter/rng"
	"github.com/lixenwraith/cube-hunter/session"
	"github.com/lixenwraith/cube-hunter/status"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Round.Window = config.Duration{Duration: 30 * time.Millisecond}
	cfg.Round.CollisionPoll = config.Duration{Duration: 2 * time.Millisecond}
	cfg.Round.RepopulateDelay = config.Duration{Duration: 5 * time.Millisecond}
	cfg.Round.RestartScreen = config.Duration{}
	return cfg
}

func newTestGame(t *testing.T, cfg *config.Config) (*Game, *render.Recorder) {
	t.Helper()
	rec := render.NewRecorder(0)
	g, err := NewGame(Options{Config: cfg, RNG: rng.NewSeeded(0xC0FFEE, 0xBEEF), Surface: rec})
	if err != nil {
		t.Fatalf("NewGame failed: %v", err)
	}
	return g, rec
}

// prepare spawns the first cohort without the run workers so tests drive rounds directly
func prepare(t *testing.T, g *Game) *run {
	t.Helper()
	g.root, g.rootCancel = context.WithCancel(context.Background())
	g.started.Store(true)
	r := g.newRun()
	t.Cleanup(func() {
		g.rootCancel()
		g.Cohort().Wait()
		g.world.Scheduler.Reset()
	})
	return r
}

// aimAway parks the crosshair outside the field so rounds score no hits
func aimAway(g *Game) {
	g.Crosshair().SetPosition(-100, -100)
}

func waitFor(t *testing.T, timeout time.Duration, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("Timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

// TestNewGameRequiresCollaborators verifies missing options are rejected
func TestNewGameRequiresCollaborators(t *testing.T) {
	if _, err := NewGame(Options{}); err != ErrNoConfig {
		t.Errorf("Expected ErrNoConfig, got %v", err)
	}
	if _, err := NewGame(Options{Config: config.Default()}); err != ErrNoSurface {
		t.Errorf("Expected ErrNoSurface, got %v", err)
	}
	if _, err := NewGame(Options{Config: config.Default(), Surface: render.NewRecorder(1)}); err != ErrNoRNG {
		t.Errorf("Expected ErrNoRNG, got %v", err)
	}
}

// TestInitialCohort verifies the first run spawns the configured cubes on distinct cells
func TestInitialCohort(t *testing.T) {
	cfg := testConfig()
	g, _ := newTestGame(t, cfg)
	prepare(t, g)

	co := g.Cohort()
	if co.Size() != cfg.Cubes.Initial {
		t.Errorf("Expected %d cubes, got %d", cfg.Cubes.Initial, co.Size())
	}
	if n := g.world.Grid.Occupied(); n != cfg.Cubes.Initial {
		t.Errorf("Expected %d occupied cells, got %d", cfg.Cubes.Initial, n)
	}
	if n := len(g.Targets()); n != cfg.Cubes.Initial {
		t.Errorf("Expected %d targets, got %d", cfg.Cubes.Initial, n)
	}
	if got := g.Registry().Ints.Get(status.CohortSize).Load(); got != int64(cfg.Cubes.Initial) {
		t.Errorf("Expected cohort size metric %d, got %d", cfg.Cubes.Initial, got)
	}
}

// TestHitKillsCube verifies a crosshair over a cube's cell kills it during an open window
func TestHitKillsCube(t *testing.T) {
	cfg := testConfig()
	g, _ := newTestGame(t, cfg)
	prepare(t, g)

	target := g.Cohort().Coordinators()[0]
	v := target.cube.Snapshot()
	b := collision.CellBounds(v.Pos, cfg.Grid.CellWidth, cfg.Grid.CellHeight)
	g.Crosshair().SetPosition(b.X+b.W/2, b.Y+b.H/2)

	g.world.Window.Open()
	waitFor(t, time.Second, "target to die", func() bool { return !target.cube.IsAlive() })
	g.world.Window.Shut()

	if !g.world.Grid.IsFree(v.Pos) {
		t.Errorf("Expected cell %v released", v.Pos)
	}
	if n := g.world.Grid.Occupied(); n != cfg.Cubes.Initial-1 {
		t.Errorf("Expected %d occupied cells, got %d", cfg.Cubes.Initial-1, n)
	}
	if s := g.Session().Score(); s != 1 {
		t.Errorf("Expected score 1, got %d", s)
	}
	if h := g.Registry().Ints.Get(status.Hits).Load(); h != 1 {
		t.Errorf("Expected 1 hit, got %d", h)
	}
	waitFor(t, time.Second, "target coordinator to exit", func() bool { return target.State() == Exited })
	if n := g.Cohort().Exits(); n != 1 {
		t.Errorf("Expected 1 acknowledged exit, got %d", n)
	}
}

// TestRoundBalance verifies every round signals, completes and releases each live cube once
func TestRoundBalance(t *testing.T) {
	cfg := testConfig()
	cfg.Session.StartingLife = 100
	g, _ := newTestGame(t, cfg)
	r := prepare(t, g)
	aimAway(g)

	before := make(map[int]int)
	for _, c := range g.Cohort().Coordinators() {
		before[c.cube.ID] = c.cube.Snapshot().Lifetime
	}

	for i := 0; i < 6; i++ {
		res := g.Synchronizer().RunRound(r.ctx)
		if !res.Balanced() {
			t.Errorf("Round %d unbalanced: %+v", i, res)
		}
		if alive, occ := len(g.Cohort().Alive()), g.world.Grid.Occupied(); alive != occ {
			t.Errorf("Round %d: expected occupied == alive, got %d occupied %d alive", i, occ, alive)
		}

		if i == 0 {
			if res.Participants != cfg.Cubes.Initial {
				t.Errorf("Expected %d participants, got %d", cfg.Cubes.Initial, res.Participants)
			}
			for _, c := range g.Cohort().Coordinators() {
				v := c.cube.Snapshot()
				if v.Lifetime != before[v.ID]-1 {
					t.Errorf("Cube %d: expected lifetime %d, got %d", v.ID, before[v.ID]-1, v.Lifetime)
				}
			}
		}
	}

	ints := g.Registry().Ints
	if ints.Get(status.Rounds).Load() != 6 {
		t.Errorf("Expected 6 rounds, got %d", ints.Get(status.Rounds).Load())
	}
	if s, c := ints.Get(status.Signals).Load(), ints.Get(status.Completions).Load(); s != c {
		t.Errorf("Expected signals == completions, got %d and %d", s, c)
	}
}

// TestFreezeStopsMovement verifies frozen cubes neither move nor age
func TestFreezeStopsMovement(t *testing.T) {
	cfg := testConfig()
	g, _ := newTestGame(t, cfg)
	r := prepare(t, g)
	aimAway(g)

	g.world.Scheduler.Apply(cube.Freeze)
	before := make(map[int]cube.View)
	for _, c := range g.Cohort().Coordinators() {
		v := c.cube.Snapshot()
		before[v.ID] = v
	}

	res := g.Synchronizer().RunRound(r.ctx)
	if !res.Balanced() || res.Participants != cfg.Cubes.Initial {
		t.Errorf("Expected balanced round over %d cubes, got %+v", cfg.Cubes.Initial, res)
	}
	for _, c := range g.Cohort().Coordinators() {
		v := c.cube.Snapshot()
		if v.Pos != before[v.ID].Pos || v.Lifetime != before[v.ID].Lifetime {
			t.Errorf("Cube %d changed while frozen: %+v -> %+v", v.ID, before[v.ID], v)
		}
	}
}

// TestRepopulateAfterCohortDies verifies an emptied field is refilled after every old coordinator exits
func TestRepopulateAfterCohortDies(t *testing.T) {
	cfg := testConfig()
	cfg.Session.StartingLife = 100
	g, _ := newTestGame(t, cfg)
	r := prepare(t, g)
	aimAway(g)

	old := g.Cohort()
	costly := 0
	for _, c := range old.Coordinators() {
		c.cube.Lock()
		c.cube.Lifetime = 1
		if c.cube.PowerUp.CostsLife() {
			costly++
		}
		c.cube.Unlock()
	}

	res := g.Synchronizer().RunRound(r.ctx)
	if !res.Repopulated {
		t.Fatalf("Expected repopulation, got %+v", res)
	}
	if res.Exits != cfg.Cubes.Initial {
		t.Errorf("Expected %d exits, got %d", cfg.Cubes.Initial, res.Exits)
	}
	if res.Spawned < 1 || res.Spawned > cfg.Cubes.RepopulateMax {
		t.Errorf("Expected 1..%d spawned, got %d", cfg.Cubes.RepopulateMax, res.Spawned)
	}
	if n := g.world.Grid.Occupied(); n != res.Spawned {
		t.Errorf("Expected %d occupied cells, got %d", res.Spawned, n)
	}
	for _, c := range old.Coordinators() {
		if c.State() != Exited {
			t.Errorf("Old coordinator %d in state %s", c.cube.ID, c.State())
		}
	}
	if co := g.Cohort(); co == old || co.Size() != res.Spawned {
		t.Errorf("Expected a fresh cohort of %d", res.Spawned)
	}
	if life := g.Session().Life(); life != 100-costly {
		t.Errorf("Expected life %d, got %d", 100-costly, life)
	}
	if n := g.Registry().Ints.Get(status.Repopulations).Load(); n != 1 {
		t.Errorf("Expected 1 repopulation, got %d", n)
	}
}

// TestGameOverOnce verifies simultaneous life losses end the run exactly once
func TestGameOverOnce(t *testing.T) {
	cfg := testConfig()
	cfg.Session.StartingLife = 1
	g, _ := newTestGame(t, cfg)
	r := prepare(t, g)
	aimAway(g)

	for _, c := range g.Cohort().Coordinators() {
		c.cube.Lock()
		c.cube.Lifetime = 1
		c.cube.PowerUp = cube.None
		c.cube.Unlock()
	}

	g.Synchronizer().RunRound(r.ctx)

	if !g.Session().Over() {
		t.Error("Expected game over")
	}
	if r.ctx.Err() == nil {
		t.Error("Expected run context cancelled")
	}
	if n := g.Registry().Ints.Get(status.GameOvers).Load(); n != 1 {
		t.Errorf("Expected 1 game over, got %d", n)
	}
	if life := g.Session().Life(); life != 0 {
		t.Errorf("Expected life 0, got %d", life)
	}
}

// TestRestartResetsGame verifies a restart retires every coordinator and starts a fresh game
func TestRestartResetsGame(t *testing.T) {
	cfg := testConfig()
	g, rec := newTestGame(t, cfg)
	if err := g.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(g.Stop)

	if err := g.Start(context.Background()); err != ErrAlreadyStarted {
		t.Errorf("Expected ErrAlreadyStarted, got %v", err)
	}

	old := g.Cohort()
	oldRun := g.Session().RunID()
	g.Crosshair().SetPosition(5, 5)

	if !g.Restart() {
		t.Fatal("Expected restart accepted")
	}

	for _, c := range old.Coordinators() {
		if c.State() != Exited {
			t.Errorf("Old coordinator %d in state %s", c.cube.ID, c.State())
		}
	}
	if old.Exits() != old.Size() {
		t.Errorf("Expected %d exits, got %d", old.Size(), old.Exits())
	}

	st := g.Session().Snapshot()
	if st.Life != cfg.Session.StartingLife || st.Score != 0 || st.Restarting {
		t.Errorf("Expected fresh session, got %+v", st)
	}
	if g.Session().RunID() == oldRun {
		t.Error("Expected a new run id")
	}
	if x, y := g.Crosshair().Position(); x != cfg.Crosshair.StartX || y != cfg.Crosshair.StartY {
		t.Errorf("Expected crosshair recentered, got (%d,%d)", x, y)
	}
	if g.Cohort() == old || g.Cohort().Size() != cfg.Cubes.Initial {
		t.Error("Expected a fresh initial cohort")
	}
	if n := g.Registry().Ints.Get(status.Restarts).Load(); n != 1 {
		t.Errorf("Expected 1 restart, got %d", n)
	}
	if !slices.Contains(rec.Texts(), "Restarting") {
		t.Error("Expected restart banner drawn")
	}
}

// TestScoreEntryBlocksRestart verifies restart is refused during initials entry and
// accepted once the score is recorded
func TestScoreEntryBlocksRestart(t *testing.T) {
	cfg := testConfig()
	g, rec := newTestGame(t, cfg)
	if err := g.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(g.Stop)

	// Score entry is refused while the game runs
	g.ScoreEntry()
	if g.Session().Scoring() != session.ScoringIdle {
		t.Fatal("Expected score entry refused while playing")
	}

	g.Session().ForceGameOver()
	select {
	case <-g.currentRun().done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run workers did not exit after game over")
	}
	score := g.Session().Score()

	g.RequestScoreEntry()
	waitFor(t, time.Second, "entry screen", func() bool {
		return slices.Contains(rec.Texts(), "Press s to save")
	})

	if g.Restart() {
		t.Error("Expected restart rejected during score entry")
	}

	g.Queue().Offer(input.Sample{DY: 3})
	waitFor(t, time.Second, "letter rotation", func() bool {
		return slices.Contains(rec.Texts(), "B")
	})

	g.RequestScoreEntry()
	waitFor(t, time.Second, "score recorded", func() bool {
		return g.Session().Scoring() == session.ScoringIdle && g.Session().Snapshot().Recorded
	})

	entries := g.HighScores().Entries()
	if len(entries) != 1 || entries[0].Name != "BAA" || entries[0].Score != score {
		t.Errorf("Expected [BAA %d], got %+v", score, entries)
	}
	if g.Session().TryBeginScoring() != session.ScoreRejected {
		t.Error("Expected second recording of the same game rejected")
	}
	if !g.Restart() {
		t.Error("Expected restart accepted after recording")
	}
}

// gatedSurface holds the first non-background fill of one cell until released,
// before the fill is recorded
type gatedSurface struct {
	*render.Recorder
	x, y    int
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *gatedSurface) FillRect(x, y, w, h int, c tcell.Color) {
	if x == s.x && y == s.y && c != render.ColorBackground {
		s.once.Do(func() {
			close(s.entered)
			<-s.release
		})
	}
	s.Recorder.FillRect(x, y, w, h, c)
}

// TestHitClearedAfterDraw verifies a cube hit while the renderer is painting it ends up cleared
func TestHitClearedAfterDraw(t *testing.T) {
	cfg := testConfig()
	surf := &gatedSurface{
		Recorder: render.NewRecorder(0),
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	g, err := NewGame(Options{Config: cfg, RNG: rng.NewSeeded(0xC0FFEE, 0xBEEF), Surface: surf})
	if err != nil {
		t.Fatalf("NewGame failed: %v", err)
	}
	r := prepare(t, g)

	target := g.Cohort().Coordinators()[0]
	target.cube.Lock()
	target.cube.PowerUp = cube.None
	target.cube.Color = tcell.ColorBlue
	pos := target.cube.Pos
	target.cube.Unlock()

	b := collision.CellBounds(pos, cfg.Grid.CellWidth, cfg.Grid.CellHeight)
	surf.x, surf.y = b.X, b.Y
	g.Crosshair().SetPosition(b.X+b.W/2, b.Y+b.H/2)

	done := make(chan struct{})
	go func() {
		defer close(done)
		g.renderCubes(r.ctx)
	}()
	t.Cleanup(func() {
		select {
		case <-surf.release:
		default:
			close(surf.release)
		}
		r.cancel()
		<-done
	})

	g.world.RequestRedraw()
	select {
	case <-surf.entered:
	case <-time.After(time.Second):
		t.Fatal("Renderer never drew the target")
	}

	// The coordinator polls every 2ms, so it tries the hit while the draw is held
	g.world.Window.Open()
	time.Sleep(30 * time.Millisecond)
	close(surf.release)
	waitFor(t, time.Second, "target to die", func() bool { return !target.cube.IsAlive() })
	g.world.Window.Shut()

	ops := surf.Ops()
	for i := len(ops) - 1; i >= 0; i-- {
		op := ops[i]
		if op.Kind != render.OpFillRect || op.X != b.X || op.Y != b.Y {
			continue
		}
		if op.Color != render.ColorBackground {
			t.Errorf("Expected dead cube cleared, last fill on its cell is %v", op.Color)
		}
		return
	}
	t.Error("Expected fills on the target cell")
}

// TestRestartDuringRepopulation verifies a restart landing while an emptied field waits
// to refill is accepted and leaves only a fresh initial cohort
func TestRestartDuringRepopulation(t *testing.T) {
	for _, lag := range []time.Duration{0, 10 * time.Millisecond, 25 * time.Millisecond} {
		cfg := testConfig()
		cfg.Session.StartingLife = 100
		cfg.Round.RepopulateDelay = config.Duration{Duration: 30 * time.Millisecond}
		g, _ := newTestGame(t, cfg)
		if err := g.Start(context.Background()); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		aimAway(g)
		oldRun := g.Session().RunID()

		old := g.Cohort()
		for _, c := range old.Coordinators() {
			c.cube.Lock()
			c.cube.Lifetime = 1
			c.cube.Unlock()
		}
		waitFor(t, 2*time.Second, "cohort to expire", func() bool { return len(old.Alive()) == 0 })
		time.Sleep(lag)

		if !g.Restart() {
			t.Errorf("Lag %v: expected restart accepted", lag)
		}
		aimAway(g)
		if g.Session().Restarting() {
			t.Errorf("Lag %v: expected restart flag cleared", lag)
		}
		if g.Session().RunID() == oldRun {
			t.Errorf("Lag %v: expected a new run", lag)
		}
		co := g.Cohort()
		if co == old || co.Size() != cfg.Cubes.Initial {
			t.Errorf("Lag %v: expected a fresh cohort of %d, got %d", lag, cfg.Cubes.Initial, co.Size())
		}
		waitFor(t, time.Second, "occupied cells to match live cubes", func() bool {
			g.world.drawMu.Lock()
			defer g.world.drawMu.Unlock()
			return g.world.Grid.Occupied() == len(co.Alive())
		})
		g.Stop()
	}
}

// TestFieldVisibilityFollowsScreens verifies the field hook tracks game over and restart
func TestFieldVisibilityFollowsScreens(t *testing.T) {
	cfg := testConfig()
	g, _ := newTestGame(t, cfg)
	var shown atomic.Bool
	g.onField = func(v bool) { shown.Store(v) }

	if err := g.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(g.Stop)
	if !shown.Load() {
		t.Error("Expected field shown after start")
	}

	g.Session().ForceGameOver()
	select {
	case <-g.currentRun().done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run workers did not exit after game over")
	}
	if shown.Load() {
		t.Error("Expected field hidden behind the game-over screen")
	}

	if !g.Restart() {
		t.Fatal("Expected restart accepted")
	}
	if !shown.Load() {
		t.Error("Expected field shown after restart")
	}
}

// TestSnapshotReportsCubes verifies the snapshot mirrors the cohort and grid
func TestSnapshotReportsCubes(t *testing.T) {
	cfg := testConfig()
	g, _ := newTestGame(t, cfg)
	prepare(t, g)

	s := g.Snapshot()
	if len(s.Cubes) != cfg.Cubes.Initial || s.Occupied != cfg.Cubes.Initial {
		t.Errorf("Expected %d cubes, got %d cubes %d occupied", cfg.Cubes.Initial, len(s.Cubes), s.Occupied)
	}
	if s.Session.Life != cfg.Session.StartingLife {
		t.Errorf("Expected life %d, got %d", cfg.Session.StartingLife, s.Session.Life)
	}
	for _, c := range s.Cubes {
		if !c.Alive || c.Coordinator == "" {
			t.Errorf("Unexpected cube state %+v", c)
		}
	}
}

// TestStateNames verifies coordinator states render for the debug feed
func TestStateNames(t *testing.T) {
	for s := WaitingForRound; s <= Exited; s++ {
		if s.String() == "unknown" {
			t.Errorf("State %d has no name", s)
		}
	}
	if CoordinatorState(99).String() != "unknown" {
		t.Error("Expected unknown for out-of-range state")
	}
}
