package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/cube-hunter/core"
	"github.com/lixenwraith/cube-hunter/cube"
	"github.com/lixenwraith/cube-hunter/render"
	"github.com/lixenwraith/cube-hunter/status"
)

// RoundResult counts what happened in one synchronizer round
type RoundResult struct {
	Participants int
	Signals      int
	Completions  int
	Throttles    int
	Repopulated  bool
	Exits        int
	Spawned      int
}

// Balanced reports whether every signalled coordinator completed and was released
func (r RoundResult) Balanced() bool {
	return r.Signals == r.Participants && r.Completions == r.Signals && r.Throttles == r.Completions
}

// Synchronizer paces the movement rounds of the current cohort
type Synchronizer struct {
	g *Game
}

// Run loops rounds until ctx ends, the game is over or a restart begins.
// A game that ended on its own leaves the game-over screen up
func (s *Synchronizer) Run(ctx context.Context) {
	w := s.g.world
	for ctx.Err() == nil && !w.Session.Over() && !w.Session.Restarting() {
		s.RunRound(ctx)
	}

	if w.Session.Over() && !w.Session.Restarting() {
		w.drawMu.Lock()
		render.DrawGameOver(w.Surface, w.Layout, w.Session.Score())
		w.drawMu.Unlock()
		s.g.showField(false)
	}
	w.Log.Debug("synchronizer exited")
}

// RunRound runs one collision window followed by one movement step of every live cube
func (s *Synchronizer) RunRound(ctx context.Context) RoundResult {
	w := s.g.world
	var res RoundResult

	w.Window.Open()
	w.RequestRedraw()
	sleep(ctx, w.Timing.Window)
	w.Window.Shut()
	w.Registry.Ints.Get(status.Rounds).Add(1)

	if ctx.Err() != nil || w.Session.Restarting() || w.Session.Over() {
		return res
	}

	w.drawMu.Lock()
	defer w.drawMu.Unlock()

	co := s.g.Cohort()
	participants := co.Alive()
	for _, c := range participants {
		c.cube.Lock()
		if c.cube.Alive {
			render.ClearCube(w.Surface, w.Layout, cube.View{Pos: c.cube.Pos})
		}
		c.cube.Unlock()
	}
	res.Participants = len(participants)

	for _, c := range participants {
		c.move <- struct{}{}
		res.Signals++
	}
collect:
	for res.Completions < res.Signals {
		select {
		case <-co.done:
			res.Completions++
		case <-ctx.Done():
			break collect
		}
	}
	for _, c := range participants {
		c.throttle <- struct{}{}
		res.Throttles++
	}

	ints := w.Registry.Ints
	ints.Get(status.Signals).Add(int64(res.Signals))
	ints.Get(status.Completions).Add(int64(res.Completions))
	ints.Get(status.Throttles).Add(int64(res.Throttles))

	if len(co.Alive()) == 0 {
		s.repopulate(ctx, co, &res)
	}
	return res
}

// repopulate replaces an empty cohort. The restart gate is held so a restart
// waits for the new cohort instead of racing its spawn
func (s *Synchronizer) repopulate(ctx context.Context, old *Cohort, res *RoundResult) {
	w := s.g.world
	if !sleep(ctx, w.Timing.RepopulateDelay) {
		return
	}

	s.g.gate.Lock()
	defer s.g.gate.Unlock()
	if ctx.Err() != nil || w.Session.Restarting() || w.Session.Over() {
		return
	}

	res.Exits = old.Retire()
	if n := w.Grid.Occupied(); n != 0 {
		core.Fatal("Grid not empty", fmt.Sprintf("%d cells occupied after retire", n))
	}

	n := 1 + w.RNG.Intn(w.Timing.RepopulateMax)
	co := s.g.newCohort(ctx, n)
	s.g.setCohort(co)
	co.Start()

	res.Repopulated = true
	res.Spawned = n

	ints := w.Registry.Ints
	ints.Get(status.Repopulations).Add(1)
	ints.Get(status.CohortExits).Add(int64(res.Exits))
	ints.Get(status.CohortSize).Store(int64(n))
	w.Log.WithFields(logrus.Fields{"exits": res.Exits, "spawned": n}).Debug("cohort repopulated")
}

// sleep waits d or until ctx ends. Returns false if ctx ended first
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
