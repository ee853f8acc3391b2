package engine

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/lixenwraith/cube-hunter/core"
	"github.com/lixenwraith/cube-hunter/cube"
)

// Cohort is the set of coordinators spawned together. Retiring it cancels
// every coordinator and waits for each to acknowledge its exit
type Cohort struct {
	ctx    context.Context
	cancel context.CancelFunc

	coords []*Coordinator
	done   chan struct{}

	wg      sync.WaitGroup
	exits   atomic.Int64
	started atomic.Bool
}

// NewCohort builds coordinators for cubes under a child of parent
func NewCohort(parent context.Context, w *World, cubes []*cube.Cube) *Cohort {
	ctx, cancel := context.WithCancel(parent)
	co := &Cohort{
		ctx:    ctx,
		cancel: cancel,
		coords: make([]*Coordinator, 0, len(cubes)),
		// Every participant reports once per round, so the sends never block
		done: make(chan struct{}, len(cubes)),
	}
	for _, c := range cubes {
		co.coords = append(co.coords, newCoordinator(w, c, co.done))
	}
	return co
}

// Start launches one goroutine per coordinator. Later calls do nothing
func (co *Cohort) Start() {
	if !co.started.CompareAndSwap(false, true) {
		return
	}
	co.wg.Add(len(co.coords))
	for _, c := range co.coords {
		core.Go(func() {
			defer func() {
				c.setState(Exited)
				co.exits.Add(1)
				co.wg.Done()
			}()
			c.run(co.ctx)
		})
	}
}

// Retire cancels the cohort and waits for every coordinator. Returns the acknowledged exits
func (co *Cohort) Retire() int {
	co.cancel()
	return co.Wait()
}

// Wait blocks until every started coordinator has exited
func (co *Cohort) Wait() int {
	co.wg.Wait()
	return int(co.exits.Load())
}

// Exits returns the number of coordinators that have exited so far
func (co *Cohort) Exits() int { return int(co.exits.Load()) }

// Size returns the number of coordinators in the cohort
func (co *Cohort) Size() int { return len(co.coords) }

// Coordinators returns the cohort members
func (co *Cohort) Coordinators() []*Coordinator { return co.coords }

// Alive returns coordinators whose cube is still alive
func (co *Cohort) Alive() []*Coordinator {
	alive := make([]*Coordinator, 0, len(co.coords))
	for _, c := range co.coords {
		if c.cube.IsAlive() {
			alive = append(alive, c)
		}
	}
	return alive
}
