// Package cube models the grid-bound wandering hazards and their spawning.
package cube

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/lixenwraith/cube-hunter/grid"
)

// Direction is a cube heading
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
	directionCount
)

// Directions lists headings in selection order
var Directions = [directionCount]Direction{Up, Down, Left, Right}

// Delta returns the cell offset of one step in this direction
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	return 0, 0
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("direction(%d)", d)
}

// Cube is one wandering hazard. Mutable fields are owned by whoever holds Lock
type Cube struct {
	mu sync.Mutex

	ID       int
	Pos      grid.Cell
	Heading  Direction
	Alive    bool
	Lifetime int
	PowerUp  PowerUp
	Color    tcell.Color
}

// Lock acquires the cube's own lock
func (c *Cube) Lock() { c.mu.Lock() }

// Unlock releases the cube's own lock
func (c *Cube) Unlock() { c.mu.Unlock() }

// View is an immutable copy of a cube's fields
type View struct {
	ID       int
	Pos      grid.Cell
	Heading  Direction
	Alive    bool
	Lifetime int
	PowerUp  PowerUp
	Color    tcell.Color
}

// Snapshot copies the cube under its lock
func (c *Cube) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ViewLocked()
}

// ViewLocked copies the cube. Caller holds the lock
func (c *Cube) ViewLocked() View {
	return View{
		ID:       c.ID,
		Pos:      c.Pos,
		Heading:  c.Heading,
		Alive:    c.Alive,
		Lifetime: c.Lifetime,
		PowerUp:  c.PowerUp,
		Color:    c.Color,
	}
}

// IsAlive reads the alive flag under the lock
func (c *Cube) IsAlive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Alive
}

// KillLocked marks the cube dead and releases its cell. Caller holds the lock
// Returns false if the cube was already dead
func (c *Cube) KillLocked(g *grid.Grid) bool {
	if !c.Alive {
		return false
	}
	c.Alive = false
	g.Release(c.Pos)
	return true
}
