// Package grid implements the occupancy grid shared by all cube coordinators.
//
// Every cell carries an explicit Free/Occupied state guarded by its own mutex, so
// "locked for update" and "semantically occupied" are never the same thing.
// Claims, releases and moves hold the grid-wide read lock (they run concurrently
// and only serialize per cell); whole-grid reads hold the write lock and therefore
// never observe a move between its claim and its release.
package grid

import (
	"fmt"
	"sync"
)

// CellState is the ownership flag of one cell
type CellState uint8

const (
	Free CellState = iota
	Occupied
)

func (s CellState) String() string {
	if s == Occupied {
		return "occupied"
	}
	return "free"
}

// Cell addresses one grid cell
type Cell struct {
	X, Y int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Add returns the cell offset by dx, dy
func (c Cell) Add(dx, dy int) Cell {
	return Cell{X: c.X + dx, Y: c.Y + dy}
}

type cell struct {
	mu    sync.Mutex
	state CellState
}

// Grid is a fixed Columns x Rows occupancy table
type Grid struct {
	snap  sync.RWMutex
	cols  int
	rows  int
	cells []cell
}

// New creates a grid with every cell free
func New(cols, rows int) *Grid {
	if cols <= 0 || rows <= 0 {
		panic(fmt.Sprintf("grid: invalid size %dx%d", cols, rows))
	}
	return &Grid{
		cols:  cols,
		rows:  rows,
		cells: make([]cell, cols*rows),
	}
}

// Columns returns the horizontal cell count
func (g *Grid) Columns() int { return g.cols }

// Rows returns the vertical cell count
func (g *Grid) Rows() int { return g.rows }

// Size returns the total cell count
func (g *Grid) Size() int { return g.cols * g.rows }

// InBounds reports whether c addresses a cell of this grid
func (g *Grid) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < g.cols && c.Y >= 0 && c.Y < g.rows
}

func (g *Grid) at(c Cell) *cell {
	return &g.cells[c.Y*g.cols+c.X]
}

// claimLocked requires the read lock
func (g *Grid) claimLocked(c Cell) bool {
	if !g.InBounds(c) {
		return false
	}
	cl := g.at(c)
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.state == Occupied {
		return false
	}
	cl.state = Occupied
	return true
}

// releaseLocked requires the read lock
func (g *Grid) releaseLocked(c Cell) {
	if !g.InBounds(c) {
		return
	}
	cl := g.at(c)
	cl.mu.Lock()
	cl.state = Free
	cl.mu.Unlock()
}

// TryClaim atomically claims a free cell; false if held or out of bounds
func (g *Grid) TryClaim(c Cell) bool {
	g.snap.RLock()
	defer g.snap.RUnlock()
	return g.claimLocked(c)
}

// Release frees a cell unconditionally
func (g *Grid) Release(c Cell) {
	g.snap.RLock()
	defer g.snap.RUnlock()
	g.releaseLocked(c)
}

// IsFree reports whether c is in bounds and free, without mutating it
func (g *Grid) IsFree(c Cell) bool {
	if !g.InBounds(c) {
		return false
	}
	g.snap.RLock()
	defer g.snap.RUnlock()

	cl := g.at(c)
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return cl.state == Free
}

// Move transfers ownership from one cell to another.
// The destination is claimed before the source is released and the two cell
// locks are never held together, so opposite moves cannot deadlock.
// Returns false without side effects when the destination is held.
func (g *Grid) Move(from, to Cell) bool {
	g.snap.RLock()
	defer g.snap.RUnlock()

	if !g.claimLocked(to) {
		return false
	}
	g.releaseLocked(from)
	return true
}

// Occupied returns the number of occupied cells as one consistent reading
func (g *Grid) Occupied() int {
	g.snap.Lock()
	defer g.snap.Unlock()

	n := 0
	for i := range g.cells {
		if g.cells[i].state == Occupied {
			n++
		}
	}
	return n
}

// Snapshot returns a row-major copy of every cell state
func (g *Grid) Snapshot() [][]CellState {
	g.snap.Lock()
	defer g.snap.Unlock()

	out := make([][]CellState, g.rows)
	for y := 0; y < g.rows; y++ {
		out[y] = make([]CellState, g.cols)
		for x := 0; x < g.cols; x++ {
			out[y][x] = g.cells[y*g.cols+x].state
		}
	}
	return out
}

// Reset frees every cell
func (g *Grid) Reset() {
	g.snap.Lock()
	defer g.snap.Unlock()

	for i := range g.cells {
		g.cells[i].state = Free
	}
}
