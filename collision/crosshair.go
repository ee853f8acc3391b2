package collision

import "sync"

// Crosshair is the shared aiming point in field pixels and its reach radius
type Crosshair struct {
	mu     sync.RWMutex
	x, y   int
	radius int
	epoch  uint64
}

// CrosshairState is a consistent copy of the crosshair
type CrosshairState struct {
	X, Y   int
	Radius int
	Epoch  uint64
}

// NewCrosshair places the crosshair at (x, y) with the given reach
func NewCrosshair(x, y, radius int) *Crosshair {
	return &Crosshair{x: x, y: y, radius: radius}
}

// Position returns the current aiming point
func (c *Crosshair) Position() (x, y int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.x, c.y
}

// SetPosition moves the aiming point
func (c *Crosshair) SetPosition(x, y int) {
	c.mu.Lock()
	c.x, c.y = x, y
	c.mu.Unlock()
}

// Radius returns the current reach
func (c *Crosshair) Radius() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.radius
}

// SetRadius changes the reach
func (c *Crosshair) SetRadius(r int) {
	c.mu.Lock()
	c.radius = r
	c.mu.Unlock()
}

// Recenter resets position and reach and bumps the epoch so position writers resync
func (c *Crosshair) Recenter(x, y, radius int) {
	c.mu.Lock()
	c.x, c.y, c.radius = x, y, radius
	c.epoch++
	c.mu.Unlock()
}

// Epoch returns the recenter count
func (c *Crosshair) Epoch() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch
}

// Snapshot copies all fields under one lock
func (c *Crosshair) Snapshot() CrosshairState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CrosshairState{X: c.x, Y: c.y, Radius: c.radius, Epoch: c.epoch}
}

// Hits tests the crosshair against a cell rectangle
func (c *Crosshair) Hits(cell Rect) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Hit(cell, c.x, c.y, c.radius)
}
