// Package collision tests the crosshair reach against cube cells.
package collision

import "github.com/lixenwraith/cube-hunter/grid"

// Rect is an axis-aligned pixel rectangle
type Rect struct {
	X, Y, W, H int
}

// CellBounds returns the pixel rectangle covered by a grid cell
func CellBounds(c grid.Cell, cellW, cellH int) Rect {
	return Rect{X: c.X * cellW, Y: c.Y * cellH, W: cellW, H: cellH}
}

// Hit reports whether the square reach [x-r, x+r] x [y-r, y+r] overlaps the rectangle.
// Edges are inclusive on both axes
func Hit(cell Rect, x, y, r int) bool {
	return x+r >= cell.X && x-r <= cell.X+cell.W &&
		y+r >= cell.Y && y-r <= cell.Y+cell.H
}
