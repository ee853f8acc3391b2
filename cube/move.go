package cube

import (
	"github.com/lixenwraith/cube-hunter/core"
	"github.com/lixenwraith/cube-hunter/grid"
	"github.com/lixenwraith/cube-hunter/rng"
)

// MovableLocked reports which neighbor cells are free. Queries only, no claims
// Caller holds the cube lock
func (c *Cube) MovableLocked(g *grid.Grid) (valid [directionCount]bool, total int) {
	for _, d := range Directions {
		dx, dy := d.Delta()
		if g.IsFree(c.Pos.Add(dx, dy)) {
			valid[d] = true
			total++
		}
	}
	return valid, total
}

// ChooseHeading keeps the current heading if valid, otherwise picks uniformly among
// valid directions. total must be positive; a selection miss is a fatal fault
func ChooseHeading(current Direction, valid [directionCount]bool, total int, r *rng.Generator) Direction {
	if valid[current] {
		return current
	}

	n := r.Intn(total)
	for _, d := range Directions {
		if !valid[d] {
			continue
		}
		n--
		if n < 0 {
			return d
		}
	}
	core.Fatal("Couldn't find dir", "")
	return current
}

// StepLocked advances the cube one cell along a valid heading.
// A destination claimed by another cube between query and claim is retried,
// up to maxTries; running out or finding no free neighbor leaves the cube in place.
// Caller holds the cube lock. Returns whether the cube moved.
func (c *Cube) StepLocked(g *grid.Grid, r *rng.Generator, maxTries int) bool {
	for try := 0; try < maxTries; try++ {
		valid, total := c.MovableLocked(g)
		if total == 0 {
			return false
		}
		c.Heading = ChooseHeading(c.Heading, valid, total, r)

		dx, dy := c.Heading.Delta()
		next := c.Pos.Add(dx, dy)
		if g.Move(c.Pos, next) {
			c.Pos = next
			return true
		}
	}
	return false
}
