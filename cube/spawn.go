package cube

import (
	"fmt"

	"github.com/lixenwraith/cube-hunter/core"
	"github.com/lixenwraith/cube-hunter/grid"
	"github.com/lixenwraith/cube-hunter/rng"
)

// Weight is one row of the spawn probability table
type Weight struct {
	Kind   PowerUp
	Weight int
}

// SpawnTable picks a power-up for a new cube from weighted rows
type SpawnTable struct {
	rows  []Weight
	total int
}

// DefaultWeights is one slot in ten for each power-up kind, none otherwise
var DefaultWeights = []Weight{
	{Life, 1},
	{AimAssist, 1},
	{SpeedUp, 1},
	{Freeze, 1},
	{SlowDown, 1},
	{None, 5},
}

// NewSpawnTable validates and builds a table
func NewSpawnTable(rows []Weight) (*SpawnTable, error) {
	st := &SpawnTable{}
	for _, r := range rows {
		if r.Weight < 0 {
			return nil, fmt.Errorf("negative weight %d for %s", r.Weight, r.Kind)
		}
		if r.Weight == 0 {
			continue
		}
		st.rows = append(st.rows, r)
		st.total += r.Weight
	}
	if st.total == 0 {
		return nil, fmt.Errorf("spawn table has no positive weight")
	}
	return st, nil
}

// Total returns the sum of weights
func (st *SpawnTable) Total() int { return st.total }

// Pick maps a draw to a kind
func (st *SpawnTable) Pick(draw uint32) PowerUp {
	slot := int(draw % uint32(st.total))
	for _, r := range st.rows {
		if slot < r.Weight {
			return r.Kind
		}
		slot -= r.Weight
	}
	return None
}

// Spawner places new cubes on the grid
type Spawner struct {
	Grid        *grid.Grid
	RNG         *rng.Generator
	Table       *SpawnTable
	MaxLifetime int
	MaxAttempts int
}

// Spawn places one cube on a random free cell.
// Exhausting the attempt budget means the RNG or grid state is corrupt and is fatal.
func (s *Spawner) Spawn(id int) *Cube {
	var pos grid.Cell
	attempt := 0
	for {
		pos = grid.Cell{
			X: s.RNG.Intn(s.Grid.Columns()),
			Y: s.RNG.Intn(s.Grid.Rows()),
		}
		if attempt > s.MaxAttempts {
			core.Fatal("Ran out of attempts", "RNG is broken")
		}
		attempt++
		if s.Grid.TryClaim(pos) {
			break
		}
	}

	c := &Cube{
		ID:      id,
		Pos:     pos,
		Alive:   true,
		Heading: Directions[s.RNG.Intn(int(directionCount))],
	}
	c.Lifetime = 1 + s.RNG.Intn(s.MaxLifetime-1)
	c.PowerUp = s.Table.Pick(s.RNG.Next())
	c.Color = c.PowerUp.Color()
	return c
}

// SpawnCohort places n cubes with consecutive ids starting at firstID
func (s *Spawner) SpawnCohort(firstID, n int) []*Cube {
	cubes := make([]*Cube, 0, n)
	for i := 0; i < n; i++ {
		cubes = append(cubes, s.Spawn(firstID+i))
	}
	return cubes
}
