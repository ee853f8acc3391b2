package input

import (
	"math/rand/v2"
	"sync"

	"github.com/lixenwraith/cube-hunter/collision"
)

// TargetSource lists the pixel rectangles of live cubes
type TargetSource func() []collision.Rect

// Autopilot is a headless sampler that steers toward the nearest live cube.
// Wobble adds a bounded random error so the bot misses occasionally
type Autopilot struct {
	mu      sync.Mutex
	aim     Positioner
	targets TargetSource
	gain    int
	wobble  int
	rnd     *rand.Rand
}

// NewAutopilot creates a bot; baseSpeed must match the pipeline's so full tilt covers a step
func NewAutopilot(aim Positioner, targets TargetSource, baseSpeed, wobble int, seed uint64) *Autopilot {
	return &Autopilot{
		aim:     aim,
		targets: targets,
		gain:    AxisCenter / max(baseSpeed, 1),
		wobble:  wobble,
		rnd:     rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
	}
}

// Sample steers toward the center of the closest target
func (a *Autopilot) Sample() (Raw, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	x, y := a.aim.Position()
	best, found := 0, false
	var tx, ty int
	for _, r := range a.targets() {
		cx, cy := r.X+r.W/2, r.Y+r.H/2
		d := (cx-x)*(cx-x) + (cy-y)*(cy-y)
		if !found || d < best {
			best, tx, ty, found = d, cx, cy, true
		}
	}
	if !found {
		return Raw{X: AxisCenter, Y: AxisCenter}, nil
	}

	if a.wobble > 0 {
		tx += a.rnd.IntN(2*a.wobble+1) - a.wobble
		ty += a.rnd.IntN(2*a.wobble+1) - a.wobble
	}
	return Raw{
		X: clampAxis(AxisCenter + (tx-x)*a.gain),
		Y: clampAxis(AxisCenter + (y-ty)*a.gain),
	}, nil
}
