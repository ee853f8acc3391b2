// Package powerup applies timed power-up effects and reverts them on expiry.
package powerup

import (
	"sync/atomic"

	"github.com/lixenwraith/cube-hunter/collision"
)

// Modifiers is the live effect state read by the input pipeline and coordinators
type Modifiers struct {
	speed  atomic.Int32
	frozen atomic.Bool

	crosshair   *collision.Crosshair
	baseRadius  int
	largeRadius int
}

// NewModifiers binds the aim-assist effect to a crosshair
func NewModifiers(ch *collision.Crosshair, baseRadius, largeRadius int) *Modifiers {
	return &Modifiers{crosshair: ch, baseRadius: baseRadius, largeRadius: largeRadius}
}

// Speed returns the cursor speed shift: positive is faster, negative slower
func (m *Modifiers) Speed() int { return int(m.speed.Load()) }

// Frozen reports whether cubes are stopped
func (m *Modifiers) Frozen() bool { return m.frozen.Load() }

// BaseRadius returns the normal crosshair reach
func (m *Modifiers) BaseRadius() int { return m.baseRadius }

func (m *Modifiers) setSpeed(v int) { m.speed.Store(int32(v)) }

func (m *Modifiers) setFrozen(v bool) { m.frozen.Store(v) }

func (m *Modifiers) setAim(on bool) {
	if m.crosshair == nil {
		return
	}
	if on {
		m.crosshair.SetRadius(m.largeRadius)
	} else {
		m.crosshair.SetRadius(m.baseRadius)
	}
}

func (m *Modifiers) revertAll() {
	m.setSpeed(0)
	m.setFrozen(false)
	m.setAim(false)
}
