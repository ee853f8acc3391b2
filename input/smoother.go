package input

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Smoother eases the displayed crosshair toward the integrated position.
// Each new target restarts a short out-quad tween from wherever the crosshair is
type Smoother struct {
	duration float32
	x, y     *gween.Tween
	curX     float32
	curY     float32
}

// NewSmoother creates a smoother; a non-positive duration disables easing
func NewSmoother(d time.Duration) *Smoother {
	return &Smoother{duration: float32(d.Seconds())}
}

// Jump places the smoother at (x, y) with no tween in flight
func (s *Smoother) Jump(x, y int) {
	s.curX, s.curY = float32(x), float32(y)
	s.x, s.y = nil, nil
}

// Retarget starts easing toward (x, y)
func (s *Smoother) Retarget(x, y int) {
	if s.duration <= 0 {
		s.Jump(x, y)
		return
	}
	s.x = gween.New(s.curX, float32(x), s.duration, ease.OutQuad)
	s.y = gween.New(s.curY, float32(y), s.duration, ease.OutQuad)
}

// Advance moves the tweens forward by dt and returns the rounded position
func (s *Smoother) Advance(dt time.Duration) (x, y int) {
	step := float32(dt.Seconds())
	if s.x != nil {
		v, done := s.x.Update(step)
		s.curX = v
		if done {
			s.x = nil
		}
	}
	if s.y != nil {
		v, done := s.y.Update(step)
		s.curY = v
		if done {
			s.y = nil
		}
	}
	return round(s.curX), round(s.curY)
}

func round(v float32) int {
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}
