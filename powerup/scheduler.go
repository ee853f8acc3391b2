package powerup

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/cube-hunter/cube"
	"github.com/lixenwraith/cube-hunter/status"
)

// Category groups power-ups that share one timer; a newer pickup supersedes an older one
type Category uint8

const (
	Aim Category = iota
	Speed
	Freeze
	categoryCount
)

func (c Category) String() string {
	switch c {
	case Aim:
		return "aim"
	case Speed:
		return "speed"
	case Freeze:
		return "freeze"
	}
	return "unknown"
}

// CategoryOf maps a timed power-up to its category; ok is false for untimed kinds
func CategoryOf(p cube.PowerUp) (cat Category, ok bool) {
	switch p {
	case cube.AimAssist:
		return Aim, true
	case cube.SpeedUp, cube.SlowDown:
		return Speed, true
	case cube.Freeze:
		return Freeze, true
	}
	return 0, false
}

// Durations configures how long each category stays active
type Durations struct {
	Aim    time.Duration
	Speed  time.Duration
	Freeze time.Duration
}

func (d Durations) of(cat Category) time.Duration {
	switch cat {
	case Aim:
		return d.Aim
	case Speed:
		return d.Speed
	default:
		return d.Freeze
	}
}

// Scheduler arms and cancels effect timers with per-category generation tokens
type Scheduler struct {
	mu     sync.Mutex
	mods   *Modifiers
	dur    Durations
	gens   [categoryCount]uint64
	timers [categoryCount]*time.Timer
	active [categoryCount]bool
	log    *logrus.Entry

	frozen *atomic.Bool
	aim    *atomic.Bool
	speed  *atomic.Int64
}

// NewScheduler creates a scheduler driving mods and mirroring them into reg.
// A nil reg gets a private registry
func NewScheduler(mods *Modifiers, dur Durations, reg *status.Registry, log *logrus.Entry) *Scheduler {
	if reg == nil {
		reg = status.NewRegistry()
	}
	return &Scheduler{
		mods:   mods,
		dur:    dur,
		log:    log,
		frozen: reg.Bools.Get(status.Frozen),
		aim:    reg.Bools.Get(status.AimAssist),
		speed:  reg.Ints.Get(status.SpeedMod),
	}
}

// publish mirrors the modifiers into the metrics. Caller holds s.mu
func (s *Scheduler) publish() {
	s.frozen.Store(s.mods.Frozen())
	s.aim.Store(s.active[Aim])
	s.speed.Store(int64(s.mods.Speed()))
}

// Modifiers returns the state this scheduler drives
func (s *Scheduler) Modifiers() *Modifiers { return s.mods }

// Apply starts the effect of a timed power-up. Life and None are not handled here
// Returns false for kinds without a timed effect
func (s *Scheduler) Apply(p cube.PowerUp) bool {
	cat, ok := CategoryOf(p)
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.gens[cat]++
	gen := s.gens[cat]
	if t := s.timers[cat]; t != nil {
		t.Stop()
	}

	switch p {
	case cube.AimAssist:
		s.mods.setAim(true)
	case cube.SpeedUp:
		s.mods.setSpeed(1)
	case cube.SlowDown:
		s.mods.setSpeed(-1)
	case cube.Freeze:
		s.mods.setFrozen(true)
	}
	s.active[cat] = true
	s.timers[cat] = time.AfterFunc(s.dur.of(cat), func() { s.expire(cat, gen) })
	s.publish()

	if s.log != nil {
		s.log.WithFields(logrus.Fields{"powerup": p.String(), "gen": gen}).Debug("power-up activated")
	}
	return true
}

// expire reverts a category unless a newer activation replaced it
func (s *Scheduler) expire(cat Category, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gens[cat] != gen {
		return
	}
	switch cat {
	case Aim:
		s.mods.setAim(false)
	case Speed:
		s.mods.setSpeed(0)
	case Freeze:
		s.mods.setFrozen(false)
	}
	s.active[cat] = false
	s.timers[cat] = nil
	s.publish()
}

// Reset stops every timer, invalidates every token and reverts all modifiers
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for cat := Category(0); cat < categoryCount; cat++ {
		if t := s.timers[cat]; t != nil {
			t.Stop()
		}
		s.timers[cat] = nil
		s.gens[cat]++
		s.active[cat] = false
	}
	s.mods.revertAll()
	s.publish()
}

// Generation returns the current token of a category
func (s *Scheduler) Generation(cat Category) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[cat]
}

// Active reports whether a category's effect is in force
func (s *Scheduler) Active(cat Category) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active[cat]
}
