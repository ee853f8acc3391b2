// Package input turns analog samples into crosshair motion and queues them for consumers.
package input

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/cube-hunter/collision"
	"github.com/lixenwraith/cube-hunter/status"
)

// SpeedSource supplies the current cursor speed shift
type SpeedSource interface {
	Speed() int
}

// Field bounds crosshair motion
type Field struct {
	Width, Height int
	// Size is the crosshair arm length kept clear of the bottom edge
	Size int
}

// PipelineConfig wires a pipeline
type PipelineConfig struct {
	Sampler   Sampler
	Crosshair *collision.Crosshair
	Speed     SpeedSource
	Queue     *Queue
	Period    time.Duration
	Smoothing time.Duration
	BaseSpeed int
	Field     Field
	Buckets   int
	Registry  *status.Registry
	Log       *logrus.Entry
}

// Pipeline samples the stick periodically, integrates motion into the crosshair,
// and offers each result to the queue
type Pipeline struct {
	cfg      PipelineConfig
	smoother *Smoother
	jitter   *Jitter

	// Producer-owned state
	origin     [2]int
	calibrated bool
	x, y       int
	epoch      uint64
	synced     bool

	mu      sync.Mutex // guards paused
	paused  bool
	samples *atomic.Int64
	lost    *atomic.Int64
	jmax    *status.AtomicFloat
}

// NewPipeline creates a pipeline; Run starts it
func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.Registry == nil {
		cfg.Registry = status.NewRegistry()
	}
	if cfg.Log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		cfg.Log = logrus.NewEntry(l)
	}
	if cfg.Buckets <= 0 {
		cfg.Buckets = 64
	}
	return &Pipeline{
		cfg:      cfg,
		smoother: NewSmoother(cfg.Smoothing),
		jitter:   NewJitter(cfg.Period, cfg.Buckets),
		samples:  cfg.Registry.Ints.Get(status.InputSamples),
		lost:     cfg.Registry.Ints.Get(status.InputLost),
		jmax:     cfg.Registry.Floats.Get(status.JitterMaxMs),
	}
}

// Calibrate fixes the rest position of the stick
func (p *Pipeline) Calibrate(r Raw) {
	p.origin = [2]int{int(r.X), int(r.Y)}
	if p.origin[0] == 0 {
		p.origin[0] = AxisCenter
	}
	if p.origin[1] == 0 {
		p.origin[1] = AxisCenter
	}
	p.calibrated = true
}

// Jitter exposes interval statistics
func (p *Pipeline) Jitter() *Jitter { return p.jitter }

// Run samples every period until ctx is done or the sampler closes
func (p *Pipeline) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.Period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if err := p.Step(now); err != nil {
				if errors.Is(err, ErrSamplerClosed) {
					return nil
				}
				p.cfg.Log.WithError(err).Warn("input sample failed")
			}
		}
	}
}

// Step takes one sample at time now
func (p *Pipeline) Step(now time.Time) error {
	raw, err := p.cfg.Sampler.Sample()
	if err != nil {
		return fmt.Errorf("sample: %w", err)
	}
	if !p.calibrated {
		p.Calibrate(raw)
	}

	if d := p.jitter.Observe(now); d > 0 {
		p.jmax.Max(float64(d) / float64(time.Millisecond))
	}

	p.resync()

	speed := 0
	if p.cfg.Speed != nil {
		speed = p.cfg.Speed.Speed()
	}
	dx, dy := p.delta(raw, speed)
	p.x, p.y = p.clamp(p.x+dx, p.y+dy)

	p.smoother.Retarget(p.x, p.y)
	sx, sy := p.smoother.Advance(p.cfg.Period)
	if !p.Paused() {
		p.cfg.Crosshair.SetPosition(sx, sy)
	}

	p.samples.Add(1)
	if !p.cfg.Queue.Offer(Sample{X: sx, Y: sy, DX: dx, DY: dy, Button: raw.Button}) {
		p.lost.Add(1)
	}
	return nil
}

// SetPaused stops crosshair writes while screens other than the field are shown.
// Samples keep flowing to the queue
func (p *Pipeline) SetPaused(v bool) {
	p.mu.Lock()
	p.paused = v
	p.mu.Unlock()
}

// Paused reports whether crosshair writes are suspended
func (p *Pipeline) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// ResetStats clears jitter and loss statistics for a new game
func (p *Pipeline) ResetStats() {
	p.jitter.Reset()
	p.jmax.Set(0)
	p.lost.Store(0)
	p.cfg.Queue.ResetLost()
}

// resync adopts the crosshair position after a recenter
func (p *Pipeline) resync() {
	epoch := p.cfg.Crosshair.Epoch()
	if p.synced && epoch == p.epoch {
		return
	}
	p.x, p.y = p.cfg.Crosshair.Position()
	p.smoother.Jump(p.x, p.y)
	p.epoch = epoch
	p.synced = true
}

// delta scales deflection from the rest position by the base speed shifted by the modifier
func (p *Pipeline) delta(r Raw, speed int) (dx, dy int) {
	scale := p.cfg.BaseSpeed
	if speed > 0 {
		scale <<= speed
	} else if speed < 0 {
		scale >>= -speed
	}
	dx = (int(r.X) - p.origin[0]) * scale / p.origin[0]
	dy = (p.origin[1] - int(r.Y)) * scale / p.origin[1]
	return dx, dy
}

func (p *Pipeline) clamp(x, y int) (int, int) {
	f := p.cfg.Field
	x = min(max(x, 0), f.Width-1)
	y = min(max(y, 0), f.Height-f.Size)
	return x, y
}
