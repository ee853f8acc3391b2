// Package status holds lock-free game counters shared by the engine, input and telemetry.
package status

import "sync/atomic"

// Metric keys written by the engine and input pipeline
const (
	Rounds        = "engine.rounds"
	Signals       = "engine.signals"
	Completions   = "engine.completions"
	Throttles     = "engine.throttles"
	Hits          = "engine.hits"
	Expired       = "engine.expired"
	CohortSize    = "engine.cohort_size"
	CohortExits   = "engine.cohort_exits"
	Repopulations = "engine.repopulations"
	RestartExits  = "engine.restart_exits"
	Restarts      = "engine.restarts"
	GameOvers     = "engine.game_overs"

	InputSamples = "input.samples"
	InputLost    = "input.lost"
	JitterMaxMs  = "input.jitter_max_ms"

	RunID = "session.run"

	Frozen    = "powerup.frozen"
	AimAssist = "powerup.aim"
	SpeedMod  = "powerup.speed"

	Headless = "app.headless"
)

// Registry is the central metrics facade
// Components cache pointers at construction; hot paths write atomics directly
type Registry struct {
	Bools   *MetricMap[atomic.Bool]
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewMetricMap[atomic.Bool](),
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}

// Snapshot copies the metrics under a key prefix, such as "engine.", into a plain map.
// An empty prefix copies everything
func (r *Registry) Snapshot(prefix string) map[string]any {
	out := make(map[string]any)
	r.Bools.Range(prefix, func(k string, p *atomic.Bool) { out[k] = p.Load() })
	r.Ints.Range(prefix, func(k string, p *atomic.Int64) { out[k] = p.Load() })
	r.Floats.Range(prefix, func(k string, p *AtomicFloat) { out[k] = p.Get() })
	r.Strings.Range(prefix, func(k string, p *AtomicString) { out[k] = p.Load() })
	return out
}

// ResetInts zeroes the named counters, used when a run is rebuilt
func (r *Registry) ResetInts(keys ...string) {
	for _, k := range keys {
		r.Ints.Get(k).Store(0)
	}
}
