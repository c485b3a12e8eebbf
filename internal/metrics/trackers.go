// Package metrics tracks derived conservation quantities across a run.
// Trackers are diagnostics only; nothing here feeds back into the
// physics.
package metrics

import (
	"math"

	"github.com/san-kum/gravlab/internal/body"
	"github.com/san-kum/gravlab/internal/engine"
)

// Tracker accumulates one scalar diagnostic over a run.
type Tracker interface {
	Name() string
	Observe(m engine.Metrics)
	Value() float64
	Reset()
}

// EnergyDrift tracks the maximum relative deviation of total energy from
// its first observed value. Mergers are inelastic, so drift here measures
// integrator error only for runs without collisions.
type EnergyDrift struct {
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift() *EnergyDrift { return &EnergyDrift{} }

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(m engine.Metrics) {
	if e.samples == 0 {
		e.initial = m.TotalEnergy
	}
	e.samples++
	if e.initial != 0 {
		drift := math.Abs(m.TotalEnergy-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}

// MomentumDrift tracks the maximum absolute deviation of total momentum
// magnitude from its first observed value. Both gravity and merging
// conserve momentum, so this should stay near zero for any run.
type MomentumDrift struct {
	initial  float64
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift { return &MomentumDrift{} }

func (t *MomentumDrift) Name() string { return "momentum_drift" }

func (t *MomentumDrift) Observe(m engine.Metrics) {
	if t.samples == 0 {
		t.initial = m.TotalMomentum
	}
	t.samples++
	t.maxDrift = math.Max(t.maxDrift, math.Abs(m.TotalMomentum-t.initial))
}

func (t *MomentumDrift) Value() float64 { return t.maxDrift }

func (t *MomentumDrift) Reset() {
	t.initial = 0
	t.maxDrift = 0
	t.samples = 0
}

// MergeCount reports the engine's cumulative merge counter at the last
// observation.
type MergeCount struct {
	merges int
}

func NewMergeCount() *MergeCount { return &MergeCount{} }

func (c *MergeCount) Name() string             { return "merges" }
func (c *MergeCount) Observe(m engine.Metrics) { c.merges = m.Merges }
func (c *MergeCount) Value() float64           { return float64(c.merges) }
func (c *MergeCount) Reset()                   { c.merges = 0 }

// Adapter lets a set of trackers observe a run as a sim.Observer.
type Adapter struct {
	Trackers []Tracker
}

func (a *Adapter) OnStep(_ int, _ []*body.Body, m engine.Metrics) {
	for _, t := range a.Trackers {
		t.Observe(m)
	}
}

// Values collects tracker values by name.
func (a *Adapter) Values() map[string]float64 {
	out := make(map[string]float64, len(a.Trackers))
	for _, t := range a.Trackers {
		out[t.Name()] = t.Value()
	}
	return out
}
