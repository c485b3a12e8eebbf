package engine

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Metrics is a read-only snapshot of derived simulation quantities,
// refreshed after every step. It feeds displays and diagnostics only and
// never loops back into the physics.
type Metrics struct {
	Elapsed       float64 `json:"elapsed"`
	BodyCount     int     `json:"body_count"`
	TotalEnergy   float64 `json:"total_energy"`
	TotalMomentum float64 `json:"total_momentum"`
	CenterOfMass  r2.Vec  `json:"center_of_mass"`
	AverageSpeed  float64 `json:"average_speed"`
	Merges        int     `json:"merges"`
	Paused        bool    `json:"paused"`
}

// Metrics returns the snapshot computed at the end of the last step (or
// at construction).
func (e *Engine) Metrics() Metrics {
	m := e.metrics
	m.Paused = e.paused
	return m
}

// refreshMetrics recomputes the cached snapshot from the store. Potential
// energy uses the same distance floor as force accumulation so the two
// stay consistent near close encounters.
func (e *Engine) refreshMetrics() {
	bodies := e.store.All()
	m := Metrics{
		Elapsed:   e.elapsed,
		BodyCount: len(bodies),
		Merges:    e.merges,
	}

	var momentum r2.Vec
	var weighted r2.Vec
	var totalMass, speedSum float64
	for i, bi := range bodies {
		m.TotalEnergy += bi.KineticEnergy()
		momentum = r2.Add(momentum, bi.Momentum())
		weighted = r2.Add(weighted, r2.Scale(bi.Mass, bi.Pos))
		totalMass += bi.Mass
		speedSum += bi.Speed()

		for j := i + 1; j < len(bodies); j++ {
			bj := bodies[j]
			sep := bi.DistanceTo(bj)
			if sep < e.params.MinDistance {
				sep = e.params.MinDistance
			}
			m.TotalEnergy -= e.params.G * bi.Mass * bj.Mass / sep
		}
	}

	m.TotalMomentum = r2.Norm(momentum)
	if totalMass > 0 {
		m.CenterOfMass = r2.Scale(1/totalMass, weighted)
	}
	if len(bodies) > 0 {
		m.AverageSpeed = speedSum / float64(len(bodies))
	}
	e.metrics = m
}
