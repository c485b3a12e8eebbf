package engine

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravlab/internal/body"
)

// Params are the numerical-stability knobs of the engine. The defaults
// keep galaxy-scale scenarios stable at dt around 0.01-0.1.
type Params struct {
	// G is the gravitational constant in simulation units.
	G float64
	// MinDistance is the floor substituted into force and potential
	// formulas so near-zero separations cannot diverge.
	MinDistance float64
	// MaxForce caps the net accumulated force magnitude per body.
	MaxForce float64
	// MaxSpeed and MaxCoord bound velocity and position norms after
	// integration.
	MaxSpeed float64
	MaxCoord float64
	// CollisionThreshold scales the sum of radii for overlap tests.
	// Must be below 1 so collisions need visible overlap.
	CollisionThreshold float64
	// TrailLength caps each body's position history.
	TrailLength int
}

func DefaultParams() Params {
	return Params{
		G:                  1.0,
		MinDistance:        1.0,
		MaxForce:           1e12,
		MaxSpeed:           1e6,
		MaxCoord:           1e6,
		CollisionThreshold: 0.8,
		TrailLength:        100,
	}
}

// Engine advances a body store through discrete time steps: pairwise
// gravity, semi-implicit integration, inelastic collision merging and the
// stability clamps that keep all of it finite.
//
// The engine holds no state of its own beyond elapsed time and counters;
// everything physical lives in the store. Not safe for concurrent use.
type Engine struct {
	store   *body.Store
	params  Params
	paused  bool
	elapsed float64
	merges  int
	metrics Metrics
}

func New(store *body.Store, params Params) *Engine {
	e := &Engine{store: store, params: params}
	e.refreshMetrics()
	return e
}

func (e *Engine) Store() *body.Store { return e.store }
func (e *Engine) Params() Params     { return e.params }

func (e *Engine) Pause()       { e.paused = true }
func (e *Engine) Resume()      { e.paused = false }
func (e *Engine) Paused() bool { return e.paused }

// Reset clears the store, elapsed time and the merge counter.
func (e *Engine) Reset() {
	e.store.Clear()
	e.elapsed = 0
	e.merges = 0
	e.refreshMetrics()
}

// Populate adds specs to the store in order. Fails on the first invalid
// spec, leaving the earlier ones in place.
func (e *Engine) Populate(specs []body.Spec) error {
	for _, s := range specs {
		if _, err := e.store.Add(s); err != nil {
			return err
		}
	}
	e.refreshMetrics()
	return nil
}

// Step advances the simulation by dt. dt must be positive and finite;
// anything else is a caller bug and rejected with ErrInvalidTimestep
// before the store is touched. Numerical trouble inside the step (near
// singular separations, overflow, NaN) is clamped or repaired locally and
// never surfaces as an error.
//
// A paused engine steps to a no-op.
func (e *Engine) Step(dt float64) error {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: dt=%v", ErrInvalidTimestep, dt)
	}
	if e.paused {
		return nil
	}

	bodies := e.store.All()
	forces := e.accumulateForces(bodies)
	e.clampForces(forces)
	prev := e.integrate(bodies, forces, dt)
	e.repair(bodies, prev)
	e.resolveCollisions()
	e.updateTrails()

	e.elapsed += dt
	e.refreshMetrics()
	return nil
}

// accumulateForces sums pairwise Newtonian attraction over every unordered
// pair, in store order, applying each pair force with opposite signs.
// Separations below MinDistance use the floor, so the magnitude never
// diverges; exactly coincident bodies have no defined direction and
// contribute nothing.
func (e *Engine) accumulateForces(bodies []*body.Body) []r2.Vec {
	forces := make([]r2.Vec, len(bodies))
	for i, bi := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			bj := bodies[j]
			d := r2.Sub(bj.Pos, bi.Pos)
			dist := r2.Norm(d)
			if dist == 0 {
				continue
			}
			sep := math.Max(dist, e.params.MinDistance)
			mag := e.params.G * bi.Mass * bj.Mass / (sep * sep)
			f := r2.Scale(mag/dist, d)
			forces[i] = r2.Add(forces[i], f)
			forces[j] = r2.Sub(forces[j], f)
		}
	}
	return forces
}

// clampForces caps each body's net force magnitude at MaxForce. This is
// the second safety net behind the distance floor, catching the spikes a
// three-body near-coincidence can still produce.
func (e *Engine) clampForces(forces []r2.Vec) {
	for i, f := range forces {
		mag := r2.Norm(f)
		if mag > e.params.MaxForce {
			forces[i] = r2.Scale(e.params.MaxForce/mag, f)
		}
	}
}

// integrate applies the semi-implicit velocity-then-position update. The
// position update uses the already-updated velocity, which bounds long-run
// energy drift for orbital motion in a way forward Euler does not.
// Returns the pre-step positions for the repair pass.
func (e *Engine) integrate(bodies []*body.Body, forces []r2.Vec, dt float64) []r2.Vec {
	prev := make([]r2.Vec, len(bodies))
	for i, b := range bodies {
		prev[i] = b.Pos
		b.Vel = r2.Add(b.Vel, r2.Scale(dt/b.Mass, forces[i]))
		b.Pos = r2.Add(b.Pos, r2.Scale(dt, b.Vel))
	}
	return prev
}

// repair corrects any body whose state went non-finite during integration
// and clamps runaway norms. A single corrupted body must not poison the
// rest of the simulation, so velocity is zeroed and position falls back to
// its last finite value instead of the NaN propagating.
func (e *Engine) repair(bodies []*body.Body, prev []r2.Vec) {
	for i, b := range bodies {
		if !finite(b.Vel) {
			b.Vel = r2.Vec{}
		}
		if speed := r2.Norm(b.Vel); speed > e.params.MaxSpeed {
			b.Vel = r2.Scale(e.params.MaxSpeed/speed, b.Vel)
		}
		if !finite(b.Pos) {
			b.Pos = prev[i]
			b.Vel = r2.Vec{}
		}
		if norm := r2.Norm(b.Pos); norm > e.params.MaxCoord {
			b.Pos = r2.Scale(e.params.MaxCoord/norm, b.Pos)
		}
	}
}

// resolveCollisions merges every overlapping pair inelastically. Pairs are
// collected in store order and a body merges at most once per step: a pair
// whose member was already consumed this step is skipped. The higher-mass
// body survives (earlier in store order on a tie), at the mass-weighted
// centroid, with momentum-conserving velocity and a volume-conserving
// radius. The survivor's trail is reset.
func (e *Engine) resolveCollisions() {
	bodies := e.store.All()

	type hit struct{ a, b *body.Body }
	var hits []hit
	for i, bi := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			bj := bodies[j]
			if bi.DistanceTo(bj) < (bi.Radius+bj.Radius)*e.params.CollisionThreshold {
				hits = append(hits, hit{bi, bj})
			}
		}
	}

	consumed := make(map[uint64]bool, 2*len(hits))
	for _, h := range hits {
		if consumed[h.a.ID] || consumed[h.b.ID] {
			continue
		}
		winner, loser := h.a, h.b
		if loser.Mass > winner.Mass {
			winner, loser = loser, winner
		}
		merge(winner, loser)
		consumed[winner.ID] = true
		consumed[loser.ID] = true
		e.store.Remove(loser.ID)
		e.merges++
	}
}

// merge folds loser into winner: summed mass, momentum-conserving
// velocity, mass-weighted centroid position, cbrt volume-conserving
// radius.
func merge(winner, loser *body.Body) {
	total := winner.Mass + loser.Mass
	winner.Vel = r2.Scale(1/total, r2.Add(winner.Momentum(), loser.Momentum()))
	winner.Pos = r2.Add(r2.Scale(winner.Mass/total, winner.Pos), r2.Scale(loser.Mass/total, loser.Pos))
	winner.Radius = math.Cbrt(math.Pow(winner.Radius, 3) + math.Pow(loser.Radius, 3))
	winner.Mass = total
	winner.Trail = winner.Trail[:0]
}

func (e *Engine) updateTrails() {
	for _, b := range e.store.All() {
		b.PushTrail(b.Pos, e.params.TrailLength)
	}
}

func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}
