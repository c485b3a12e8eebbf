package body

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Body is a single gravitating disc. Position and velocity are in world
// units; Mass and Radius must stay positive for as long as the body lives.
// Name and Color are display metadata and never touched by the physics.
type Body struct {
	ID     uint64
	Name   string
	Color  string
	Mass   float64
	Radius float64
	Pos    r2.Vec
	Vel    r2.Vec

	// Trail holds recent positions, oldest first. Rendering aid only.
	Trail []r2.Vec
}

// Spec describes a body to be created. It carries no identity; the store
// assigns one on Add.
type Spec struct {
	Name   string  `yaml:"name"`
	Color  string  `yaml:"color"`
	Mass   float64 `yaml:"mass"`
	Radius float64 `yaml:"radius"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	VX     float64 `yaml:"vx"`
	VY     float64 `yaml:"vy"`
}

// Validate checks the physical constraints a live body must satisfy.
func (s Spec) Validate() error {
	if s.Mass <= 0 || math.IsNaN(s.Mass) || math.IsInf(s.Mass, 0) {
		return fmt.Errorf("%w: mass %v", ErrInvalidBody, s.Mass)
	}
	if s.Radius <= 0 || math.IsNaN(s.Radius) || math.IsInf(s.Radius, 0) {
		return fmt.Errorf("%w: radius %v", ErrInvalidBody, s.Radius)
	}
	for _, v := range []float64{s.X, s.Y, s.VX, s.VY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite position/velocity", ErrInvalidBody)
		}
	}
	return nil
}

// Patch is a partial update applied to a live body. Nil fields are left
// untouched. Mass and Radius revalidate the same constraints as Add.
type Patch struct {
	Name   *string
	Color  *string
	Mass   *float64
	Radius *float64
	Pos    *r2.Vec
	Vel    *r2.Vec
}

// PushTrail appends p to the trail, evicting the oldest entry when the
// trail is at max.
func (b *Body) PushTrail(p r2.Vec, max int) {
	if max <= 0 {
		return
	}
	b.Trail = append(b.Trail, p)
	if len(b.Trail) > max {
		b.Trail = b.Trail[1:]
	}
}

// Speed returns |velocity|.
func (b *Body) Speed() float64 {
	return r2.Norm(b.Vel)
}

// KineticEnergy returns ½ m |v|².
func (b *Body) KineticEnergy() float64 {
	return 0.5 * b.Mass * r2.Norm2(b.Vel)
}

// Momentum returns m·v.
func (b *Body) Momentum() r2.Vec {
	return r2.Scale(b.Mass, b.Vel)
}

// DistanceTo returns the Euclidean distance to other.
func (b *Body) DistanceTo(other *Body) float64 {
	return r2.Norm(r2.Sub(other.Pos, b.Pos))
}

func (b *Body) String() string {
	return fmt.Sprintf("%s#%d m=%.4g r=%.4g p=[%.2f, %.2f] v=[%.2f, %.2f]",
		b.Name, b.ID, b.Mass, b.Radius, b.Pos.X, b.Pos.Y, b.Vel.X, b.Vel.Y)
}
