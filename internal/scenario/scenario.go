// Package scenario builds the initial body sets the simulation starts
// from. Builders are deterministic for a given seed so runs can be
// replayed exactly.
package scenario

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/san-kum/gravlab/internal/body"
)

// Builder returns an ordered list of body specs. The order matters: it
// becomes the store's iteration order.
type Builder func(rng *rand.Rand) []body.Spec

var builders = map[string]Builder{
	"solar":    Solar,
	"binary":   Binary,
	"galaxies": Galaxies,
	"impact":   Impact,
	"random":   Random,
}

// Names lists the available scenarios, sorted.
func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build constructs the named scenario with the given seed.
func Build(name string, seed int64) ([]body.Spec, error) {
	b, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("scenario: unknown scenario %q", name)
	}
	return b(rand.New(rand.NewSource(seed))), nil
}

// circularSpeed is the speed of a circular orbit of radius dist around a
// central mass, with G = 1.
func circularSpeed(centralMass, dist float64) float64 {
	return math.Sqrt(centralMass / dist)
}

// Solar is a simplified solar system: a heavy sun at the origin and eight
// planets on circular orbits.
func Solar(_ *rand.Rand) []body.Spec {
	const sunMass = 5000.0
	specs := []body.Spec{
		{Name: "Sun", Color: "#ffff64", Mass: sunMass, Radius: 40},
	}

	planets := []struct {
		name   string
		dist   float64
		mass   float64
		radius float64
		color  string
	}{
		{"Mercury", 100, 8, 6, "#a9a9a9"},
		{"Venus", 140, 12, 8, "#ffc649"},
		{"Earth", 180, 15, 10, "#6495ed"},
		{"Mars", 240, 10, 7, "#cd5c5c"},
		{"Jupiter", 320, 50, 25, "#ffa54f"},
		{"Saturn", 400, 40, 20, "#fae690"},
		{"Uranus", 500, 30, 15, "#40e0d0"},
		{"Neptune", 600, 32, 13, "#1e90ff"},
	}
	for _, p := range planets {
		specs = append(specs, body.Spec{
			Name:   p.name,
			Color:  p.color,
			Mass:   p.mass,
			Radius: p.radius,
			X:      p.dist,
			VY:     circularSpeed(sunMass, p.dist),
		})
	}
	return specs
}

// Binary is two stars orbiting their barycenter with three circumbinary
// planets.
func Binary(_ *rand.Rand) []body.Spec {
	const (
		massA      = 150.0
		massB      = 120.0
		separation = 100.0
		orbitSpeed = 2.0
	)
	total := massA + massB

	specs := []body.Spec{
		{Name: "Star A", Color: "#ffc864", Mass: massA, Radius: 25,
			X: -separation * massB / total, VY: orbitSpeed * massB / total},
		{Name: "Star B", Color: "#ff9696", Mass: massB, Radius: 22,
			X: separation * massA / total, VY: -orbitSpeed * massA / total},
	}

	planets := []struct {
		dist, mass, radius float64
		name               string
	}{
		{200, 30, 12, "Planet I"},
		{280, 40, 15, "Planet II"},
		{380, 25, 10, "Planet III"},
	}
	for i, p := range planets {
		specs = append(specs, body.Spec{
			Name:   p.name,
			Color:  "#6495ed",
			Mass:   p.mass,
			Radius: p.radius,
			X:      p.dist,
			VY:     1.5 - float64(i)*0.3,
		})
	}
	return specs
}

// Galaxies is two star clusters on a collision course, each around a
// central black hole, stars laid out on loose spiral arms.
func Galaxies(rng *rand.Rand) []body.Spec {
	specs := []body.Spec{
		{Name: "Black Hole 1", Color: "#323232", Mass: 500, Radius: 20,
			X: -200, VX: 0.5},
		{Name: "Black Hole 2", Color: "#1e1e1e", Mass: 500, Radius: 20,
			X: 200, VX: -0.5},
	}

	clusters := []struct {
		cx, cy, vx, rotation float64
		color                string
	}{
		{-200, 0, 0.5, 0.02, "#6464ff"},
		{200, 0, -0.5, -0.02, "#ff6464"},
	}
	for g, c := range clusters {
		for i := 0; i < 25; i++ {
			angle := rng.Float64() * 2 * math.Pi
			dist := 20 + rng.Float64()*130
			spiral := angle + dist*0.02
			orbital := c.rotation * dist
			specs = append(specs, body.Spec{
				Name:   fmt.Sprintf("Star G%d-%d", g+1, i+1),
				Color:  c.color,
				Mass:   25,
				Radius: 8,
				X:      c.cx + dist*math.Cos(spiral),
				Y:      c.cy + dist*math.Sin(spiral),
				VX:     c.vx - orbital*math.Sin(spiral),
				VY:     orbital * math.Cos(spiral),
			})
		}
	}
	return specs
}

// Impact is a stationary planet with an orbiting debris field and an
// inbound asteroid.
func Impact(rng *rand.Rand) []body.Spec {
	specs := []body.Spec{
		{Name: "Planet", Color: "#6496ff", Mass: 100, Radius: 25},
		{Name: "Asteroid", Color: "#966432", Mass: 50, Radius: 12,
			X: -300, Y: -100, VX: 8, VY: 3},
	}

	for i := 0; i < 15; i++ {
		angle := rng.Float64() * 2 * math.Pi
		dist := 40 + rng.Float64()*40
		speed := circularSpeed(100, dist) * 0.5
		specs = append(specs, body.Spec{
			Name:   fmt.Sprintf("Debris-%d", i+1),
			Color:  "#967850",
			Mass:   2,
			Radius: 5,
			X:      dist * math.Cos(angle),
			Y:      dist * math.Sin(angle),
			VX:     -speed * math.Sin(angle),
			VY:     speed * math.Cos(angle),
		})
	}
	return specs
}

// Random scatters bodies with normally distributed positions, masses,
// and velocities.
func Random(rng *rand.Rand) []body.Spec {
	const n = 24
	specs := make([]body.Spec, 0, n)
	for i := 0; i < n; i++ {
		mass := math.Abs(rng.NormFloat64()*30 + 50)
		if mass < 1 {
			mass = 1
		}
		specs = append(specs, body.Spec{
			Name:   fmt.Sprintf("Body-%d", i+1),
			Color:  "#c8c8c8",
			Mass:   mass,
			Radius: 5 + mass/10,
			X:      rng.NormFloat64() * 250,
			Y:      rng.NormFloat64() * 250,
			VX:     rng.NormFloat64() * 0.5,
			VY:     rng.NormFloat64() * 0.5,
		})
	}
	return specs
}
