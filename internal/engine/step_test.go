package engine_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravlab/internal/body"
	"github.com/san-kum/gravlab/internal/engine"
	"github.com/san-kum/gravlab/internal/scenario"
)

func newEngine(specs ...body.Spec) *engine.Engine {
	store := body.NewStore()
	eng := engine.New(store, engine.DefaultParams())
	ExpectWithOffset(1, eng.Populate(specs)).To(Succeed())
	return eng
}

func finiteBody(b *body.Body) bool {
	for _, v := range []float64{b.Pos.X, b.Pos.Y, b.Vel.X, b.Vel.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

var _ = Describe("Step", func() {
	Describe("timestep validation", func() {
		var eng *engine.Engine

		BeforeEach(func() {
			eng = newEngine(body.Spec{Name: "a", Mass: 5, Radius: 1, X: 0})
		})

		It("rejects non-positive and non-finite dt without touching the store", func() {
			before := eng.Store().All()[0].Pos
			for _, dt := range []float64{0, -0.1, math.NaN(), math.Inf(1)} {
				Expect(eng.Step(dt)).To(MatchError(engine.ErrInvalidTimestep))
			}
			Expect(eng.Store().All()[0].Pos).To(Equal(before))
			Expect(eng.Metrics().Elapsed).To(BeZero())
		})

		It("is a no-op while paused", func() {
			eng.Pause()
			Expect(eng.Step(0.1)).To(Succeed())
			Expect(eng.Metrics().Elapsed).To(BeZero())
			eng.Resume()
			Expect(eng.Step(0.1)).To(Succeed())
			Expect(eng.Metrics().Elapsed).To(BeNumerically("~", 0.1, 1e-12))
		})
	})

	Describe("finiteness", func() {
		It("keeps every component finite through violent configurations", func() {
			eng := newEngine(
				body.Spec{Name: "a", Mass: 1e9, Radius: 5, X: 0.3},
				body.Spec{Name: "b", Mass: 1e9, Radius: 5, X: -0.3, VX: 1e5},
				body.Spec{Name: "c", Mass: 1e-6, Radius: 1, Y: 0.1},
				body.Spec{Name: "d", Mass: 1e9, Radius: 5, Y: 1e5},
			)
			for i := 0; i < 200; i++ {
				Expect(eng.Step(0.1)).To(Succeed())
			}
			for _, b := range eng.Store().All() {
				Expect(finiteBody(b)).To(BeTrue(), "body %s went non-finite", b.Name)
			}
		})

		It("zeroes a velocity corrupted between steps instead of propagating it", func() {
			eng := newEngine(
				body.Spec{Name: "a", Mass: 5, Radius: 1, X: 0},
				body.Spec{Name: "b", Mass: 5, Radius: 1, X: 50},
			)
			victim := eng.Store().All()[0]
			victim.Vel = r2.Vec{X: math.NaN(), Y: math.NaN()}

			Expect(eng.Step(0.01)).To(Succeed())
			Expect(finiteBody(victim)).To(BeTrue())
		})
	})

	Describe("force safeguards", func() {
		It("bounds the force on coincident bodies by the ceiling", func() {
			eng := newEngine(
				body.Spec{Name: "a", Mass: 1e30, Radius: 1, X: 10, Y: 10},
				body.Spec{Name: "b", Mass: 1e30, Radius: 1, X: 10, Y: 10},
			)
			Expect(eng.Step(0.01)).To(Succeed())
			for _, b := range eng.Store().All() {
				Expect(finiteBody(b)).To(BeTrue())
				// dv = F/m * dt, so the ceiling bounds the velocity kick
				maxKick := eng.Params().MaxForce / 1e30 * 0.01
				Expect(b.Speed()).To(BeNumerically("<=", maxKick+eng.Params().MaxSpeed))
			}
		})

		It("applies the distance floor instead of diverging at tiny separations", func() {
			eng := newEngine(
				body.Spec{Name: "a", Mass: 1000, Radius: 0.01, X: 0},
				body.Spec{Name: "b", Mass: 1000, Radius: 0.01, X: 1e-9},
			)
			Expect(eng.Step(0.001)).To(Succeed())
			for _, b := range eng.Store().All() {
				Expect(finiteBody(b)).To(BeTrue())
			}
		})
	})

	Describe("conservation", func() {
		It("conserves momentum in an isolated two-body system", func() {
			eng := newEngine(
				body.Spec{Name: "a", Mass: 100, Radius: 1, X: -50, VY: 0.3},
				body.Spec{Name: "b", Mass: 80, Radius: 1, X: 50, VY: -0.4},
			)
			initial := eng.Metrics().TotalMomentum
			for i := 0; i < 500; i++ {
				Expect(eng.Step(0.01)).To(Succeed())
			}
			Expect(eng.Metrics().BodyCount).To(Equal(2), "bodies must not have collided")
			Expect(eng.Metrics().TotalMomentum).To(BeNumerically("~", initial, 1e-9))
		})

		It("conserves mass and momentum through a merge", func() {
			const m1, m2 = 10.0, 5.0
			v1 := r2.Vec{X: 1, Y: 0.5}
			v2 := r2.Vec{X: -2, Y: 0.25}
			eng := newEngine(
				body.Spec{Name: "heavy", Mass: m1, Radius: 4, X: 0, VX: v1.X, VY: v1.Y},
				body.Spec{Name: "light", Mass: m2, Radius: 4, X: 1, VX: v2.X, VY: v2.Y},
			)

			Expect(eng.Step(1e-6)).To(Succeed())

			Expect(eng.Store().Len()).To(Equal(1))
			survivor := eng.Store().All()[0]
			Expect(survivor.Name).To(Equal("heavy"))
			Expect(survivor.Mass).To(BeNumerically("~", m1+m2, 1e-12))

			want := r2.Scale(1/(m1+m2), r2.Add(r2.Scale(m1, v1), r2.Scale(m2, v2)))
			Expect(survivor.Vel.X).To(BeNumerically("~", want.X, 1e-9))
			Expect(survivor.Vel.Y).To(BeNumerically("~", want.Y, 1e-9))
		})
	})

	Describe("collisions", func() {
		It("merges an overlapping pair on the next step", func() {
			eng := newEngine(
				body.Spec{Name: "a", Mass: 10, Radius: 10, X: 0},
				body.Spec{Name: "b", Mass: 10, Radius: 10, X: 12},
			)
			// distance 12 < (10+10)*0.8
			Expect(eng.Step(1e-6)).To(Succeed())
			Expect(eng.Store().Len()).To(Equal(1))
			Expect(eng.Metrics().Merges).To(Equal(1))
		})

		It("does not merge a pair short of the overlap threshold", func() {
			eng := newEngine(
				body.Spec{Name: "a", Mass: 10, Radius: 10, X: 0},
				body.Spec{Name: "b", Mass: 10, Radius: 10, X: 17},
			)
			// distance 17 > (10+10)*0.8
			Expect(eng.Step(1e-6)).To(Succeed())
			Expect(eng.Store().Len()).To(Equal(2))
		})

		It("lets a body merge at most once per step", func() {
			// three bodies in a row, all mutually overlapping: the first
			// pair in store order merges, the third body waits a step
			eng := newEngine(
				body.Spec{Name: "a", Mass: 10, Radius: 10, X: 0},
				body.Spec{Name: "b", Mass: 10, Radius: 10, X: 5},
				body.Spec{Name: "c", Mass: 10, Radius: 10, X: 10},
			)
			Expect(eng.Step(1e-6)).To(Succeed())
			Expect(eng.Store().Len()).To(Equal(2))
			Expect(eng.Step(1e-6)).To(Succeed())
			Expect(eng.Store().Len()).To(Equal(1))
		})

		It("keeps the heavier body and resets its trail", func() {
			eng := newEngine(
				body.Spec{Name: "light", Mass: 1, Radius: 5, X: 0},
				body.Spec{Name: "heavy", Mass: 100, Radius: 5, X: 4},
			)
			heavy := eng.Store().All()[1]
			heavy.PushTrail(r2.Vec{X: -1}, 10)

			Expect(eng.Step(1e-6)).To(Succeed())
			survivor := eng.Store().All()[0]
			Expect(survivor.Name).To(Equal("heavy"))
			// trail reset, then one fresh point appended this step
			Expect(len(survivor.Trail)).To(Equal(1))
		})

		It("grows the radius volume-conservingly", func() {
			eng := newEngine(
				body.Spec{Name: "a", Mass: 10, Radius: 3, X: 0},
				body.Spec{Name: "b", Mass: 10, Radius: 4, X: 1},
			)
			Expect(eng.Step(1e-6)).To(Succeed())
			want := math.Cbrt(3*3*3 + 4*4*4)
			Expect(eng.Store().All()[0].Radius).To(BeNumerically("~", want, 1e-12))
		})
	})

	Describe("trails", func() {
		It("appends one position per step and honors the cap", func() {
			params := engine.DefaultParams()
			params.TrailLength = 5
			store := body.NewStore()
			eng := engine.New(store, params)
			Expect(eng.Populate([]body.Spec{{Name: "a", Mass: 5, Radius: 1, VX: 1}})).To(Succeed())

			for i := 0; i < 12; i++ {
				Expect(eng.Step(0.1)).To(Succeed())
			}
			b := store.All()[0]
			Expect(len(b.Trail)).To(Equal(5))
			Expect(b.Trail[4]).To(Equal(b.Pos))
		})
	})

	Describe("determinism", func() {
		It("reproduces trajectories bit for bit from the same start", func() {
			run := func() []r2.Vec {
				specs, err := scenario.Build("galaxies", 42)
				Expect(err).NotTo(HaveOccurred())
				eng := engine.New(body.NewStore(), engine.DefaultParams())
				Expect(eng.Populate(specs)).To(Succeed())
				for i := 0; i < 200; i++ {
					Expect(eng.Step(0.05)).To(Succeed())
				}
				var out []r2.Vec
				for _, b := range eng.Store().All() {
					out = append(out, b.Pos, b.Vel)
				}
				return out
			}

			first := run()
			second := run()
			Expect(second).To(HaveLen(len(first)))
			for i := range first {
				Expect(second[i]).To(Equal(first[i]), "component %d diverged", i)
			}
		})
	})

	Describe("integration error", func() {
		It("makes two half steps land near, not exactly on, one full step", func() {
			build := func() *engine.Engine {
				return newEngine(
					body.Spec{Name: "sun", Mass: 1000, Radius: 1, X: 0},
					body.Spec{Name: "p", Mass: 1, Radius: 1, X: 100, VY: math.Sqrt(10)},
				)
			}

			full := build()
			Expect(full.Step(0.02)).To(Succeed())

			halved := build()
			Expect(halved.Step(0.01)).To(Succeed())
			Expect(halved.Step(0.01)).To(Succeed())

			pFull := full.Store().All()[1].Pos
			pHalved := halved.Store().All()[1].Pos
			diff := r2.Norm(r2.Sub(pFull, pHalved))
			// first-order scheme: close but not identical
			Expect(diff).To(BeNumerically("<", 1e-3))
		})
	})

	Describe("orbital stability", func() {
		It("returns a light satellite near its start after one period", func() {
			const (
				centralMass = 1000.0
				orbitRadius = 100.0
			)
			vOrbit := math.Sqrt(centralMass / orbitRadius) // G = 1
			period := 2 * math.Pi * orbitRadius / vOrbit
			steps := 20000
			dt := period / float64(steps)

			eng := newEngine(
				body.Spec{Name: "sun", Mass: centralMass, Radius: 1, X: 0},
				body.Spec{Name: "p", Mass: 1, Radius: 1, X: orbitRadius, VY: vOrbit},
			)
			for i := 0; i < steps; i++ {
				Expect(eng.Step(dt)).To(Succeed())
			}

			p := eng.Store().All()[1].Pos
			Expect(p.X).To(BeNumerically("~", orbitRadius, 10))
			Expect(p.Y).To(BeNumerically("~", 0, 10))
		})
	})

	Describe("metrics", func() {
		It("computes energy and momentum over the store", func() {
			eng := newEngine(
				body.Spec{Name: "a", Mass: 2, Radius: 1, X: -10, VX: 3},
				body.Spec{Name: "b", Mass: 4, Radius: 1, X: 10, VX: -1},
			)
			m := eng.Metrics()

			ke := 0.5*2*9 + 0.5*4*1
			pe := -2.0 * 4.0 / 20.0
			Expect(m.TotalEnergy).To(BeNumerically("~", ke+pe, 1e-12))
			Expect(m.TotalMomentum).To(BeNumerically("~", 2.0, 1e-12)) // |2*3 - 4*1|
			Expect(m.BodyCount).To(Equal(2))
			Expect(m.CenterOfMass.X).To(BeNumerically("~", (2*-10+4*10)/6.0, 1e-12))
		})

		It("uses the distance floor in the potential term", func() {
			eng := newEngine(
				body.Spec{Name: "a", Mass: 10, Radius: 0.01, X: 0},
				body.Spec{Name: "b", Mass: 10, Radius: 0.01, X: 1e-12},
			)
			m := eng.Metrics()
			// floored at MinDistance=1: PE = -G*10*10/1
			Expect(m.TotalEnergy).To(BeNumerically("~", -100, 1e-9))
		})
	})
})
