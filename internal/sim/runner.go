// Package sim drives an engine through a fixed-step headless run,
// fanning observations out to recorders and trackers.
package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/gravlab/internal/body"
	"github.com/san-kum/gravlab/internal/engine"
)

// Observer receives the post-step state of every frame. Observers must
// not mutate the bodies.
type Observer interface {
	OnStep(frame int, bodies []*body.Body, m engine.Metrics)
}

type Config struct {
	Dt     float64
	Frames int
}

// Result is the recorded history of a run.
type Result struct {
	StepsTaken  int
	Times       []float64
	Energy      []float64
	Momentum    []float64
	BodyCounts  []int
	EnergyDrift float64
}

type Runner struct {
	eng       *engine.Engine
	observers []Observer
}

func NewRunner(eng *engine.Engine) *Runner {
	return &Runner{eng: eng}
}

func (r *Runner) AddObserver(o Observer) {
	r.observers = append(r.observers, o)
}

// Run steps the engine cfg.Frames times, recording metrics after every
// step. Cancellation via ctx returns the partial result with the context
// error.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Dt <= 0 {
		return nil, fmt.Errorf("sim: dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Frames <= 0 {
		return nil, fmt.Errorf("sim: frames must be positive, got %d", cfg.Frames)
	}

	result := &Result{
		Times:      make([]float64, 0, cfg.Frames),
		Energy:     make([]float64, 0, cfg.Frames),
		Momentum:   make([]float64, 0, cfg.Frames),
		BodyCounts: make([]int, 0, cfg.Frames),
	}

	initial := r.eng.Metrics().TotalEnergy

	for frame := 0; frame < cfg.Frames; frame++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if err := r.eng.Step(cfg.Dt); err != nil {
			return result, err
		}
		result.StepsTaken++

		m := r.eng.Metrics()
		result.Times = append(result.Times, m.Elapsed)
		result.Energy = append(result.Energy, m.TotalEnergy)
		result.Momentum = append(result.Momentum, m.TotalMomentum)
		result.BodyCounts = append(result.BodyCounts, m.BodyCount)

		if len(r.observers) > 0 {
			bodies := r.eng.Store().All()
			for _, o := range r.observers {
				o.OnStep(frame, bodies, m)
			}
		}
	}

	final := r.eng.Metrics().TotalEnergy
	if initial != 0 {
		result.EnergyDrift = abs(final-initial) / abs(initial)
	}
	return result, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
