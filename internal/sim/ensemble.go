package sim

import (
	"context"
	"sync"

	"github.com/san-kum/gravlab/internal/body"
	"github.com/san-kum/gravlab/internal/engine"
	"github.com/san-kum/gravlab/internal/scenario"
)

// Ensemble runs the same scenario across a range of seeds, one engine per
// run. Each run owns its store, so the runs can go in parallel without
// touching the single-writer rule inside any one engine.
type Ensemble struct {
	Scenario  string
	Params    engine.Params
	NumRuns   int
	SeedStart int64
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.NumRuns)
	errs := make([]error, e.NumRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.NumRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			specs, err := scenario.Build(e.Scenario, e.SeedStart+int64(idx))
			if err != nil {
				errs[idx] = err
				return
			}
			eng := engine.New(body.NewStore(), e.Params)
			if err := eng.Populate(specs); err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = NewRunner(eng).Run(ctx, cfg)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
