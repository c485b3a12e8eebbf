package engine

import "errors"

// ErrInvalidTimestep indicates a non-positive or non-finite dt. The step
// is rejected before any state changes.
var ErrInvalidTimestep = errors.New("engine: invalid timestep")
