package viz

import (
	"github.com/guptarohit/asciigraph"
)

// EnergyPlot renders the total-energy history as a terminal graph.
func EnergyPlot(energy []float64, width, height int) string {
	if len(energy) == 0 {
		return "(no data)"
	}
	return asciigraph.Plot(downsample(energy, width),
		asciigraph.Height(height),
		asciigraph.Caption("total energy"))
}

// MomentumPlot renders the total-momentum history.
func MomentumPlot(momentum []float64, width, height int) string {
	if len(momentum) == 0 {
		return "(no data)"
	}
	return asciigraph.Plot(downsample(momentum, width),
		asciigraph.Height(height),
		asciigraph.Caption("total momentum"))
}

// downsample thins a series to at most max points, keeping the ends.
func downsample(data []float64, max int) []float64 {
	if max <= 0 || len(data) <= max {
		return data
	}
	out := make([]float64, 0, max)
	step := float64(len(data)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		out = append(out, data[int(float64(i)*step)])
	}
	return out
}
