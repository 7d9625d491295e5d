package sim

import (
	"github.com/san-kum/gearsim/internal/joint"
	"github.com/san-kum/gearsim/internal/world"
)

// Track names a joint whose coupled-axis velocity is sampled every step.
type Track struct {
	Name  string
	Joint joint.Handle
}

// Sample holds one tracked velocity per Track, in track order. A joint that
// no longer resolves samples as NaN.
type Sample struct {
	Time       float64
	Velocities []float64
}

type Metric interface {
	Name() string
	Observe(w *world.World, stats world.StepStats)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(w *world.World, sample Sample, stats world.StepStats)
}

type Result struct {
	Tracks     []string
	Samples    []Sample
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// Series returns the velocity trace of track i.
func (r *Result) Series(i int) []float64 {
	out := make([]float64, len(r.Samples))
	for k, s := range r.Samples {
		out[k] = s.Velocities[i]
	}
	return out
}

// Final returns the last sample, or false when nothing was recorded.
func (r *Result) Final() (Sample, bool) {
	if len(r.Samples) == 0 {
		return Sample{}, false
	}
	return r.Samples[len(r.Samples)-1], true
}
