package metrics

import (
	"math"

	"github.com/san-kum/gearsim/internal/world"
)

// Stability is the fraction of steps in which every live link residual stayed
// within threshold and no link was dangling.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(w *world.World, stats world.StepStats) {
	s.samples++
	if stats.Dangling > 0 {
		s.violations++
		return
	}
	for _, src := range w.Links().Sources() {
		if r, ok := w.LinkResidual(src); ok && math.Abs(r) > s.threshold {
			s.violations++
			return
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
