// Package metrics summarises simulation runs. Every metric observes the world
// after each step and reduces what it saw to one number.
package metrics

import (
	"math"

	"github.com/san-kum/gearsim/internal/world"
)

// TrackingError is the RMS residual v_source - sign*ratio*v_target over every
// live motion link and step. Dangling links are not counted.
type TrackingError struct {
	name    string
	sumSq   float64
	samples int
}

func NewTrackingError() *TrackingError {
	return &TrackingError{name: "tracking_error"}
}

func (m *TrackingError) Name() string { return m.name }

func (m *TrackingError) Observe(w *world.World, _ world.StepStats) {
	for _, src := range w.Links().Sources() {
		r, ok := w.LinkResidual(src)
		if !ok {
			continue
		}
		m.sumSq += r * r
		m.samples++
	}
}

func (m *TrackingError) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return math.Sqrt(m.sumSq / float64(m.samples))
}

func (m *TrackingError) Reset() {
	m.sumSq = 0
	m.samples = 0
}
