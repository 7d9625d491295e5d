package metrics

import (
	"github.com/san-kum/gearsim/internal/body"
	"github.com/san-kum/gearsim/internal/world"
)

// KineticEnergy is the mean total kinetic energy of all bodies per step.
type KineticEnergy struct {
	name    string
	total   float64
	peak    float64
	samples int
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(w *world.World, _ world.StepStats) {
	ke := 0.0
	w.Bodies().Each(func(_ body.Handle, b *body.Body) {
		ke += b.KineticEnergy()
	})
	e.total += ke
	e.peak = max(e.peak, ke)
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

// Peak returns the largest per-step energy observed.
func (e *KineticEnergy) Peak() float64 { return e.peak }

func (e *KineticEnergy) Reset() {
	e.total = 0
	e.peak = 0
	e.samples = 0
}
