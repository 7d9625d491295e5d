package metrics

import (
	"github.com/san-kum/gearsim/internal/world"
)

// Effort is the mean force (impulse per second) spent by one row kind.
type Effort struct {
	name    string
	pick    func(world.StepStats) float64
	sum     float64
	samples int
}

// NewMotorEffort averages the force all motors apply.
func NewMotorEffort() *Effort {
	return &Effort{
		name: "motor_effort",
		pick: func(s world.StepStats) float64 { return s.MotorImpulse },
	}
}

// NewLinkLoad averages the force motion links apply to hold their ratios.
func NewLinkLoad() *Effort {
	return &Effort{
		name: "link_load",
		pick: func(s world.StepStats) float64 { return s.LinkImpulse },
	}
}

func (c *Effort) Name() string {
	return c.name
}

func (c *Effort) Observe(w *world.World, stats world.StepStats) {
	c.sum += c.pick(stats) / w.Config().Dt
	c.samples++
}

func (c *Effort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *Effort) Reset() {
	c.sum = 0
	c.samples = 0
}
