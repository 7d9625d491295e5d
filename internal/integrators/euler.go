// Package integrators advances rigid bodies between solver passes.
package integrators

import (
	"github.com/san-kum/gearsim/internal/body"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Integrator splits a step around the velocity solve: forces first, then
// positions from the solved velocities.
type Integrator interface {
	IntegrateVelocities(bodies *body.Set, gravity r3.Vec, dt float64)
	IntegratePositions(bodies *body.Set, dt float64)
}

// SymplecticEuler is semi-implicit Euler: v += a*dt, then x += v*dt.
type SymplecticEuler struct{}

func NewSymplecticEuler() *SymplecticEuler {
	return &SymplecticEuler{}
}

func (e *SymplecticEuler) IntegrateVelocities(bodies *body.Set, gravity r3.Vec, dt float64) {
	dv := r3.Scale(dt, gravity)
	bodies.Each(func(_ body.Handle, b *body.Body) {
		if !b.IsDynamic() {
			return
		}
		b.LinVel = r3.Add(b.LinVel, dv)
	})
}

func (e *SymplecticEuler) IntegratePositions(bodies *body.Set, dt float64) {
	bodies.Each(func(_ body.Handle, b *body.Body) {
		if !b.IsDynamic() {
			return
		}
		b.Position = r3.Add(b.Position, r3.Scale(dt, b.LinVel))

		// dq/dt = 0.5 * w * q
		w := quat.Number{Imag: b.AngVel.X, Jmag: b.AngVel.Y, Kmag: b.AngVel.Z}
		dq := quat.Scale(0.5*dt, quat.Mul(w, b.Orientation))
		b.Orientation = body.Normalize(quat.Add(b.Orientation, dq))
	})
}
