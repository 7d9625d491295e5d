package joint

import (
	"github.com/san-kum/gearsim/internal/body"
	"github.com/san-kum/gearsim/internal/solver"
	"gonum.org/v1/gonum/spatial/r3"
)

// Revolute allows rotation of body2 relative to body1 about one hinge axis.
// Its coupled axis is the relative angular velocity about the hinge.
type Revolute struct {
	frame
	Motor Motor
}

// NewRevolute hinges b2 on b1 about axis, given in both body frames.
func NewRevolute(b1, b2 body.Handle, axis r3.Vec) *Revolute {
	a := unitOr(axis, r3.Vec{Z: 1})
	return &Revolute{frame: frame{Body1: b1, Body2: b2, Axis1: a, Axis2: a}}
}

func (r *Revolute) WithAnchors(local1, local2 r3.Vec) *Revolute {
	r.Anchor1, r.Anchor2 = local1, local2
	return r
}

// WithAxes sets distinct hinge axes for each body frame.
func (r *Revolute) WithAxes(local1, local2 r3.Vec) *Revolute {
	r.Axis1 = unitOr(local1, r3.Vec{Z: 1})
	r.Axis2 = unitOr(local2, r.Axis1)
	return r
}

// WithMotorVelocity enables a damped velocity motor on the coupled axis.
func (r *Revolute) WithMotorVelocity(target, damping float64) *Revolute {
	r.Motor.Enabled = true
	r.Motor.TargetVel = target
	r.Motor.Damping = damping
	return r
}

func (r *Revolute) WithMotorMaxForce(maxForce float64) *Revolute {
	r.Motor.MaxForce = maxForce
	return r
}

func (r *Revolute) Kind() string                       { return "revolute" }
func (r *Revolute) Bodies() (body.Handle, body.Handle) { return r.Body1, r.Body2 }
func (r *Revolute) MotorState() Motor                  { return r.Motor }

func (r *Revolute) BuildRows(bodies body.View, dt float64, p Params, asm solver.Assembler) {
	ps, ok := r.resolve(bodies)
	if !ok {
		return
	}
	for _, n := range worldAxes {
		asm.Add(ps.pointRow(n, dt, p.ERP))
	}

	err := r3.Cross(ps.a1, ps.a2)
	t1, t2 := basis(ps.a1)
	asm.Add(ps.angularRow(t1, err, dt, p.ERP))
	asm.Add(ps.angularRow(t2, err, dt, p.ERP))

	if row, ok := motorRow(r.Motor, ps.hinge(), dt); ok {
		asm.Add(row)
	}
}

func (r *Revolute) CoupledAxis(bodies body.View) (solver.Jacobian, bool) {
	ps, ok := r.resolve(bodies)
	if !ok {
		return nil, false
	}
	return ps.hinge(), true
}

func (r *Revolute) CoupledAxisVelocity(bodies body.View) float64 {
	ps, ok := r.resolve(bodies)
	if !ok {
		return 0
	}
	return r3.Dot(r3.Sub(ps.b2.AngVel, ps.b1.AngVel), ps.a1)
}

func (p pose) hinge() solver.Jacobian {
	return solver.Jacobian{
		{Body: p.b1, Ang: r3.Scale(-1, p.a1)},
		{Body: p.b2, Ang: p.a1},
	}
}
