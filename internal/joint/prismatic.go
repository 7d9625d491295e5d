package joint

import (
	"github.com/san-kum/gearsim/internal/body"
	"github.com/san-kum/gearsim/internal/solver"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Prismatic allows body2 to slide relative to body1 along one axis with no
// relative rotation. Its coupled axis is the relative linear velocity of the
// anchors along the slide axis.
type Prismatic struct {
	frame
	Motor Motor

	rest    quat.Number // body1-relative orientation of body2 at first use
	restSet bool
}

func NewPrismatic(b1, b2 body.Handle, axis r3.Vec) *Prismatic {
	a := unitOr(axis, r3.Vec{X: 1})
	return &Prismatic{frame: frame{Body1: b1, Body2: b2, Axis1: a, Axis2: a}}
}

func (p *Prismatic) WithAnchors(local1, local2 r3.Vec) *Prismatic {
	p.Anchor1, p.Anchor2 = local1, local2
	return p
}

// WithMotorVelocity enables a damped velocity motor on the coupled axis.
func (p *Prismatic) WithMotorVelocity(target, damping float64) *Prismatic {
	p.Motor.Enabled = true
	p.Motor.TargetVel = target
	p.Motor.Damping = damping
	return p
}

func (p *Prismatic) WithMotorMaxForce(maxForce float64) *Prismatic {
	p.Motor.MaxForce = maxForce
	return p
}

func (p *Prismatic) Kind() string                       { return "prismatic" }
func (p *Prismatic) Bodies() (body.Handle, body.Handle) { return p.Body1, p.Body2 }
func (p *Prismatic) MotorState() Motor                  { return p.Motor }

func (p *Prismatic) BuildRows(bodies body.View, dt float64, prm Params, asm solver.Assembler) {
	ps, ok := p.resolve(bodies)
	if !ok {
		return
	}
	if !p.restSet {
		p.rest = quat.Mul(quat.Conj(ps.b1.Orientation), ps.b2.Orientation)
		p.restSet = true
	}

	t1, t2 := basis(ps.a1)
	asm.Add(ps.pointRow(t1, dt, prm.ERP))
	asm.Add(ps.pointRow(t2, dt, prm.ERP))

	want := quat.Mul(ps.b1.Orientation, p.rest)
	qe := quat.Mul(ps.b2.Orientation, quat.Conj(want))
	if qe.Real < 0 {
		qe = quat.Scale(-1, qe)
	}
	err := r3.Vec{X: 2 * qe.Imag, Y: 2 * qe.Jmag, Z: 2 * qe.Kmag}
	for _, e := range worldAxes {
		asm.Add(ps.angularRow(e, err, dt, prm.ERP))
	}

	if row, ok := motorRow(p.Motor, ps.slide(), dt); ok {
		asm.Add(row)
	}
}

func (p *Prismatic) CoupledAxis(bodies body.View) (solver.Jacobian, bool) {
	ps, ok := p.resolve(bodies)
	if !ok {
		return nil, false
	}
	return ps.slide(), true
}

func (p *Prismatic) CoupledAxisVelocity(bodies body.View) float64 {
	ps, ok := p.resolve(bodies)
	if !ok {
		return 0
	}
	return ps.slide().Velocity()
}

// slide is d/dt((p2-p1)·a1) with a1 rotating with body1.
func (p pose) slide() solver.Jacobian {
	d := r3.Sub(p.p2, p.p1)
	return solver.Jacobian{
		{Body: p.b1, Lin: r3.Scale(-1, p.a1), Ang: r3.Add(r3.Scale(-1, r3.Cross(p.r1, p.a1)), r3.Cross(p.a1, d))},
		{Body: p.b2, Lin: p.a1, Ang: r3.Cross(p.r2, p.a1)},
	}
}
