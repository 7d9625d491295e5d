// Package joint defines the joints the solver understands and the store that
// owns them.
//
// Every joint contributes native lock rows (and a motor row when its motor is
// enabled) during constraint assembly, and exposes one coupled axis through
// [Coupled]: the scalar relative velocity of its free degree of freedom and
// the Jacobian of that velocity. Motion links couple joints through this
// capability only; they never inspect concrete joint types.
package joint

import (
	"github.com/san-kum/gearsim/internal/body"
	"github.com/san-kum/gearsim/internal/solver"
	"gonum.org/v1/gonum/spatial/r3"
)

// Coupled is implemented by joints with a scalar relative-motion axis.
type Coupled interface {
	// CoupledAxis returns the Jacobian of the coupled-axis relative velocity.
	// ok is false when either body no longer resolves.
	CoupledAxis(bodies body.View) (j solver.Jacobian, ok bool)
	// CoupledAxisVelocity returns the current relative velocity along the
	// coupled axis, angular for revolute joints and linear for prismatic ones.
	CoupledAxisVelocity(bodies body.View) float64
}

type Joint interface {
	Coupled
	Kind() string
	Bodies() (body.Handle, body.Handle)
	// BuildRows appends this joint's native rows for a step of length dt.
	BuildRows(bodies body.View, dt float64, p Params, asm solver.Assembler)
	MotorState() Motor
}

// Params tune how native rows correct positional drift.
type Params struct {
	// ERP is the fraction of positional error removed per step.
	ERP float64
}

func DefaultParams() Params {
	return Params{ERP: 0.2}
}

// Motor drives the coupled axis toward TargetVel. It is a damper: the force
// it applies is Damping times the velocity error, capped at MaxForce when
// MaxForce is positive. A zero Damping makes the motor rigid.
type Motor struct {
	Enabled   bool
	TargetVel float64
	Damping   float64
	MaxForce  float64
}

// frame holds the attachment shared by all joint kinds.
type frame struct {
	Body1, Body2 body.Handle
	Anchor1      r3.Vec // body1 frame
	Anchor2      r3.Vec // body2 frame
	Axis1        r3.Vec // body1 frame, unit
	Axis2        r3.Vec // body2 frame, unit
}

type pose struct {
	b1, b2 *body.Body
	r1, r2 r3.Vec // world-frame anchor offsets from body centres
	p1, p2 r3.Vec
	a1, a2 r3.Vec
}

func (f *frame) resolve(bodies body.View) (pose, bool) {
	b1, ok1 := bodies.Get(f.Body1)
	b2, ok2 := bodies.Get(f.Body2)
	if !ok1 || !ok2 {
		return pose{}, false
	}
	p := pose{b1: b1, b2: b2}
	p.r1 = b1.WorldVector(f.Anchor1)
	p.r2 = b2.WorldVector(f.Anchor2)
	p.p1 = r3.Add(b1.Position, p.r1)
	p.p2 = r3.Add(b2.Position, p.r2)
	p.a1 = b1.WorldVector(f.Axis1)
	p.a2 = b2.WorldVector(f.Axis2)
	return p, true
}

// pointRow keeps the anchors together along n.
func (p pose) pointRow(n r3.Vec, dt, erp float64) solver.Row {
	j := solver.Jacobian{
		{Body: p.b1, Lin: r3.Scale(-1, n), Ang: r3.Scale(-1, r3.Cross(p.r1, n))},
		{Body: p.b2, Lin: n, Ang: r3.Cross(p.r2, n)},
	}
	c := r3.Dot(r3.Sub(p.p2, p.p1), n)
	return solver.Bilateral(solver.KindLock, j, -erp/dt*c)
}

// angularRow locks relative rotation about t, correcting err·t.
func (p pose) angularRow(t, err r3.Vec, dt, erp float64) solver.Row {
	j := solver.Jacobian{
		{Body: p.b1, Ang: r3.Scale(-1, t)},
		{Body: p.b2, Ang: t},
	}
	return solver.Bilateral(solver.KindLock, j, -erp/dt*r3.Dot(err, t))
}

func motorRow(m Motor, j solver.Jacobian, dt float64) (solver.Row, bool) {
	if !m.Enabled {
		return solver.Row{}, false
	}
	softness := 0.0
	if m.Damping > 0 {
		softness = 1 / (m.Damping * dt)
	}
	return solver.Soft(solver.KindMotor, j, m.TargetVel, softness, m.MaxForce*dt), true
}

// basis returns two unit vectors orthogonal to n and to each other.
func basis(n r3.Vec) (r3.Vec, r3.Vec) {
	var t1 r3.Vec
	if n.X*n.X > 1.0/3 {
		t1 = r3.Unit(r3.Vec{X: n.Y, Y: -n.X})
	} else {
		t1 = r3.Unit(r3.Vec{Y: n.Z, Z: -n.Y})
	}
	return t1, r3.Cross(n, t1)
}

func unitOr(v, fallback r3.Vec) r3.Vec {
	if r3.Norm(v) == 0 {
		return fallback
	}
	return r3.Unit(v)
}

var worldAxes = [3]r3.Vec{{X: 1}, {Y: 1}, {Z: 1}}
