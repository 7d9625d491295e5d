package solver

import (
	"math"

	"github.com/san-kum/gearsim/internal/body"
	"gonum.org/v1/gonum/spatial/r3"
)

// Term is one body's share of a constraint Jacobian.
type Term struct {
	Body *body.Body
	Lin  r3.Vec
	Ang  r3.Vec
}

// Jacobian maps body velocities to a scalar constraint velocity.
type Jacobian []Term

// Velocity evaluates J·v against the bodies' current velocities.
func (j Jacobian) Velocity() float64 {
	v := 0.0
	for _, t := range j {
		v += r3.Dot(t.Lin, t.Body.LinVel) + r3.Dot(t.Ang, t.Body.AngVel)
	}
	return v
}

// Scale returns a copy of j multiplied by f.
func (j Jacobian) Scale(f float64) Jacobian {
	out := make(Jacobian, len(j))
	for i, t := range j {
		out[i] = Term{Body: t.Body, Lin: r3.Scale(f, t.Lin), Ang: r3.Scale(f, t.Ang)}
	}
	return out
}

// Plus concatenates j and o, merging terms that act on the same body.
func (j Jacobian) Plus(o Jacobian) Jacobian {
	out := make(Jacobian, 0, len(j)+len(o))
	out = append(out, j...)
	out = append(out, o...)
	return out.Merge()
}

// Merge folds duplicate body terms together, keeping first-seen order and
// dropping terms on bodies that cannot move.
func (j Jacobian) Merge() Jacobian {
	out := make(Jacobian, 0, len(j))
	for _, t := range j {
		if t.Body == nil || !t.Body.IsDynamic() {
			continue
		}
		merged := false
		for i := range out {
			if out[i].Body == t.Body {
				out[i].Lin = r3.Add(out[i].Lin, t.Lin)
				out[i].Ang = r3.Add(out[i].Ang, t.Ang)
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, t)
		}
	}
	return out
}

type RowKind int

const (
	KindLock RowKind = iota
	KindMotor
	KindLink
)

func (k RowKind) String() string {
	switch k {
	case KindLock:
		return "lock"
	case KindMotor:
		return "motor"
	case KindLink:
		return "link"
	default:
		return "unknown"
	}
}

// Row is a scalar velocity constraint J·v + Feed·v = Rhs - Softness*Impulse
// with the accumulated impulse clamped to [Lo, Hi].
//
// Impulses are applied through J only. Feed terms are read but never pushed,
// which lets a row follow bodies it must not disturb. Softness > 0 turns the
// row into a damper that yields in proportion to its impulse.
type Row struct {
	J        Jacobian
	Feed     Jacobian
	Rhs      float64
	Softness float64
	Lo, Hi   float64
	Kind     RowKind
	Impulse  float64

	effMass float64
}

// Bilateral returns an unbounded equality row.
func Bilateral(kind RowKind, j Jacobian, rhs float64) Row {
	return Row{J: j.Merge(), Rhs: rhs, Lo: math.Inf(-1), Hi: math.Inf(1), Kind: kind}
}

// Bounded returns a row whose impulse per step is limited to ±maxImpulse.
func Bounded(kind RowKind, j Jacobian, rhs, maxImpulse float64) Row {
	return Row{J: j.Merge(), Rhs: rhs, Lo: -maxImpulse, Hi: maxImpulse, Kind: kind}
}

// Soft returns a damped row. A non-positive maxImpulse leaves it unbounded.
func Soft(kind RowKind, j Jacobian, rhs, softness, maxImpulse float64) Row {
	r := Bilateral(kind, j, rhs)
	r.Softness = softness
	if maxImpulse > 0 {
		r.Lo, r.Hi = -maxImpulse, maxImpulse
	}
	return r
}

// Follow returns an unbounded row that drives j to track the velocity of
// feed without applying any impulse to feed's bodies.
func Follow(kind RowKind, j, feed Jacobian, rhs float64) Row {
	r := Bilateral(kind, j, rhs)
	r.Feed = feed.Merge()
	return r
}

// Bodies visits every dynamic body the row reads, active terms first.
func (r *Row) Bodies(fn func(*body.Body)) {
	for _, t := range r.J {
		fn(t.Body)
	}
	for _, t := range r.Feed {
		fn(t.Body)
	}
}

func (r *Row) prepare() {
	k := 0.0
	for _, t := range r.J {
		k += t.Body.InvMass()*r3.Dot(t.Lin, t.Lin) + r3.Dot(t.Ang, t.Body.ApplyInvInertia(t.Ang))
	}
	if k > 1e-12 {
		r.effMass = 1 / (k + r.Softness)
	} else {
		r.effMass = 0
	}
	r.Impulse = 0
}

func (r *Row) solve() {
	if r.effMass == 0 {
		return
	}
	jv := r.J.Velocity() + r.Feed.Velocity()
	delta := -r.effMass * (jv - r.Rhs + r.Softness*r.Impulse)
	old := r.Impulse
	r.Impulse = math.Max(r.Lo, math.Min(r.Hi, old+delta))
	delta = r.Impulse - old
	if delta == 0 {
		return
	}
	for _, t := range r.J {
		b := t.Body
		b.LinVel = r3.Add(b.LinVel, r3.Scale(b.InvMass()*delta, t.Lin))
		b.AngVel = r3.Add(b.AngVel, b.ApplyInvInertia(r3.Scale(delta, t.Ang)))
	}
}
