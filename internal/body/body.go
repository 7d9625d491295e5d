// Package body holds rigid bodies and the generation-checked store they live in.
//
// Bodies are the external collaborator of the joint solver: they carry mass,
// inertia, pose and velocity. Positions and velocities are world-frame;
// inertia is given as principal moments in the body frame.
package body

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

type Kind int

const (
	Dynamic Kind = iota
	Fixed
)

func (k Kind) String() string {
	switch k {
	case Dynamic:
		return "dynamic"
	case Fixed:
		return "fixed"
	default:
		return "unknown"
	}
}

type Body struct {
	Kind        Kind
	Position    r3.Vec
	Orientation quat.Number
	LinVel      r3.Vec
	AngVel      r3.Vec
	Mass        float64
	Inertia     r3.Vec // principal moments, body frame
}

// NewDynamic returns a body at the origin with identity orientation.
func NewDynamic(mass float64, inertia r3.Vec) *Body {
	return &Body{
		Kind:        Dynamic,
		Orientation: quat.Number{Real: 1},
		Mass:        mass,
		Inertia:     inertia,
	}
}

func NewFixed() *Body {
	return &Body{Kind: Fixed, Orientation: quat.Number{Real: 1}}
}

// NewCuboid returns a dynamic box of uniform density with the given half extents.
func NewCuboid(density float64, half r3.Vec) *Body {
	x, y, z := 2*half.X, 2*half.Y, 2*half.Z
	m := density * x * y * z
	return NewDynamic(m, r3.Vec{
		X: m * (y*y + z*z) / 12,
		Y: m * (x*x + z*z) / 12,
		Z: m * (x*x + y*y) / 12,
	})
}

func (b *Body) IsDynamic() bool { return b.Kind == Dynamic }

func (b *Body) InvMass() float64 {
	if b.Kind != Dynamic || b.Mass <= 0 {
		return 0
	}
	return 1 / b.Mass
}

// ApplyInvInertia maps a world-frame angular impulse to the resulting change
// in world-frame angular velocity.
func (b *Body) ApplyInvInertia(w r3.Vec) r3.Vec {
	if b.Kind != Dynamic {
		return r3.Vec{}
	}
	local := Rotate(quat.Conj(b.Orientation), w)
	local = r3.Vec{
		X: invOrZero(b.Inertia.X) * local.X,
		Y: invOrZero(b.Inertia.Y) * local.Y,
		Z: invOrZero(b.Inertia.Z) * local.Z,
	}
	return Rotate(b.Orientation, local)
}

// WorldPoint transforms a body-frame point to world frame.
func (b *Body) WorldPoint(local r3.Vec) r3.Vec {
	return r3.Add(b.Position, Rotate(b.Orientation, local))
}

// WorldVector rotates a body-frame direction to world frame.
func (b *Body) WorldVector(local r3.Vec) r3.Vec {
	return Rotate(b.Orientation, local)
}

// KineticEnergy returns translational plus rotational kinetic energy.
func (b *Body) KineticEnergy() float64 {
	if b.Kind != Dynamic {
		return 0
	}
	lin := 0.5 * b.Mass * r3.Dot(b.LinVel, b.LinVel)
	w := Rotate(quat.Conj(b.Orientation), b.AngVel)
	rot := 0.5 * (b.Inertia.X*w.X*w.X + b.Inertia.Y*w.Y*w.Y + b.Inertia.Z*w.Z*w.Z)
	return lin + rot
}

// IsValid reports whether pose and velocity are free of NaN and Inf.
func (b *Body) IsValid() bool {
	for _, v := range []float64{
		b.Position.X, b.Position.Y, b.Position.Z,
		b.LinVel.X, b.LinVel.Y, b.LinVel.Z,
		b.AngVel.X, b.AngVel.Y, b.AngVel.Z,
		b.Orientation.Real, b.Orientation.Imag, b.Orientation.Jmag, b.Orientation.Kmag,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Rotate applies the unit quaternion q to v.
func Rotate(q quat.Number, v r3.Vec) r3.Vec {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q, p), quat.Conj(q))
	return r3.Vec{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// AxisAngle returns the unit quaternion rotating by angle about axis.
func AxisAngle(axis r3.Vec, angle float64) quat.Number {
	n := r3.Norm(axis)
	if n == 0 {
		return quat.Number{Real: 1}
	}
	s := math.Sin(angle/2) / n
	return quat.Number{Real: math.Cos(angle / 2), Imag: axis.X * s, Jmag: axis.Y * s, Kmag: axis.Z * s}
}

// Normalize rescales q to unit length; a zero quaternion becomes identity.
func Normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/n, q)
}

func invOrZero(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return 1 / v
}
