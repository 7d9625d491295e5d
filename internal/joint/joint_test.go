package joint

import (
	"math"
	"testing"

	"github.com/san-kum/gearsim/internal/body"
	"github.com/san-kum/gearsim/internal/solver"
	"gonum.org/v1/gonum/spatial/r3"
)

func hingeFixture(t *testing.T) (*body.Set, body.Handle, body.Handle) {
	t.Helper()
	bodies := body.NewSet()
	ground := bodies.Insert(body.NewFixed())
	wheel := body.NewDynamic(1, r3.Vec{X: 1, Y: 1, Z: 1})
	wheel.Position = r3.Vec{Z: 2}
	return bodies, ground, bodies.Insert(wheel)
}

func TestRevolute_RowCount(t *testing.T) {
	bodies, ground, wheel := hingeFixture(t)

	tests := []struct {
		name  string
		joint *Revolute
		rows  int
	}{
		{"no motor", NewRevolute(ground, wheel, r3.Vec{Z: 1}), 5},
		{"motor", NewRevolute(ground, wheel, r3.Vec{Z: 1}).WithMotorVelocity(1, 10), 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var batch solver.Batch
			tt.joint.BuildRows(bodies, 0.01, DefaultParams(), &batch)
			if batch.Len() != tt.rows {
				t.Errorf("expected %d rows, got %d", tt.rows, batch.Len())
			}
		})
	}
}

func TestRevolute_CoupledAxisVelocity(t *testing.T) {
	bodies, ground, wheel := hingeFixture(t)
	b, _ := bodies.Get(wheel)
	b.AngVel = r3.Vec{X: 5, Z: -1.5}

	j := NewRevolute(ground, wheel, r3.Vec{Z: 1})
	if got := j.CoupledAxisVelocity(bodies); math.Abs(got+1.5) > 1e-12 {
		t.Errorf("expected -1.5, got %f", got)
	}

	jac, ok := j.CoupledAxis(bodies)
	if !ok {
		t.Fatal("coupled axis did not resolve")
	}
	if got := jac.Velocity(); math.Abs(got+1.5) > 1e-12 {
		t.Errorf("Jacobian velocity = %f, want -1.5", got)
	}
}

func TestRevolute_MotorDrivesHinge(t *testing.T) {
	bodies, ground, wheel := hingeFixture(t)
	j := NewRevolute(ground, wheel, r3.Vec{Z: 1}).
		WithAnchors(r3.Vec{}, r3.Vec{Z: -2}).
		WithMotorVelocity(-2, 1000)

	// the soft motor closes 1/(1+0.06) of the gap per step
	for step := 0; step < 10; step++ {
		var batch solver.Batch
		j.BuildRows(bodies, 1.0/60, DefaultParams(), &batch)
		solver.Solve(batch.Rows(), solver.Config{Iterations: 10})
	}

	if got := j.CoupledAxisVelocity(bodies); math.Abs(got+2) > 1e-9 {
		t.Errorf("expected hinge velocity -2, got %f", got)
	}
}

func TestRevolute_DanglingBody(t *testing.T) {
	bodies, ground, wheel := hingeFixture(t)
	j := NewRevolute(ground, wheel, r3.Vec{Z: 1})
	bodies.Remove(wheel)

	if _, ok := j.CoupledAxis(bodies); ok {
		t.Error("expected unresolved coupled axis")
	}
	var batch solver.Batch
	j.BuildRows(bodies, 0.01, DefaultParams(), &batch)
	if batch.Len() != 0 {
		t.Errorf("expected no rows, got %d", batch.Len())
	}
}

func TestPrismatic_Rows(t *testing.T) {
	bodies := body.NewSet()
	ground := bodies.Insert(body.NewFixed())
	slider := bodies.Insert(body.NewDynamic(2, r3.Vec{X: 1, Y: 1, Z: 1}))

	j := NewPrismatic(ground, slider, r3.Vec{X: 1}).WithMotorVelocity(0.5, 1000)
	var batch solver.Batch
	j.BuildRows(bodies, 0.01, DefaultParams(), &batch)
	if batch.Len() != 6 {
		t.Fatalf("expected 6 rows, got %d", batch.Len())
	}

	for step := 0; step < 20; step++ {
		batch.Reset()
		j.BuildRows(bodies, 0.01, DefaultParams(), &batch)
		solver.Solve(batch.Rows(), solver.Config{Iterations: 10})
	}
	if got := j.CoupledAxisVelocity(bodies); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("expected slide velocity 0.5, got %f", got)
	}
	b, _ := bodies.Get(slider)
	if math.Abs(b.LinVel.Y) > 1e-9 || math.Abs(b.LinVel.Z) > 1e-9 {
		t.Errorf("expected motion only along x, got %v", b.LinVel)
	}
}

func TestMotor_MaxForceCaps(t *testing.T) {
	bodies, ground, wheel := hingeFixture(t)
	j := NewRevolute(ground, wheel, r3.Vec{Z: 1}).
		WithAnchors(r3.Vec{}, r3.Vec{Z: -2}).
		WithMotorVelocity(10, 0).
		WithMotorMaxForce(6)

	var batch solver.Batch
	j.BuildRows(bodies, 0.5, DefaultParams(), &batch)
	solver.Solve(batch.Rows(), solver.Config{Iterations: 10})

	// rigid motor capped at 6 N·m for half a second on unit inertia
	if got := j.CoupledAxisVelocity(bodies); math.Abs(got-3) > 1e-9 {
		t.Errorf("expected capped hinge velocity 3, got %f", got)
	}
	if !j.MotorState().Enabled {
		t.Error("motor should be enabled")
	}
}

func TestSet_Coupled(t *testing.T) {
	_, ground, wheel := hingeFixture(t)
	set := NewSet()
	h := set.Insert(NewRevolute(ground, wheel, r3.Vec{Z: 1}))

	if _, ok := set.Coupled(h); !ok {
		t.Fatal("expected coupled capability")
	}
	if _, ok := set.Remove(h); !ok {
		t.Fatal("remove failed")
	}
	if _, ok := set.Coupled(h); ok {
		t.Error("removed joint still resolves")
	}
	if set.Len() != 0 {
		t.Errorf("expected empty set, got %d", set.Len())
	}
}

func TestBasis(t *testing.T) {
	for _, n := range []r3.Vec{{X: 1}, {Y: 1}, {Z: 1}, r3.Unit(r3.Vec{X: 1, Y: 2, Z: 3})} {
		t1, t2 := basis(n)
		if math.Abs(r3.Dot(t1, n)) > 1e-12 || math.Abs(r3.Dot(t2, n)) > 1e-12 || math.Abs(r3.Dot(t1, t2)) > 1e-12 {
			t.Errorf("basis(%v) not orthogonal: %v %v", n, t1, t2)
		}
		if math.Abs(r3.Norm(t1)-1) > 1e-12 || math.Abs(r3.Norm(t2)-1) > 1e-12 {
			t.Errorf("basis(%v) not unit: %v %v", n, t1, t2)
		}
	}
}
