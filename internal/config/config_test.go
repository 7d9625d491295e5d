package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/gearsim/internal/dynamo"
)

func TestDefaultScene(t *testing.T) {
	sc := DefaultScene()

	if sc.Name != "gear_pair" {
		t.Errorf("expected gear_pair, got %s", sc.Name)
	}
	if sc.Solver.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if err := sc.Validate(); err != nil {
		t.Errorf("default scene should validate: %v", err)
	}
	if sc.Joints[0].Motor.Damping != DefaultDamping {
		t.Errorf("expected default damping, got %f", sc.Joints[0].Motor.Damping)
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			sc := GetPreset(name)
			if sc == nil {
				t.Fatal("expected preset, got nil")
			}
			if err := sc.Validate(); err != nil {
				t.Errorf("preset should validate: %v", err)
			}
			if PresetInfo(name) == "" {
				t.Error("expected a description")
			}
		})
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if sc := GetPreset("nonexistent"); sc != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestGetPreset_Independent(t *testing.T) {
	a := GetPreset("gear_pair")
	a.Links[0].Ratio = 7
	if b := GetPreset("gear_pair"); b.Links[0].Ratio != 0.5 {
		t.Errorf("presets must not share state, got ratio %f", b.Links[0].Ratio)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	want := GetPreset("rack_and_pinion")

	if err := Save(path, want); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "axis: [1, 0, 0]") {
		t.Errorf("expected flow-style vectors, got:\n%s", data)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Name != want.Name || len(got.Joints) != 2 || len(got.Links) != 1 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Links[0] != want.Links[0] {
		t.Errorf("expected link %+v, got %+v", want.Links[0], got.Links[0])
	}
	if got.Bodies[2].HalfExtents != (Vec3{1, 0.1, 0.1}) {
		t.Errorf("expected rack extents, got %v", got.Bodies[2].HalfExtents)
	}
}

func TestParseDefaults(t *testing.T) {
	src := `
name: minimal
solver:
  dt: 0.01
bodies:
  - {name: ground, kind: fixed}
  - {name: wheel, half_extents: [0.5, 0.5, 0.5]}
joints:
  - name: hinge
    type: revolute
    body1: ground
    body2: wheel
    axis: [0, 0, 1]
    motor: {velocity: 2}
`
	sc, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if sc.Solver.Dt != 0.01 {
		t.Errorf("expected dt 0.01, got %f", sc.Solver.Dt)
	}
	if sc.Solver.Iterations != DefaultIterations {
		t.Errorf("expected default iterations, got %d", sc.Solver.Iterations)
	}
	if sc.Bodies[1].Kind != "dynamic" || sc.Bodies[1].Density != DefaultDensity {
		t.Errorf("expected dynamic body with default density, got %+v", sc.Bodies[1])
	}
	if sc.Joints[0].Motor.Damping != DefaultDamping {
		t.Errorf("expected default damping, got %f", sc.Joints[0].Motor.Damping)
	}
	if got := sc.TrackedJoints(); len(got) != 1 || got[0] != "hinge" {
		t.Errorf("expected to track every joint, got %v", got)
	}
	if sc.Dynamo().Gravity.Y != -9.81 {
		t.Errorf("expected default gravity, got %v", sc.Dynamo().Gravity)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Scene)
	}{
		{"zero dt", func(s *Scene) { s.Solver.Dt = 0 }},
		{"duplicate body", func(s *Scene) { s.Bodies = append(s.Bodies, s.Bodies[1]) }},
		{"unknown body kind", func(s *Scene) { s.Bodies[1].Kind = "ghost" }},
		{"flat body", func(s *Scene) { s.Bodies[1].HalfExtents = Vec3{1, 0, 1} }},
		{"unknown joint type", func(s *Scene) { s.Joints[0].Type = "ball" }},
		{"joint on unknown body", func(s *Scene) { s.Joints[0].Body2 = "nope" }},
		{"duplicate joint", func(s *Scene) { s.Joints[1].Name = "a" }},
		{"link to unknown joint", func(s *Scene) { s.Links[0].Target = "nope" }},
		{"negative damping", func(s *Scene) { s.Joints[0].Motor.Damping = -1 }},
		{"unknown tracked joint", func(s *Scene) { s.Track = []string{"nope"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := GetPreset("gear_pair")
			tt.mutate(sc)
			err := sc.Validate()
			if !errors.Is(err, ErrInvalidScene) {
				t.Errorf("expected ErrInvalidScene, got %v", err)
			}
		})
	}
}

func TestValidate_SolverBounds(t *testing.T) {
	sc := GetPreset("gear_pair")
	sc.Solver.ERP = 2
	if err := sc.Validate(); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}
