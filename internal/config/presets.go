package config

import "sort"

// Presets build ready-made scenes. Gear presets run without gravity: the
// wheels sit on their axles and only motors and links act on them.
var Presets = map[string]func() *Scene{
	"gear_pair":       func() *Scene { return gearPair("gear_pair", false) },
	"gear_pair_rev":   func() *Scene { return gearPair("gear_pair_rev", true) },
	"crossed_belt":    crossedBelt,
	"gear_train":      gearTrain,
	"rack_and_pinion": rackAndPinion,
	"cyclic_pair":     cyclicPair,
}

var presetInfo = map[string]string{
	"gear_pair":       "motor-driven wheel B follows wheel A at half speed",
	"gear_pair_rev":   "gear pair with the link reversed",
	"crossed_belt":    "two pulleys on parallel axes, crossed belt 1:1",
	"gear_train":      "three wheels chained A -> B -> C with alternating direction",
	"rack_and_pinion": "a slider driven by a hinged pinion of radius 0.5",
	"cyclic_pair":     "two wheels linked to each other, cycles allowed",
}

func GetPreset(name string) *Scene {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	sc := build()
	sc.applyDefaults()
	return sc
}

// ListPresets returns preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func PresetInfo(name string) string { return presetInfo[name] }

func gearSolver() SolverConfig {
	s := DefaultSolver()
	s.Gravity = Vec3{}
	return s
}

var wheel = Vec3{0.4, 0.4, 0.4}

func ground() BodyConfig { return BodyConfig{Name: "ground", Kind: "fixed"} }

func gearPair(name string, reversed bool) *Scene {
	return &Scene{
		Name:   name,
		Solver: gearSolver(),
		Bodies: []BodyConfig{
			ground(),
			{Name: "wheel_a", Kind: "dynamic", Position: Vec3{0, 0, 2}, HalfExtents: wheel},
			{Name: "wheel_b", Kind: "dynamic", Position: Vec3{2, 0, 0}, HalfExtents: wheel},
		},
		Joints: []JointConfig{
			{
				Name: "a", Type: "revolute", Body1: "ground", Body2: "wheel_a",
				Anchor2: Vec3{0, 0, -2}, Axis: Vec3{0, 0, 1},
				Motor: &MotorConfig{Velocity: -2},
			},
			{
				Name: "b", Type: "revolute", Body1: "ground", Body2: "wheel_b",
				Anchor2: Vec3{-2, 0, 0}, Axis: Vec3{1, 0, 0},
				Motor: &MotorConfig{Velocity: -4},
			},
		},
		Links: []LinkConfig{{Source: "b", Target: "a", Ratio: 0.5, Reversed: reversed}},
	}
}

func crossedBelt() *Scene {
	return &Scene{
		Name:   "crossed_belt",
		Solver: gearSolver(),
		Bodies: []BodyConfig{
			ground(),
			{Name: "drive", Kind: "dynamic", HalfExtents: wheel},
			{Name: "driven", Kind: "dynamic", Position: Vec3{3, 0, 0}, HalfExtents: wheel},
		},
		Joints: []JointConfig{
			{Name: "drive", Type: "revolute", Body1: "ground", Body2: "drive", Axis: Vec3{0, 0, 1}, Motor: &MotorConfig{Velocity: 3}},
			{Name: "driven", Type: "revolute", Body1: "ground", Body2: "driven", Anchor1: Vec3{3, 0, 0}, Axis: Vec3{0, 0, 1}},
		},
		Links: []LinkConfig{{Source: "driven", Target: "drive", Ratio: 1, Reversed: true}},
	}
}

func gearTrain() *Scene {
	return &Scene{
		Name:   "gear_train",
		Solver: gearSolver(),
		Bodies: []BodyConfig{
			ground(),
			{Name: "wheel_a", Kind: "dynamic", HalfExtents: wheel},
			{Name: "wheel_b", Kind: "dynamic", Position: Vec3{1.5, 0, 0}, HalfExtents: wheel},
			{Name: "wheel_c", Kind: "dynamic", Position: Vec3{3, 0, 0}, HalfExtents: wheel},
		},
		Joints: []JointConfig{
			{Name: "a", Type: "revolute", Body1: "ground", Body2: "wheel_a", Axis: Vec3{0, 0, 1}, Motor: &MotorConfig{Velocity: 1}},
			{Name: "b", Type: "revolute", Body1: "ground", Body2: "wheel_b", Anchor1: Vec3{1.5, 0, 0}, Axis: Vec3{0, 0, 1}},
			{Name: "c", Type: "revolute", Body1: "ground", Body2: "wheel_c", Anchor1: Vec3{3, 0, 0}, Axis: Vec3{0, 0, 1}},
		},
		Links: []LinkConfig{
			{Source: "b", Target: "a", Ratio: 2, Reversed: true},
			{Source: "c", Target: "b", Ratio: 0.25, Reversed: true},
		},
	}
}

func rackAndPinion() *Scene {
	return &Scene{
		Name:   "rack_and_pinion",
		Solver: gearSolver(),
		Bodies: []BodyConfig{
			ground(),
			{Name: "pinion", Kind: "dynamic", HalfExtents: Vec3{0.5, 0.5, 0.5}},
			{Name: "rack", Kind: "dynamic", Position: Vec3{0, -0.6, 0}, HalfExtents: Vec3{1, 0.1, 0.1}},
		},
		Joints: []JointConfig{
			{Name: "pinion", Type: "revolute", Body1: "ground", Body2: "pinion", Axis: Vec3{0, 0, 1}, Motor: &MotorConfig{Velocity: -2}},
			{Name: "rack", Type: "prismatic", Body1: "ground", Body2: "rack", Anchor1: Vec3{0, -0.6, 0}, Axis: Vec3{1, 0, 0}},
		},
		Links: []LinkConfig{{Source: "rack", Target: "pinion", Ratio: 0.5, Reversed: true}},
	}
}

func cyclicPair() *Scene {
	sc := gearPair("cyclic_pair", false)
	sc.Solver.AllowCycles = true
	sc.Links = []LinkConfig{
		{Source: "a", Target: "b", Ratio: 1},
		{Source: "b", Target: "a", Ratio: 1},
	}
	return sc
}
