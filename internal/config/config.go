// Package config reads and writes YAML scene files: the bodies, joints and
// motion links of one world plus the solver settings used to step it.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/san-kum/gearsim/internal/dynamo"
	"github.com/san-kum/gearsim/internal/motionlink"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt         = 1.0 / 60
	DefaultDuration   = 5.0
	DefaultIterations = 16
	DefaultERP        = 0.2
	DefaultDensity    = 1.0
	DefaultDamping    = 1000.0
)

var ErrInvalidScene = errors.New("config: invalid scene")

// Vec3 is written as a flow sequence [x, y, z].
type Vec3 [3]float64

func (v Vec3) R3() r3.Vec { return r3.Vec{X: v[0], Y: v[1], Z: v[2]} }

func (v Vec3) IsZero() bool { return v == Vec3{} }

func (v Vec3) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, c := range v {
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatFloat(c, 'g', -1, 64)})
	}
	return n, nil
}

type Scene struct {
	Name   string        `yaml:"name"`
	Solver SolverConfig  `yaml:"solver"`
	Bodies []BodyConfig  `yaml:"bodies"`
	Joints []JointConfig `yaml:"joints"`
	Links  []LinkConfig  `yaml:"links,omitempty"`
	// Track lists the joints sampled during a run. Empty tracks every joint.
	Track []string `yaml:"track,omitempty"`
}

type SolverConfig struct {
	Dt            float64 `yaml:"dt"`
	Duration      float64 `yaml:"duration"`
	Iterations    int     `yaml:"iterations"`
	ERP           float64 `yaml:"erp"`
	Gravity       Vec3    `yaml:"gravity"`
	AllowCycles   bool    `yaml:"allow_cycles"`
	Bidirectional bool    `yaml:"bidirectional"`
}

type BodyConfig struct {
	Name        string  `yaml:"name"`
	Kind        string  `yaml:"kind"` // dynamic or fixed
	Position    Vec3    `yaml:"position"`
	HalfExtents Vec3    `yaml:"half_extents,omitempty"`
	Density     float64 `yaml:"density,omitempty"`
	AngVel      Vec3    `yaml:"ang_vel,omitempty"`
	LinVel      Vec3    `yaml:"lin_vel,omitempty"`
}

type JointConfig struct {
	Name    string       `yaml:"name"`
	Type    string       `yaml:"type"` // revolute or prismatic
	Body1   string       `yaml:"body1"`
	Body2   string       `yaml:"body2"`
	Anchor1 Vec3         `yaml:"anchor1,omitempty"`
	Anchor2 Vec3         `yaml:"anchor2,omitempty"`
	Axis    Vec3         `yaml:"axis"`
	Motor   *MotorConfig `yaml:"motor,omitempty"`
}

type MotorConfig struct {
	Velocity float64 `yaml:"velocity"`
	Damping  float64 `yaml:"damping"`
	MaxForce float64 `yaml:"max_force,omitempty"`
}

// LinkConfig makes Source follow Ratio times Target, negated when Reversed.
type LinkConfig struct {
	Source   string  `yaml:"source"`
	Target   string  `yaml:"target"`
	Ratio    float64 `yaml:"ratio"`
	Reversed bool    `yaml:"reversed,omitempty"`
}

func DefaultSolver() SolverConfig {
	return SolverConfig{
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Iterations: DefaultIterations,
		ERP:        DefaultERP,
		Gravity:    Vec3{0, -9.81, 0},
	}
}

// DefaultScene is the gear pair preset.
func DefaultScene() *Scene {
	return GetPreset("gear_pair")
}

// Load reads a scene, filling solver fields the file omits with defaults.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Scene, error) {
	sc := &Scene{Solver: DefaultSolver()}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, err
	}
	sc.applyDefaults()
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

func Save(path string, sc *Scene) error {
	data, err := yaml.Marshal(sc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (s *Scene) applyDefaults() {
	for i := range s.Bodies {
		b := &s.Bodies[i]
		if b.Kind == "" {
			b.Kind = "dynamic"
		}
		if b.Kind == "dynamic" && b.Density == 0 {
			b.Density = DefaultDensity
		}
	}
	for i := range s.Joints {
		if m := s.Joints[i].Motor; m != nil && m.Damping == 0 {
			m.Damping = DefaultDamping
		}
	}
}

// Dynamo returns the stepping parameters of the scene.
func (s *Scene) Dynamo() dynamo.Config {
	return dynamo.Config{
		Dt:            s.Solver.Dt,
		Duration:      s.Solver.Duration,
		Iterations:    s.Solver.Iterations,
		ERP:           s.Solver.ERP,
		Gravity:       s.Solver.Gravity.R3(),
		ValidateState: true,
	}
}

func (s *Scene) LinkPolicy() motionlink.Config {
	return motionlink.Config{AllowCycles: s.Solver.AllowCycles, Bidirectional: s.Solver.Bidirectional}
}

// TrackedJoints returns Track, or every joint name in declaration order.
func (s *Scene) TrackedJoints() []string {
	if len(s.Track) > 0 {
		return s.Track
	}
	names := make([]string, len(s.Joints))
	for i, j := range s.Joints {
		names[i] = j.Name
	}
	return names
}

// Validate checks names and references. Link ratios and cycles are left to
// the motion-link table so the two never disagree.
func (s *Scene) Validate() error {
	if err := s.Dynamo().Validate(); err != nil {
		return fmt.Errorf("%w: solver: %w", ErrInvalidScene, err)
	}

	bodies := make(map[string]BodyConfig, len(s.Bodies))
	for _, b := range s.Bodies {
		if b.Name == "" {
			return fmt.Errorf("%w: body without a name", ErrInvalidScene)
		}
		if _, dup := bodies[b.Name]; dup {
			return fmt.Errorf("%w: duplicate body %q", ErrInvalidScene, b.Name)
		}
		switch b.Kind {
		case "fixed":
		case "dynamic":
			if b.Density <= 0 || b.HalfExtents[0] <= 0 || b.HalfExtents[1] <= 0 || b.HalfExtents[2] <= 0 {
				return fmt.Errorf("%w: body %q needs positive density and half extents", ErrInvalidScene, b.Name)
			}
		default:
			return fmt.Errorf("%w: body %q has unknown kind %q", ErrInvalidScene, b.Name, b.Kind)
		}
		bodies[b.Name] = b
	}

	joints := make(map[string]bool, len(s.Joints))
	for _, j := range s.Joints {
		if j.Name == "" {
			return fmt.Errorf("%w: joint without a name", ErrInvalidScene)
		}
		if joints[j.Name] {
			return fmt.Errorf("%w: duplicate joint %q", ErrInvalidScene, j.Name)
		}
		if j.Type != "revolute" && j.Type != "prismatic" {
			return fmt.Errorf("%w: joint %q has unknown type %q", ErrInvalidScene, j.Name, j.Type)
		}
		for _, b := range []string{j.Body1, j.Body2} {
			if _, ok := bodies[b]; !ok {
				return fmt.Errorf("%w: joint %q references unknown body %q", ErrInvalidScene, j.Name, b)
			}
		}
		if j.Motor != nil && (j.Motor.Damping < 0 || j.Motor.MaxForce < 0 || math.IsNaN(j.Motor.Velocity)) {
			return fmt.Errorf("%w: joint %q has an invalid motor", ErrInvalidScene, j.Name)
		}
		joints[j.Name] = true
	}

	for _, l := range s.Links {
		for _, name := range []string{l.Source, l.Target} {
			if !joints[name] {
				return fmt.Errorf("%w: link %s -> %s references unknown joint %q", ErrInvalidScene, l.Source, l.Target, name)
			}
		}
	}
	for _, name := range s.Track {
		if !joints[name] {
			return fmt.Errorf("%w: tracked joint %q does not exist", ErrInvalidScene, name)
		}
	}
	return nil
}
