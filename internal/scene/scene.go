// Package scene turns a config.Scene into a live world and keeps the mapping
// from scene names to handles.
package scene

import (
	"fmt"
	"log/slog"

	"github.com/san-kum/gearsim/internal/body"
	"github.com/san-kum/gearsim/internal/config"
	"github.com/san-kum/gearsim/internal/joint"
	"github.com/san-kum/gearsim/internal/sim"
	"github.com/san-kum/gearsim/internal/world"
)

type Scene struct {
	Config *config.Scene
	World  *world.World
	Bodies map[string]body.Handle
	Joints map[string]joint.Handle
}

// Build creates a world for sc. Link failures keep their *motionlink.LinkError
// so callers can tell a rejected cycle from a bad reference.
func Build(sc *config.Scene, logger *slog.Logger) (*Scene, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	w, err := world.New(sc.Dynamo(), world.WithLogger(logger), world.WithLinkConfig(sc.LinkPolicy()))
	if err != nil {
		return nil, err
	}
	s := &Scene{
		Config: sc,
		World:  w,
		Bodies: make(map[string]body.Handle, len(sc.Bodies)),
		Joints: make(map[string]joint.Handle, len(sc.Joints)),
	}

	for _, bc := range sc.Bodies {
		s.Bodies[bc.Name] = w.InsertBody(newBody(bc))
	}

	for _, jc := range sc.Joints {
		h, err := w.InsertJoint(s.newJoint(jc))
		if err != nil {
			return nil, fmt.Errorf("joint %q: %w", jc.Name, err)
		}
		s.Joints[jc.Name] = h
	}

	for _, lc := range sc.Links {
		src, dst := s.Joints[lc.Source], s.Joints[lc.Target]
		if err := w.AttachMotionLink(src, dst, lc.Ratio, lc.Reversed); err != nil {
			return nil, fmt.Errorf("link %s -> %s: %w", lc.Source, lc.Target, err)
		}
	}

	logger.Debug("scene built", "name", sc.Name, "bodies", len(s.Bodies), "joints", len(s.Joints), "links", w.Links().Len())
	return s, nil
}

func newBody(bc config.BodyConfig) *body.Body {
	var b *body.Body
	if bc.Kind == "fixed" {
		b = body.NewFixed()
	} else {
		b = body.NewCuboid(bc.Density, bc.HalfExtents.R3())
	}
	b.Position = bc.Position.R3()
	b.LinVel = bc.LinVel.R3()
	b.AngVel = bc.AngVel.R3()
	return b
}

func (s *Scene) newJoint(jc config.JointConfig) joint.Joint {
	b1, b2 := s.Bodies[jc.Body1], s.Bodies[jc.Body2]
	axis := jc.Axis.R3()
	switch jc.Type {
	case "prismatic":
		p := joint.NewPrismatic(b1, b2, axis).WithAnchors(jc.Anchor1.R3(), jc.Anchor2.R3())
		if m := jc.Motor; m != nil {
			p.WithMotorVelocity(m.Velocity, m.Damping).WithMotorMaxForce(m.MaxForce)
		}
		return p
	default:
		r := joint.NewRevolute(b1, b2, axis).WithAnchors(jc.Anchor1.R3(), jc.Anchor2.R3())
		if m := jc.Motor; m != nil {
			r.WithMotorVelocity(m.Velocity, m.Damping).WithMotorMaxForce(m.MaxForce)
		}
		return r
	}
}

// Simulator wraps the world with one track per tracked joint.
func (s *Scene) Simulator() *sim.Simulator {
	names := s.Config.TrackedJoints()
	tracks := make([]sim.Track, len(names))
	for i, name := range names {
		tracks[i] = sim.Track{Name: name, Joint: s.Joints[name]}
	}
	return sim.New(s.World, tracks...)
}

// JointName reverses the handle map. ok is false for handles not built from
// this scene.
func (s *Scene) JointName(h joint.Handle) (string, bool) {
	for name, jh := range s.Joints {
		if jh == h {
			return name, true
		}
	}
	return "", false
}

// LinkRow is one motion link described by joint names.
type LinkRow struct {
	Source   string
	Target   string
	Ratio    float64
	Reversed bool
	Dangling bool
	Cyclic   bool
}

// LinkRows lists the world's links in source handle order.
func (s *Scene) LinkRows() []LinkRow {
	tbl := s.World.Links()
	cyclic := make(map[joint.Handle]bool)
	for _, c := range tbl.Cycles() {
		for _, h := range c {
			cyclic[h] = true
		}
	}

	entries := tbl.Entries()
	rows := make([]LinkRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, LinkRow{
			Source:   s.nameOr(e.Source),
			Target:   s.nameOr(e.Target),
			Ratio:    e.Ratio,
			Reversed: e.Reversed,
			Dangling: tbl.Dangling(e.Source),
			Cyclic:   cyclic[e.Source],
		})
	}
	return rows
}

func (s *Scene) nameOr(h joint.Handle) string {
	if name, ok := s.JointName(h); ok {
		return name
	}
	return h.String()
}

// JointNames returns the scene's joint names in declaration order.
func (s *Scene) JointNames() []string {
	names := make([]string, 0, len(s.Joints))
	for _, jc := range s.Config.Joints {
		names = append(names, jc.Name)
	}
	return names
}
