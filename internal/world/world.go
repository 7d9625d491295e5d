// Package world owns one independent simulation: its bodies, joints, the
// motion links between joints and the step pipeline that solves them.
//
// A step runs in a fixed order: external forces, native joint rows, motion
// link rows, an island-partitioned velocity solve, then position integration.
// Islands share no dynamic body and are solved concurrently; rows inside an
// island are always solved in assembly order, so repeated runs of the same
// scene produce identical results.
//
// A World is not safe for concurrent use. Editing it while Step runs on
// another goroutine is a data race; independent worlds may step in parallel.
package world

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/gearsim/internal/body"
	"github.com/san-kum/gearsim/internal/dynamo"
	"github.com/san-kum/gearsim/internal/integrators"
	"github.com/san-kum/gearsim/internal/joint"
	"github.com/san-kum/gearsim/internal/motionlink"
	"github.com/san-kum/gearsim/internal/solver"
)

type Option func(*World)

func WithLogger(l *slog.Logger) Option {
	return func(w *World) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithLinkConfig sets the cycle and coupling policy of the motion-link table.
func WithLinkConfig(c motionlink.Config) Option {
	return func(w *World) { w.linkCfg = c }
}

func WithIntegrator(i integrators.Integrator) Option {
	return func(w *World) {
		if i != nil {
			w.integ = i
		}
	}
}

// StepStats describes the rows solved by one step.
type StepStats struct {
	Rows         int
	LinkRows     int
	Dangling     int
	Islands      int
	MotorImpulse float64 // sum of |impulse| over motor rows
	LinkImpulse  float64 // sum of |impulse| over link rows
}

type World struct {
	bodies  *body.Set
	joints  *joint.Set
	links   *motionlink.Table
	gen     *motionlink.Generator
	integ   integrators.Integrator
	cfg     dynamo.Config
	linkCfg motionlink.Config
	logger  *slog.Logger

	batch solver.Batch
	time  float64
	step  int
}

func New(cfg dynamo.Config, opts ...Option) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	w := &World{
		bodies:  body.NewSet(),
		joints:  joint.NewSet(),
		integ:   integrators.NewSymplecticEuler(),
		cfg:     cfg,
		linkCfg: motionlink.DefaultConfig(),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.links = motionlink.NewTable(w.joints, w.linkCfg, w.logger)
	w.gen = motionlink.NewGenerator(w.links, w.joints, w.bodies, w.logger)
	return w, nil
}

func (w *World) Config() dynamo.Config            { return w.cfg }
func (w *World) Time() float64                    { return w.time }
func (w *World) StepCount() int                   { return w.step }
func (w *World) Bodies() *body.Set                { return w.bodies }
func (w *World) Joints() *joint.Set               { return w.joints }
func (w *World) Links() *motionlink.Table         { return w.links }
func (w *World) Generator() *motionlink.Generator { return w.gen }

func (w *World) InsertBody(b *body.Body) body.Handle {
	return w.bodies.Insert(b)
}

func (w *World) Body(h body.Handle) (*body.Body, bool) {
	return w.bodies.Get(h)
}

// RemoveBody removes h and every joint attached to it.
func (w *World) RemoveBody(h body.Handle) bool {
	if !w.bodies.Contains(h) {
		return false
	}
	var attached []joint.Handle
	w.joints.Each(func(jh joint.Handle, j joint.Joint) {
		b1, b2 := j.Bodies()
		if b1 == h || b2 == h {
			attached = append(attached, jh)
		}
	})
	for _, jh := range attached {
		w.RemoveJoint(jh)
	}
	return w.bodies.Remove(h)
}

// InsertJoint adds j after checking that it connects two distinct live bodies.
func (w *World) InsertJoint(j joint.Joint) (joint.Handle, error) {
	b1, b2 := j.Bodies()
	if b1 == b2 {
		return joint.Handle{}, fmt.Errorf("%w: %s joint connects body %s to itself", dynamo.ErrInvalidJoint, j.Kind(), b1)
	}
	for _, h := range []body.Handle{b1, b2} {
		if !w.bodies.Contains(h) {
			return joint.Handle{}, fmt.Errorf("%w: %s", dynamo.ErrUnknownBody, h)
		}
	}
	return w.joints.Insert(j), nil
}

func (w *World) Joint(h joint.Handle) (joint.Joint, bool) {
	return w.joints.Get(h)
}

// RemoveJoint removes h and the motion link it owns. Links targeting h are
// left in place and skipped while stepping.
func (w *World) RemoveJoint(h joint.Handle) bool {
	if _, ok := w.joints.Remove(h); !ok {
		return false
	}
	if _, linked := w.links.Get(h); linked {
		w.logger.Debug("dropping motion link of removed joint", "joint", h)
	}
	w.links.OnJointRemoved(h)
	return true
}

// AttachMotionLink couples source to target so that the source's coupled-axis
// velocity tracks ratio times the target's, negated when reversed.
func (w *World) AttachMotionLink(source, target joint.Handle, ratio float64, reversed bool) error {
	return w.links.Attach(source, target, ratio, reversed)
}

func (w *World) DetachMotionLink(source joint.Handle) bool {
	return w.links.Detach(source)
}

func (w *World) QueryMotionLink(source joint.Handle) (motionlink.Descriptor, bool) {
	return w.links.Get(source)
}

// RestoreMotionLinks replaces the link table with persisted entries.
func (w *World) RestoreMotionLinks(entries []motionlink.Entry) (int, error) {
	return w.links.Restore(entries)
}

// JointVelocity returns the coupled-axis velocity of h.
func (w *World) JointVelocity(h joint.Handle) (float64, bool) {
	j, ok := w.joints.Get(h)
	if !ok {
		return 0, false
	}
	if _, ok := j.CoupledAxis(w.bodies); !ok {
		return 0, false
	}
	return j.CoupledAxisVelocity(w.bodies), true
}

// LinkResidual returns how far the link on source is from its ratio.
func (w *World) LinkResidual(source joint.Handle) (float64, bool) {
	return w.gen.Residual(source)
}

// Step advances the world by one Config.Dt.
func (w *World) Step() (StepStats, error) {
	dt := w.cfg.Dt
	w.integ.IntegrateVelocities(w.bodies, w.cfg.Gravity, dt)

	w.batch.Reset()
	params := joint.Params{ERP: w.cfg.ERP}
	w.joints.Each(func(_ joint.Handle, j joint.Joint) {
		j.BuildRows(w.bodies, dt, params, &w.batch)
	})
	gs := w.gen.Generate(&w.batch)

	rows := w.batch.Rows()
	islands := solver.Islands(rows)
	scfg := solver.Config{Iterations: w.cfg.Iterations}
	dynamo.ParallelFor(len(islands), 1, func(start, end int) {
		for _, idx := range islands[start:end] {
			solver.SolveIsland(rows, idx, scfg)
		}
	})

	w.integ.IntegratePositions(w.bodies, dt)

	stats := StepStats{
		Rows:     len(rows),
		LinkRows: gs.Rows,
		Dangling: gs.Dangling,
		Islands:  len(islands),
	}
	for i := range rows {
		switch rows[i].Kind {
		case solver.KindMotor:
			stats.MotorImpulse += math.Abs(rows[i].Impulse)
		case solver.KindLink:
			stats.LinkImpulse += math.Abs(rows[i].Impulse)
		}
	}

	if w.cfg.ValidateState {
		if err := w.validate(); err != nil {
			return stats, &dynamo.SimulationError{Step: w.step, Time: w.time, Wrapped: err}
		}
	}

	w.time += dt
	w.step++
	return stats, nil
}

func (w *World) validate() error {
	var bad body.Handle
	found := false
	w.bodies.Each(func(h body.Handle, b *body.Body) {
		if !found && !b.IsValid() {
			bad, found = h, true
		}
	})
	if found {
		return fmt.Errorf("%w: body %s", dynamo.ErrInvalidState, bad)
	}
	return nil
}
