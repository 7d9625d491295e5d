package motionlink

import (
	"log/slog"

	"github.com/san-kum/gearsim/internal/body"
	"github.com/san-kum/gearsim/internal/joint"
	"github.com/san-kum/gearsim/internal/solver"
)

// JointSource resolves joints to their coupling capability.
type JointSource interface {
	Coupled(h joint.Handle) (joint.Coupled, bool)
}

// GenerateStats summarises one constraint-assembly pass.
type GenerateStats struct {
	Rows     int
	Dangling int
}

// Generator turns the links of a table into solver rows.
type Generator struct {
	table  *Table
	joints JointSource
	bodies body.View
	logger *slog.Logger
}

func NewGenerator(table *Table, joints JointSource, bodies body.View, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Generator{table: table, joints: joints, bodies: bodies, logger: logger}
}

// Generate adds one bilateral row per live link, in source handle order:
//
//	v_source - sign*ratio*v_target = 0
//
// The row is unbounded, so it overrides softer demands on the source axis
// such as a damped motor. Links whose source or target no longer resolves
// are skipped for this pass. Generation never fails.
func (g *Generator) Generate(asm solver.Assembler) GenerateStats {
	var stats GenerateStats
	for _, e := range g.table.Entries() {
		row, ok := g.row(e)
		if !ok {
			stats.Dangling++
			g.logger.Debug("skipping dangling motion link", "source", e.Source, "target", e.Target)
			continue
		}
		asm.Add(row)
		stats.Rows++
	}
	return stats
}

func (g *Generator) row(e Entry) (solver.Row, bool) {
	js, ok := g.axis(e.Source)
	if !ok {
		return solver.Row{}, false
	}
	jt, ok := g.axis(e.Target)
	if !ok {
		return solver.Row{}, false
	}
	feed := jt.Scale(-e.Gain())
	if g.table.Config().Bidirectional {
		return solver.Bilateral(solver.KindLink, js.Plus(feed), 0), true
	}
	return solver.Follow(solver.KindLink, js, feed, 0), true
}

func (g *Generator) axis(h joint.Handle) (solver.Jacobian, bool) {
	c, ok := g.joints.Coupled(h)
	if !ok {
		return nil, false
	}
	return c.CoupledAxis(g.bodies)
}

// Residual returns v_source - sign*ratio*v_target for the link on source.
// ok is false when there is no link or it is dangling.
func (g *Generator) Residual(source joint.Handle) (float64, bool) {
	d, ok := g.table.Get(source)
	if !ok {
		return 0, false
	}
	cs, ok := g.joints.Coupled(source)
	if !ok {
		return 0, false
	}
	ct, ok := g.joints.Coupled(d.Target)
	if !ok {
		return 0, false
	}
	return cs.CoupledAxisVelocity(g.bodies) - d.Gain()*ct.CoupledAxisVelocity(g.bodies), true
}
