package motionlink

import (
	"log/slog"
	"slices"

	"github.com/san-kum/gearsim/internal/joint"
)

// JointStore answers whether a joint handle currently resolves.
type JointStore interface {
	Contains(h joint.Handle) bool
}

type Config struct {
	// AllowCycles lets Attach close a cycle instead of failing with
	// ErrCycleDetected. Cyclic chains are solved as a compromise.
	AllowCycles bool

	// Bidirectional makes link rows push the target joint's bodies as well,
	// like a physical gear mesh. By default the source follows the target
	// and the target never feels the link.
	Bidirectional bool
}

func DefaultConfig() Config {
	return Config{}
}

// Table maps each source joint to at most one descriptor. One table belongs
// to one joint store.
type Table struct {
	links  map[joint.Handle]Descriptor
	joints JointStore
	guard  CycleGuard
	cfg    Config
	logger *slog.Logger
}

func NewTable(joints JointStore, cfg Config, logger *slog.Logger) *Table {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Table{
		links:  make(map[joint.Handle]Descriptor),
		joints: joints,
		cfg:    cfg,
		logger: logger,
	}
}

func (t *Table) Config() Config { return t.cfg }

// Attach links source to target, replacing any link source already had.
// Failures are *LinkError values wrapping ErrSelfLink, ErrInvalidRatio,
// ErrUnknownJoint or ErrCycleDetected, checked in that order.
func (t *Table) Attach(source, target joint.Handle, ratio float64, reversed bool) error {
	return t.attach(Entry{Source: source, Descriptor: Descriptor{Target: target, Ratio: ratio, Reversed: reversed}}, true)
}

func (t *Table) attach(e Entry, requireTarget bool) error {
	fail := func(err error, cycle []joint.Handle) error {
		return &LinkError{Source: e.Source, Target: e.Target, Ratio: e.Ratio, Cycle: cycle, Wrapped: err}
	}

	if e.Source == e.Target {
		return fail(ErrSelfLink, nil)
	}
	if !validRatio(e.Ratio) {
		return fail(ErrInvalidRatio, nil)
	}
	if !t.joints.Contains(e.Source) || (requireTarget && !t.joints.Contains(e.Target)) {
		return fail(ErrUnknownJoint, nil)
	}

	if cycle, found := t.guard.Check(t, e.Source, e.Target); found {
		if !t.cfg.AllowCycles {
			return fail(ErrCycleDetected, cycle)
		}
		t.logger.Warn("motion link closes a cycle", "source", e.Source, "target", e.Target, "length", len(cycle)-1)
	}

	t.links[e.Source] = e.Descriptor
	return nil
}

// Detach removes the link on source and reports whether one existed.
func (t *Table) Detach(source joint.Handle) bool {
	if _, ok := t.links[source]; !ok {
		return false
	}
	delete(t.links, source)
	return true
}

func (t *Table) Get(source joint.Handle) (Descriptor, bool) {
	d, ok := t.links[source]
	return d, ok
}

// OnJointRemoved drops the link owned by a removed joint. Links that target
// the removed joint stay and are skipped as dangling when stepping.
func (t *Table) OnJointRemoved(h joint.Handle) {
	delete(t.links, h)
}

// Next implements Graph.
func (t *Table) Next(h joint.Handle) (joint.Handle, bool) {
	d, ok := t.links[h]
	return d.Target, ok
}

func (t *Table) Len() int { return len(t.links) }

// Sources returns linked source joints in handle order.
func (t *Table) Sources() []joint.Handle {
	keys := make([]joint.Handle, 0, len(t.links))
	for h := range t.links {
		keys = append(keys, h)
	}
	slices.SortFunc(keys, func(a, b joint.Handle) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		default:
			return 0
		}
	})
	return keys
}

// Entries returns every link in source handle order.
func (t *Table) Entries() []Entry {
	sources := t.Sources()
	out := make([]Entry, len(sources))
	for i, s := range sources {
		out[i] = Entry{Source: s, Descriptor: t.links[s]}
	}
	return out
}

// Dangling reports whether the link on source points at a missing joint.
func (t *Table) Dangling(source joint.Handle) bool {
	d, ok := t.links[source]
	return ok && !t.joints.Contains(d.Target)
}

// Cycles lists the cycles currently in the table.
func (t *Table) Cycles() [][]joint.Handle {
	return t.guard.Cycles(t, t.Sources())
}

// Snapshot is Entries under the name used by persistence.
func (t *Table) Snapshot() []Entry {
	return t.Entries()
}

// Restore replaces the table contents with entries. Entries whose source no
// longer resolves are dropped; targets are not checked, so links restored
// against a recycled slot surface as dangling rather than rebinding.
// Restore stops at the first invalid entry and leaves the table empty.
func (t *Table) Restore(entries []Entry) (restored int, err error) {
	t.links = make(map[joint.Handle]Descriptor, len(entries))
	for _, e := range entries {
		if !t.joints.Contains(e.Source) {
			t.logger.Debug("dropping motion link for missing source", "source", e.Source)
			continue
		}
		if err := t.attach(e, false); err != nil {
			t.links = make(map[joint.Handle]Descriptor)
			return 0, err
		}
		restored++
	}
	return restored, nil
}
