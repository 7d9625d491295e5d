// Package motionlink couples the relative motion of one joint to another.
//
// A motion link makes the coupled-axis velocity of a source joint track the
// coupled-axis velocity of a target joint by a fixed ratio, optionally with
// the sign reversed. It reproduces gear trains and belt drives between
// mechanisms that never touch:
//
//   - [Descriptor]: the {target, ratio, reversed} record attached to a joint
//   - [Table]: at most one descriptor per source joint, validated on attach
//   - [CycleGuard]: bounded walk of the link graph run before each attach
//   - [Generator]: emits one bilateral velocity row per live link per step
//
// # Weak targets
//
// A descriptor refers to its target by generation-checked handle and never
// keeps it alive. Removing a source joint must be reported through
// [Table.OnJointRemoved]; removing a target is detected lazily, and the
// [Generator] skips the link for as long as the target is missing.
//
// # Cycles
//
// Link chains may fan in and may be arbitrarily long. A chain that closes on
// itself is rejected with [ErrCycleDetected] unless [Config.AllowCycles] is
// set, in which case the solver settles contradictory rows to a least-squares
// compromise. [Table.Cycles] reports the cycles currently present.
//
// # Thread Safety
//
// A Table is NOT safe for concurrent use. Attach and Detach must not run
// while a step that reads the table is in progress; the world that owns the
// table serialises both.
package motionlink
