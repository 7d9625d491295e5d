// Package dynamo provides shared simulation primitives.
//
// The package defines the pieces every stepping layer agrees on:
//
//   - [Config]: step length, duration and solver iteration budget
//   - [SimulationError]: an error tagged with the step that produced it
//   - [ParallelFor]: fan-out helper used to solve independent islands
//
// # Thread Safety
//
// Nothing here holds shared state. [ParallelFor] only calls fn on disjoint
// ranges; callers must make sure work in different ranges does not alias.
package dynamo
