package motionlink

import (
	"errors"
	"fmt"
	"strings"

	"github.com/san-kum/gearsim/internal/joint"
)

// Attach validation errors.
var (
	// ErrSelfLink indicates a joint was linked to itself.
	ErrSelfLink = errors.New("motionlink: source and target are the same joint")

	// ErrInvalidRatio indicates a zero, NaN or infinite ratio.
	ErrInvalidRatio = errors.New("motionlink: ratio must be finite and nonzero")

	// ErrUnknownJoint indicates a handle that does not resolve in the joint store.
	ErrUnknownJoint = errors.New("motionlink: unknown joint")

	// ErrCycleDetected indicates the link would close a cycle and cycles are not allowed.
	ErrCycleDetected = errors.New("motionlink: link would close a cycle")

	// ErrMalformedRecord indicates a persisted descriptor that cannot be decoded.
	ErrMalformedRecord = errors.New("motionlink: malformed descriptor record")
)

// LinkError wraps an attach failure with the link that caused it.
type LinkError struct {
	Source  joint.Handle
	Target  joint.Handle
	Ratio   float64
	Cycle   []joint.Handle
	Wrapped error
}

func (e *LinkError) Error() string {
	msg := fmt.Sprintf("%s (%s -> %s)", e.Wrapped, e.Source, e.Target)
	if len(e.Cycle) > 0 {
		parts := make([]string, len(e.Cycle))
		for i, h := range e.Cycle {
			parts[i] = h.String()
		}
		msg += ": " + strings.Join(parts, " -> ")
	}
	return msg
}

func (e *LinkError) Unwrap() error {
	return e.Wrapped
}
