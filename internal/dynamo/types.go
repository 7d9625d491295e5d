package dynamo

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Config controls a simulation run.
type Config struct {
	Dt            float64
	Duration      float64
	Iterations    int     // solver sweeps per step
	ERP           float64 // positional error correction per step
	Gravity       r3.Vec
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            1.0 / 60,
		Duration:      2.0,
		Iterations:    16,
		ERP:           0.2,
		Gravity:       r3.Vec{Y: -9.81},
		ValidateState: true,
	}
}

// Validate checks the parameters a step depends on.
func (c Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrParameterBounds, c.Dt)
	}
	if c.Duration < 0 {
		return fmt.Errorf("%w: duration must not be negative, got %f", ErrParameterBounds, c.Duration)
	}
	if c.Iterations < 1 {
		return fmt.Errorf("%w: iterations must be at least 1, got %d", ErrParameterBounds, c.Iterations)
	}
	if c.ERP < 0 || c.ERP > 1 {
		return fmt.Errorf("%w: erp must be within [0, 1], got %f", ErrParameterBounds, c.ERP)
	}
	return nil
}

// Steps returns the number of whole steps in Duration.
func (c Config) Steps() int {
	return int(c.Duration/c.Dt + 1e-9)
}
