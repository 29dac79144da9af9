package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors. Physics itself never fails; these surface at the host boundary.
var (
	// ErrInvalidState indicates a state vector with NaN or Inf values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrInvalidConfig indicates a headless run configuration that cannot be executed.
	ErrInvalidConfig = errors.New("dynamo: invalid run configuration")

	// ErrClosed indicates an operation on an unmounted simulation.
	ErrClosed = errors.New("dynamo: simulation closed")
)

// SimulationError wraps an error with frame context.
type SimulationError struct {
	Frame   int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("frame %d (t=%.4f): %v", e.Frame, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
