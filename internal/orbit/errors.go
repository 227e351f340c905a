package orbit

import (
	"errors"
	"fmt"
)

// Domain errors for simulation and playback operations.
var (
	// ErrInvalidConfig indicates a rejected construction parameter.
	ErrInvalidConfig = errors.New("orbit: invalid configuration")

	// ErrDiverged indicates the numerical state left the representable
	// range (NaN or Inf appeared in a computed frame).
	ErrDiverged = errors.New("orbit: state diverged (NaN or Inf)")

	// ErrEmptyTrajectory indicates an operation that needs at least one frame.
	ErrEmptyTrajectory = errors.New("orbit: trajectory has no frames")
)

// FrameError ties an error to the step and simulated time it occurred at.
type FrameError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *FrameError) Unwrap() error {
	return e.Wrapped
}
