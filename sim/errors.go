package sim

import (
	"errors"
	"fmt"
)

// ErrStepSizeUnderflow marks a step the controller could not complete even at
// the minimum step size. It is fatal: retrying cannot help.
var ErrStepSizeUnderflow = errors.New("time step underflow: solver failed at DtMin")

// ConfigurationError wraps an input problem detected before the first
// step. Nothing has run when one is returned.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string { return "configuration: " + e.Err.Error() }
func (e *ConfigurationError) Unwrap() error { return e.Err }

// PhysicalSanityError reports a state that passed the solver but violates a
// physical bound, for instance a negative temperature. It is recoverable:
// the step is rejected and retried at a smaller dt, like non-convergence.
type PhysicalSanityError struct {
	Time  float64
	Field string
	Cell  int
	Value float64
}

func (e *PhysicalSanityError) Error() string {
	return fmt.Sprintf("physical sanity violated at t=%.6f: %s[%d] = %g", e.Time, e.Field, e.Cell, e.Value)
}
