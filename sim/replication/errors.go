package replication

import (
	"errors"
	"fmt"
)

// ErrReplicationFailed matches every error returned for a failed replication.
var ErrReplicationFailed = errors.New("replication failed")

// RunError is the failure of one replication. It matches both
// ErrReplicationFailed and its cause under errors.Is and errors.As.
type RunError struct {
	Rep int
	Err error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("replication %d failed: %v", e.Rep, e.Err)
}

func (e *RunError) Unwrap() []error {
	return []error{ErrReplicationFailed, e.Err}
}

// panicError turns a recovered panic value into an error, keeping error
// values (such as *sim.ContractViolation) reachable with errors.As.
func panicError(v any) error {
	if err, ok := v.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", v)
}
