package sim

import "fmt"

// ContractViolation is the panic value raised when a process body breaks a
// kernel contract, e.g. a negative delay or a release of a lease it does not
// hold. It indicates a programming error, never a data condition, so the
// kernel does not recover it.
type ContractViolation struct {
	Op     string
	Detail string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("scheduler contract violation in %s: %s", e.Op, e.Detail)
}

func violate(op, format string, args ...any) {
	panic(&ContractViolation{Op: op, Detail: fmt.Sprintf(format, args...)})
}
