package pelbuf

import (
	"errors"
	"fmt"
)

// ErrPrecondition is matched by every contract violation reported by this
// package. Violations are caller bugs: they are raised with panic and carry
// a *PreconditionError.
var ErrPrecondition = errors.New("pelbuf: precondition violated")

// PreconditionError describes a violated invariant.
type PreconditionError struct {
	Op  string // operation that detected the violation
	Msg string
}

func (e *PreconditionError) Error() string {
	return "pelbuf: " + e.Op + ": " + e.Msg
}

// Is reports whether target is ErrPrecondition.
func (e *PreconditionError) Is(target error) bool {
	return target == ErrPrecondition
}

// check panics with a *PreconditionError when cond is false.
func check(cond bool, op, format string, args ...any) {
	if cond {
		return
	}
	panic(&PreconditionError{Op: op, Msg: fmt.Sprintf(format, args...)})
}

// checkd is check in builds tagged pelbufdebug and a no-op otherwise.
func checkd(cond bool, op, format string, args ...any) {
	if debugChecks {
		check(cond, op, format, args...)
	}
}
