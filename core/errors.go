package core

import (
	"errors"
	"syscall"
)

// Errors reported by the LWP operations. Callers match them with errors.Is;
// the runtime wraps them with the offending id where one exists.
var (
	// ErrNotFound is returned by id-addressed operations when no live thread
	// carries the id.
	ErrNotFound = errors.New("lwp: no such thread")

	// ErrTimedOut is returned by Park when its deadline elapsed without a wake.
	ErrTimedOut = errors.New("lwp: park timed out")

	// ErrResourceExhausted is returned by Spawn when the scheduler could not
	// create a runnable unit.
	ErrResourceExhausted = errors.New("lwp: scheduler resources exhausted")

	// ErrOutOfMemory is returned when a control block or a thread name could
	// not be allocated.
	ErrOutOfMemory = errors.New("lwp: out of memory")

	// ErrUnsupported is returned by the parts of the stub surface that report
	// the call as not implemented.
	ErrUnsupported = errors.New("lwp: operation not supported")

	// ErrNotSleeping is returned by Wakeup when the target is not parked.
	ErrNotSleeping = errors.New("lwp: thread is not sleeping")
)

// Errno maps an error returned by the runtime to the return code the LWP
// syscall contract uses for it. A nil error maps to 0; unknown errors map to
// EINVAL.
func Errno(err error) syscall.Errno {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrNotFound):
		return syscall.ESRCH
	case errors.Is(err, ErrTimedOut):
		return syscall.ETIMEDOUT
	case errors.Is(err, ErrResourceExhausted):
		return syscall.EBUSY
	case errors.Is(err, ErrOutOfMemory):
		return syscall.ENOMEM
	case errors.Is(err, ErrUnsupported):
		return syscall.ENOSYS
	case errors.Is(err, ErrNotSleeping):
		return syscall.ENODEV
	default:
		return syscall.EINVAL
	}
}
