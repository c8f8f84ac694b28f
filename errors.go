package netcode

import "fmt"

// InvariantViolation is the panic value raised when an internal invariant
// the engine depends on does not hold. Per the error-handling policy (see
// design notes), this can only happen from a programmer error in seeding
// or store implementation, or from a failure to encode an outbound
// message or the application's own input, never from network input:
// protocol violations and duplicate inserts are logged and dropped
// instead of panicking.
type InvariantViolation struct {
	What string
}

func (e InvariantViolation) Error() string {
	return fmt.Sprintf("netcode: invariant violation: %s", e.What)
}

func panicInvariant(format string, args ...any) {
	panic(InvariantViolation{What: fmt.Sprintf(format, args...)})
}
