package errors

// Error is a constant-friendly error type. Values of it can be declared with const and
// compared directly.
type Error string

func (e Error) Error() string { return string(e) }

const (
	// ErrNoPlanFound is returned when search is exhausted and the root group has no physical winner.
	ErrNoPlanFound = Error("no physical plan found for the root group")
	// ErrBudgetExceeded marks an alternative abandoned by branch-and-bound pruning.
	// It is a local signal and is never returned to callers of Optimize.
	ErrBudgetExceeded = Error("cost budget exceeded")
	// ErrInvariantViolation means memo consistency can no longer be trusted and the
	// session was aborted.
	ErrInvariantViolation = Error("optimizer invariant violation")
)
