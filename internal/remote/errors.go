package remote

import (
	"errors"
	"fmt"
)

// Kind classifies a remote failure so callers can decide between falling
// back to the local snapshot store and marking a feature failed.
type Kind string

const (
	// KindUnavailable is a transport-level failure on a CRUD call; the
	// remote never answered. Recoverable via the fallback store.
	KindUnavailable Kind = "remote_unavailable"

	// KindRejected means the remote answered a CRUD call with an error status.
	KindRejected Kind = "remote_rejected"

	// KindExecutionTimeout means the execute call exceeded its deadline.
	KindExecutionTimeout Kind = "execution_timeout"

	// KindExecutionError is any other failure of the execute call.
	KindExecutionError Kind = "execution_error"
)

// Error carries the failure class alongside the operation and cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the failure class of err, or "" if err is not a remote error.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}

// IsUnavailable reports whether err is a transport-level CRUD failure.
func IsUnavailable(err error) bool {
	return KindOf(err) == KindUnavailable
}
