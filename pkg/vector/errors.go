package vector

import (
	"errors"
	"fmt"
)

// ErrDimensionMismatch is returned when a record's vector length differs from
// the index dimension.
var ErrDimensionMismatch = errors.New("vector: dimension mismatch")

// StatusError carries the backend HTTP status so callers can distinguish
// transient server faults from permanent request errors.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("vector store returned %d: %s", e.Code, e.Message)
}

// IsTransient reports whether the error is a server-side fault worth retrying.
// Client errors (4xx) and local errors are permanent.
func IsTransient(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500
	}
	return false
}
