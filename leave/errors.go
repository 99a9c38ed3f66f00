/*
errors.go - Hard errors for malformed requests

Business outcomes are never errors here: a rejected request, including one
landing fully on loss of pay, comes back as a Decision. Errors are reserved
for requests the caller should never have built.
*/
package leave

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRange means the request's end date precedes its start date.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrUnknownLeaveType means the request carries a TypeKey outside the
	// closed enum.
	ErrUnknownLeaveType = errors.New("unknown leave type")
)

// InvalidRangeError carries the offending window.
type InvalidRangeError struct {
	Start Date
	End   Date
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range: end %s before start %s", e.End, e.Start)
}

func (e *InvalidRangeError) Unwrap() error {
	return ErrInvalidRange
}
