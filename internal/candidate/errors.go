package candidate

import (
	"errors"
	"fmt"
)

// ErrCandidateNotFound is returned when an id does not exist in the current pool.
var ErrCandidateNotFound = errors.New("candidate not found")

// InvalidCandidateError describes a malformed record that is excluded from the pool.
type InvalidCandidateError struct {
	ID     int
	Name   string
	Index  int
	Reason string
}

func (e *InvalidCandidateError) Error() string {
	switch {
	case e.ID > 0:
		return fmt.Sprintf("invalid candidate %d: %s", e.ID, e.Reason)
	case e.Name != "":
		return fmt.Sprintf("invalid candidate %q: %s", e.Name, e.Reason)
	case e.Index > 0:
		return fmt.Sprintf("invalid candidate record #%d: %s", e.Index, e.Reason)
	default:
		return "invalid candidate: " + e.Reason
	}
}

// IsInvalid reports whether err is or wraps an InvalidCandidateError.
func IsInvalid(err error) bool {
	var invalid *InvalidCandidateError
	return errors.As(err, &invalid)
}
