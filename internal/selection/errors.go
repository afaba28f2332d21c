package selection

import "fmt"

// InsufficientCandidatesError is returned when the pool cannot fill a team.
type InsufficientCandidatesError struct {
	Have int
	Need int
}

func (e *InsufficientCandidatesError) Error() string {
	return fmt.Sprintf("insufficient candidates: have %d eligible, need %d", e.Have, e.Need)
}
