package store

import "fmt"

// SelectionFullError is returned when a manual pick would exceed the selection limit.
type SelectionFullError struct {
	Limit int
}

func (e *SelectionFullError) Error() string {
	return fmt.Sprintf("selection is full: at most %d candidates can be selected", e.Limit)
}
