package engine

import "fmt"

// ErrUnknownTask is returned when a status update names a task id that is
// not in the state record.
type ErrUnknownTask struct {
	ID string
}

// Error returns a formatted error message including the task id.
func (e *ErrUnknownTask) Error() string {
	return fmt.Sprintf("engine: unknown task: %s", e.ID)
}

// ErrInvalidTransition is returned when a status update would move a task
// backward. Task statuses only move forward.
type ErrInvalidTransition struct {
	ID   string
	From TaskStatus
	To   TaskStatus
}

// Error returns a formatted error message describing the rejected transition.
func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("engine: task %s: invalid transition %s -> %s", e.ID, e.From, e.To)
}
