package engine

// TaskStatus is the lifecycle state of a task. Transitions only move
// forward; a task never returns to an earlier status.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// statusRank orders statuses for the forward-only transition check.
// Completed and failed are both terminal.
var statusRank = map[TaskStatus]int{
	TaskPending:    0,
	TaskInProgress: 1,
	TaskCompleted:  2,
	TaskFailed:     2,
}

// TaskPriority is informational ordering metadata, not a scheduling input.
type TaskPriority string

const (
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityLow    TaskPriority = "low"
)

// Task is one unit of planned work. Insertion order is display order.
type Task struct {
	ID       string
	Content  string
	Status   TaskStatus
	Priority TaskPriority
	Metadata map[string]string
}

// TaskDraft is a task as produced by the plan action, before the state
// record assigns it an id and a pending status.
type TaskDraft struct {
	Content  string
	Priority TaskPriority
	Metadata map[string]string
}
