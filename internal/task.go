package internal

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	// MaxTitleLength is the longest title accepted, in characters.
	MaxTitleLength = 100

	// MaxDescriptionLength is the longest description accepted, in characters.
	MaxDescriptionLength = 500
)

// Priority indicates how important a Task is.
type Priority string

const (
	// PriorityLow indicates a task with low priority.
	PriorityLow Priority = "low"

	// PriorityMedium indicates a task with medium priority, it is the default one.
	PriorityMedium Priority = "medium"

	// PriorityHigh indicates a task with high priority.
	PriorityHigh Priority = "high"
)

// Validate ...
func (p Priority) Validate() error {
	return validation.Validate(string(p),
		validation.In(string(PriorityLow), string(PriorityMedium), string(PriorityHigh)).Error("must be low, medium, or high"),
	)
}

// Rank returns the ordinal used when sorting by priority, unknown values sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	}

	return 3
}

// Status indicates the column a Task belongs to.
type Status string

const (
	// StatusTodo is the column for tasks not started yet, it is the default one.
	StatusTodo Status = "todo"

	// StatusInProgress is the column for tasks being worked on.
	StatusInProgress Status = "in-progress"

	// StatusCompleted is the column for finished tasks.
	StatusCompleted Status = "completed"
)

// Statuses returns all the columns in board order.
func Statuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusCompleted}
}

// Validate ...
func (s Status) Validate() error {
	return validation.Validate(string(s),
		validation.In(string(StatusTodo), string(StatusInProgress), string(StatusCompleted)).Error("must be todo, in-progress, or completed"),
	)
}

// Rank returns the column order: todo < in-progress < completed, unknown values sort last.
func (s Status) Rank() int {
	switch s {
	case StatusTodo:
		return 0
	case StatusInProgress:
		return 1
	case StatusCompleted:
		return 2
	}

	return 3
}

// Task is an activity that needs to be completed, owned by exactly one user.
type Task struct {
	ID          string
	Title       string
	Description string
	Priority    Priority
	Status      Status
	DueDate     *time.Time
	Position    int
	UserID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate ...
func (t Task) Validate() error {
	if err := validation.ValidateStruct(&t,
		validation.Field(&t.Title, validation.Required, validation.RuneLength(1, MaxTitleLength)),
		validation.Field(&t.Description, validation.RuneLength(0, MaxDescriptionLength)),
		validation.Field(&t.Priority, validation.Required),
		validation.Field(&t.Status, validation.Required),
		validation.Field(&t.Position, validation.Min(0)),
		validation.Field(&t.UserID, validation.Required),
	); err != nil {
		return WrapErrorf(err, ErrorCodeInvalidArgument, "invalid values")
	}

	return nil
}
