package internal

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CreateParams defines the arguments used for creating Task records, the position is always
// computed by the store.
type CreateParams struct {
	UserID      string     `json:"user"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	DueDate     *time.Time `json:"dueDate"`
}

// WithDefaults returns a copy with trimmed strings and the default priority and status applied.
func (c CreateParams) WithDefaults() CreateParams {
	c.Title = strings.TrimSpace(c.Title)
	c.Description = strings.TrimSpace(c.Description)

	if c.Priority == "" {
		c.Priority = PriorityMedium
	}

	if c.Status == "" {
		c.Status = StatusTodo
	}

	return c
}

// Validate indicates whether the fields are valid or not.
func (c CreateParams) Validate() error {
	if err := validation.ValidateStruct(&c,
		validation.Field(&c.UserID, validation.Required),
		validation.Field(&c.Title,
			validation.Required.Error("must be between 1 and 100 characters"),
			validation.RuneLength(1, MaxTitleLength).Error("must be between 1 and 100 characters")),
		validation.Field(&c.Description,
			validation.RuneLength(0, MaxDescriptionLength).Error("cannot exceed 500 characters")),
		validation.Field(&c.Priority),
		validation.Field(&c.Status),
		validation.Field(&c.DueDate, validation.By(inTheFuture(time.Now()))),
	); err != nil {
		return WrapErrorf(err, ErrorCodeInvalidArgument, "invalid values")
	}

	return nil
}

// UpdateParams defines the arguments used for updating Task records, nil fields are left untouched.
type UpdateParams struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Priority    *Priority  `json:"priority"`
	Status      *Status    `json:"status"`
	DueDate     *time.Time `json:"dueDate"`
	Position    *int       `json:"position"`
}

// WithDefaults returns a copy with trimmed strings.
func (u UpdateParams) WithDefaults() UpdateParams {
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		u.Title = &title
	}

	if u.Description != nil {
		description := strings.TrimSpace(*u.Description)
		u.Description = &description
	}

	return u
}

// IsZero determines whether no field is going to be updated.
func (u UpdateParams) IsZero() bool {
	return u.Title == nil &&
		u.Description == nil &&
		u.Priority == nil &&
		u.Status == nil &&
		u.DueDate == nil &&
		u.Position == nil
}

// Moves indicates whether applying the update changes the column or the position of the task.
func (u UpdateParams) Moves(task Task) bool {
	if u.Status != nil && *u.Status != task.Status {
		return true
	}

	return u.Position != nil && *u.Position != task.Position
}

// Target returns the column slot the update moves task to: a new status without a position appends
// the task to the end of that column.
func (u UpdateParams) Target(task Task) ColumnIndex {
	to := ColumnIndex{Status: task.Status, Index: task.Position}

	if u.Status != nil && *u.Status != task.Status {
		to.Status = *u.Status
		to.Index = AppendIndex
	}

	if u.Position != nil {
		to.Index = *u.Position
	}

	return to
}

// Apply returns a copy of task with the non-nil fields set, status and position are left to the
// ordering plan.
func (u UpdateParams) Apply(task Task) Task {
	if u.Title != nil {
		task.Title = *u.Title
	}

	if u.Description != nil {
		task.Description = *u.Description
	}

	if u.Priority != nil {
		task.Priority = *u.Priority
	}

	if u.DueDate != nil {
		due := *u.DueDate
		task.DueDate = &due
	}

	return task
}

// Validate indicates whether the fields are valid or not.
func (u UpdateParams) Validate() error {
	if err := validation.ValidateStruct(&u,
		validation.Field(&u.Title,
			validation.NilOrNotEmpty.Error("must be between 1 and 100 characters"),
			validation.RuneLength(1, MaxTitleLength).Error("must be between 1 and 100 characters")),
		validation.Field(&u.Description,
			validation.RuneLength(0, MaxDescriptionLength).Error("cannot exceed 500 characters")),
		validation.Field(&u.Priority, validation.NilOrNotEmpty.Error("must be low, medium, or high")),
		validation.Field(&u.Status, validation.NilOrNotEmpty.Error("must be todo, in-progress, or completed")),
		validation.Field(&u.DueDate, validation.By(inTheFuture(time.Now()))),
		validation.Field(&u.Position, validation.Min(0)),
	); err != nil {
		return WrapErrorf(err, ErrorCodeInvalidArgument, "invalid values")
	}

	return nil
}

// ListParams defines the arguments used for listing the Task records of a user.
type ListParams struct {
	UserID   string    `json:"user"`
	Status   *Status   `json:"status"`
	Priority *Priority `json:"priority"`
	Sort     []SortKey `json:"sort"`
}

// Validate indicates whether the fields are valid or not.
func (l ListParams) Validate() error {
	if err := validation.ValidateStruct(&l,
		validation.Field(&l.UserID, validation.Required),
		validation.Field(&l.Status),
		validation.Field(&l.Priority),
	); err != nil {
		return WrapErrorf(err, ErrorCodeInvalidArgument, "invalid values")
	}

	return nil
}

// Matches indicates whether task satisfies the ownership and the filters.
func (l ListParams) Matches(task Task) bool {
	if task.UserID != l.UserID {
		return false
	}

	if l.Status != nil && task.Status != *l.Status {
		return false
	}

	if l.Priority != nil && task.Priority != *l.Priority {
		return false
	}

	return true
}

// SortKeys returns the requested order, falling back to the default one.
func (l ListParams) SortKeys() []SortKey {
	if len(l.Sort) == 0 {
		return DefaultSort()
	}

	return l.Sort
}

// ColumnIndex identifies a slot inside a status column.
type ColumnIndex struct {
	Status Status `json:"status"`
	Index  int    `json:"index"`
}

// Validate ...
func (c ColumnIndex) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Status, validation.Required),
		validation.Field(&c.Index, validation.Min(0)),
	)
}

// MoveParams defines the arguments used for moving one task to a new column slot, also known as
// the drag result.
type MoveParams struct {
	UserID string      `json:"user"`
	TaskID string      `json:"task"`
	From   ColumnIndex `json:"from"`
	To     ColumnIndex `json:"to"`
}

// Validate indicates whether the fields are valid or not.
func (m MoveParams) Validate() error {
	if err := validation.ValidateStruct(&m,
		validation.Field(&m.UserID, validation.Required),
		validation.Field(&m.TaskID, validation.Required),
		validation.Field(&m.From, validation.Skip.When(m.From.Status == "")),
		validation.Field(&m.To),
	); err != nil {
		return WrapErrorf(err, ErrorCodeInvalidArgument, "invalid values")
	}

	return nil
}

// ReorderResult is what a move returns: every task of the user in board order plus the moved one.
type ReorderResult struct {
	Updated []Task
	Task    Task
}

func inTheFuture(now time.Time) validation.RuleFunc {
	return func(value interface{}) error {
		t, _ := value.(*time.Time)
		if t == nil {
			return nil
		}

		if !t.After(now) {
			return errors.New("must be in the future")
		}

		return nil
	}
}
