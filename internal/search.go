package internal

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	defaultSearchSize = 10
	maxSearchSize     = 100
)

// SearchParams defines the arguments used for full-text searching the Task records of a user.
type SearchParams struct {
	UserID   string    `json:"user"`
	Query    string    `json:"q"`
	Status   *Status   `json:"status"`
	Priority *Priority `json:"priority"`
	From     int64     `json:"from"`
	Size     int64     `json:"size"`
}

// WithDefaults returns a copy with a trimmed query and the default page size applied.
func (a SearchParams) WithDefaults() SearchParams {
	a.Query = strings.TrimSpace(a.Query)

	if a.Size == 0 {
		a.Size = defaultSearchSize
	}

	return a
}

// Validate indicates whether the fields are valid or not.
func (a SearchParams) Validate() error {
	if err := validation.ValidateStruct(&a,
		validation.Field(&a.UserID, validation.Required),
		validation.Field(&a.Query, validation.Required),
		validation.Field(&a.Status),
		validation.Field(&a.Priority),
		validation.Field(&a.From, validation.Min(int64(0))),
		validation.Field(&a.Size, validation.Min(int64(1)), validation.Max(int64(maxSearchSize))),
	); err != nil {
		return WrapErrorf(err, ErrorCodeInvalidArgument, "invalid values")
	}

	return nil
}

// Matches indicates whether task belongs to the user, satisfies the filters and contains the query
// in its title or description, ignoring case.
func (a SearchParams) Matches(task Task) bool {
	filters := ListParams{UserID: a.UserID, Status: a.Status, Priority: a.Priority}
	if !filters.Matches(task) {
		return false
	}

	q := strings.ToLower(a.Query)

	return strings.Contains(strings.ToLower(task.Title), q) ||
		strings.Contains(strings.ToLower(task.Description), q)
}

// SearchResults defines the collection of tasks that were found.
type SearchResults struct {
	Tasks []Task
	Total int64
}
