package internal

import (
	"sort"
	"strings"
)

// SortField is a Task attribute tasks can be ordered by.
type SortField string

const (
	SortFieldCreatedAt SortField = "createdAt"
	SortFieldUpdatedAt SortField = "updatedAt"
	SortFieldDueDate   SortField = "dueDate"
	SortFieldPriority  SortField = "priority"
	SortFieldStatus    SortField = "status"
	SortFieldTitle     SortField = "title"
	SortFieldPosition  SortField = "position"
)

// SortKey is one field of a sort order.
type SortKey struct {
	Field SortField
	Desc  bool
}

// String returns the key using the leading sign convention, for example "-createdAt".
func (k SortKey) String() string {
	if k.Desc {
		return "-" + string(k.Field)
	}

	return string(k.Field)
}

// DefaultSort is the order used when none is requested: most recently created first.
func DefaultSort() []SortKey {
	return []SortKey{{Field: SortFieldCreatedAt, Desc: true}}
}

// ParseSort converts a sort string like "status -createdAt" or "status,-createdAt" into keys, a
// leading "-" means descending and a leading "+" is accepted for ascending. An empty string returns
// the default order.
func ParseSort(s string) ([]SortKey, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' '
	})

	if len(fields) == 0 {
		return DefaultSort(), nil
	}

	res := make([]SortKey, 0, len(fields))

	for _, f := range fields {
		var key SortKey

		switch {
		case strings.HasPrefix(f, "-"):
			key.Desc = true
			f = f[1:]
		case strings.HasPrefix(f, "+"):
			f = f[1:]
		}

		key.Field = SortField(f)

		switch key.Field {
		case SortFieldCreatedAt, SortFieldUpdatedAt, SortFieldDueDate, SortFieldPriority,
			SortFieldStatus, SortFieldTitle, SortFieldPosition:
		default:
			return nil, NewFieldErrorf(ErrorCodeInvalidArgument, "sort", "unknown field %q", f)
		}

		res = append(res, key)
	}

	return res, nil
}

// FormatSort is the inverse of ParseSort.
func FormatSort(keys []SortKey) string {
	res := make([]string, len(keys))
	for i, k := range keys {
		res[i] = k.String()
	}

	return strings.Join(res, ",")
}

// SortTasks orders tasks in place using keys, remaining ties are ordered by id.
func SortTasks(tasks []Task, keys []SortKey) {
	sort.Slice(tasks, func(i, j int) bool {
		for _, k := range keys {
			c := compare(tasks[i], tasks[j], k.Field)
			if c == 0 {
				continue
			}

			if k.Desc {
				return c > 0
			}

			return c < 0
		}

		return tasks[i].ID < tasks[j].ID
	})
}

// SortByColumn orders tasks in place by column (todo, in-progress, completed) and then by position.
func SortByColumn(tasks []Task) {
	SortTasks(tasks, []SortKey{{Field: SortFieldStatus}, {Field: SortFieldPosition}})
}

func compare(a, b Task, field SortField) int {
	switch field {
	case SortFieldCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case SortFieldUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case SortFieldDueDate:
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return 0
		case a.DueDate == nil:
			return 1
		case b.DueDate == nil:
			return -1
		}

		return a.DueDate.Compare(*b.DueDate)
	case SortFieldPriority:
		return a.Priority.Rank() - b.Priority.Rank()
	case SortFieldStatus:
		return a.Status.Rank() - b.Status.Rank()
	case SortFieldTitle:
		return strings.Compare(a.Title, b.Title)
	case SortFieldPosition:
		return a.Position - b.Position
	}

	return 0
}
