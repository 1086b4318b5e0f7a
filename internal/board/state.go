// Package board keeps the client side copy of the tasks of the signed in user and computes the
// views rendered from it.
package board

import (
	"sync"

	"github.com/sanLimbu/taskboard-api/internal"
)

// Filters is the active selection, nil fields select everything and an empty Sort keeps board
// order.
type Filters struct {
	Status   *internal.Status
	Priority *internal.Priority
	Sort     []internal.SortKey
}

func (f Filters) clone() Filters {
	res := Filters{}

	if f.Status != nil {
		status := *f.Status
		res.Status = &status
	}

	if f.Priority != nil {
		priority := *f.Priority
		res.Priority = &priority
	}

	if len(f.Sort) > 0 {
		res.Sort = append([]internal.SortKey(nil), f.Sort...)
	}

	return res
}

// FilterField names one field of Filters.
type FilterField int

const (
	FilterStatus FilterField = iota
	FilterPriority
	FilterSort
)

// State is the cached board, it is only changed through its transitions.
type State struct {
	mu      sync.RWMutex
	tasks   []internal.Task
	filters Filters
	user    *internal.User
}

// NewState instantiates an empty State.
func NewState() *State {
	return &State{}
}

// Replace installs a fetched list in board order.
func (s *State) Replace(tasks []internal.Task) {
	res := make([]internal.Task, len(tasks))
	copy(res, tasks)

	internal.SortByColumn(res)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = res
}

// Insert prepends a created task.
func (s *State) Insert(task internal.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = append([]internal.Task{task}, s.tasks...)
}

// Update replaces the task with the same id in place, unknown tasks are ignored.
func (s *State) Update(task internal.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID == task.ID {
			s.tasks[i] = task

			return
		}
	}
}

// Remove drops the task with id.
func (s *State) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.tasks[:0:0]

	for _, t := range s.tasks {
		if t.ID != id {
			res = append(res, t)
		}
	}

	s.tasks = res
}

// ApplyReorder installs the result of a move: the moved task is replaced, the cached tasks included
// in res.Updated take the returned values and the list is put back in board order.
func (s *State) ApplyReorder(res internal.ReorderResult) {
	updated := make(map[string]internal.Task, len(res.Updated)+1)
	for _, t := range res.Updated {
		updated[t.ID] = t
	}

	updated[res.Task.ID] = res.Task

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := make([]internal.Task, len(s.tasks))

	for i, t := range s.tasks {
		if u, ok := updated[t.ID]; ok {
			t = u
		}

		tasks[i] = t
	}

	internal.SortByColumn(tasks)

	s.tasks = tasks
}

// SetFilters changes the fields of the selection that are set in f, use ClearFilter to drop one
// field or ClearFilters to select everything again.
func (s *State) SetFilters(f Filters) {
	f = f.clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	if f.Status != nil {
		s.filters.Status = f.Status
	}

	if f.Priority != nil {
		s.filters.Priority = f.Priority
	}

	if f.Sort != nil {
		s.filters.Sort = f.Sort
	}
}

// ClearFilter drops one field of the selection, the others are kept.
func (s *State) ClearFilter(field FilterField) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch field {
	case FilterStatus:
		s.filters.Status = nil
	case FilterPriority:
		s.filters.Priority = nil
	case FilterSort:
		s.filters.Sort = nil
	}
}

// ClearFilters selects every task.
func (s *State) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filters = Filters{}
}

// Filters returns the active selection.
func (s *State) Filters() Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filters.clone()
}

// SetUser records the signed in user.
func (s *State) SetUser(user internal.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = &user
}

// User returns the signed in user, if any.
func (s *State) User() (internal.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return internal.User{}, false
	}

	return *s.user, true
}

// Reset forgets everything, it is used when signing out.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = nil
	s.filters = Filters{}
	s.user = nil
}

// Tasks returns a copy of the cached tasks in their current order.
func (s *State) Tasks() []internal.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]internal.Task, len(s.tasks))
	copy(res, s.tasks)

	return res
}

// ByStatus returns the column status ordered by position.
func (s *State) ByStatus(status internal.Status) []internal.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]internal.Task, 0, len(s.tasks))

	for _, t := range s.tasks {
		if t.Status == status {
			res = append(res, t)
		}
	}

	internal.SortTasks(res, []internal.SortKey{{Field: internal.SortFieldPosition}})

	return res
}

// Stats counts the cached tasks.
func (s *State) Stats() internal.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return internal.NewStats(s.tasks)
}

// Filtered returns the cached tasks matching the active selection, in the selected order when one
// is set.
func (s *State) Filtered() []internal.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]internal.Task, 0, len(s.tasks))

	for _, t := range s.tasks {
		if s.filters.Status != nil && t.Status != *s.filters.Status {
			continue
		}

		if s.filters.Priority != nil && t.Priority != *s.filters.Priority {
			continue
		}

		res = append(res, t)
	}

	if len(s.filters.Sort) > 0 {
		internal.SortTasks(res, s.filters.Sort)
	}

	return res
}
