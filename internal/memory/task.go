package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sanLimbu/taskboard-api/internal"
)

// Task is the in-memory Task store, every operation holds one lock which makes position assignment
// and reordering atomic.
type Task struct {
	mu    sync.Mutex
	tasks map[string]internal.Task
	now   func() time.Time
	last  time.Time
}

// NewTask instantiates the Task store.
func NewTask() *Task {
	return &Task{
		tasks: make(map[string]internal.Task),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts a new task record at the end of its column.
func (t *Task) Create(ctx context.Context, params internal.CreateParams) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Create").End()

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.createdAt()

	task := internal.Task{
		ID:          uuid.NewString(),
		Title:       params.Title,
		Description: params.Description,
		Priority:    params.Priority,
		Status:      params.Status,
		DueDate:     copyTime(params.DueDate),
		Position:    internal.NextPosition(t.userTasks(params.UserID), params.UserID, params.Status),
		UserID:      params.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	t.tasks[task.ID] = task

	return task, nil
}

// Find returns the task owned by userID.
func (t *Task) Find(ctx context.Context, id, userID string) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Find").End()

	t.mu.Lock()
	defer t.mu.Unlock()

	return t.find(id, userID)
}

// List returns the tasks of the user matching the filters, sorted as requested.
func (t *Task) List(ctx context.Context, params internal.ListParams) ([]internal.Task, error) {
	defer newOTELSpan(ctx, "Task.List").End()

	t.mu.Lock()
	defer t.mu.Unlock()

	res := make([]internal.Task, 0)

	for _, task := range t.userTasks(params.UserID) {
		if params.Matches(task) {
			res = append(res, task)
		}
	}

	internal.SortTasks(res, params.SortKeys())

	return res, nil
}

// Update changes the task owned by userID, a status or position change moves it the same way Reorder
// does.
func (t *Task) Update(ctx context.Context, id, userID string, params internal.UpdateParams) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Update").End()

	t.mu.Lock()
	defer t.mu.Unlock()

	task, err := t.find(id, userID)
	if err != nil {
		return internal.Task{}, err
	}

	now := t.now()

	task = params.Apply(task)
	task.UpdatedAt = now

	if params.Moves(task) {
		moved, changed, err := internal.PlanMove(t.userTasks(userID), id, params.Target(task))
		if err != nil {
			return internal.Task{}, err
		}

		t.apply(changed, now)

		task.Status = moved.Status
		task.Position = moved.Position
	}

	t.tasks[id] = task

	return task, nil
}

// Delete removes the task owned by userID and closes the gap left in its column.
func (t *Task) Delete(ctx context.Context, id, userID string) error {
	defer newOTELSpan(ctx, "Task.Delete").End()

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.find(id, userID); err != nil {
		return err
	}

	changed := internal.PlanRemove(t.userTasks(userID), id)

	delete(t.tasks, id)

	t.apply(changed, t.now())

	return nil
}

// Reorder moves a task to a new column slot, both columns are renumbered.
func (t *Task) Reorder(ctx context.Context, params internal.MoveParams) (internal.ReorderResult, error) {
	defer newOTELSpan(ctx, "Task.Reorder").End()

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.find(params.TaskID, params.UserID); err != nil {
		return internal.ReorderResult{}, err
	}

	_, changed, err := internal.PlanMove(t.userTasks(params.UserID), params.TaskID, params.To)
	if err != nil {
		return internal.ReorderResult{}, err
	}

	t.apply(changed, t.now())

	updated := t.userTasks(params.UserID)
	internal.SortByColumn(updated)

	return internal.ReorderResult{
		Updated: updated,
		Task:    t.tasks[params.TaskID],
	}, nil
}

// createdAt returns strictly increasing timestamps so creation order survives coarse clocks.
func (t *Task) createdAt() time.Time {
	now := t.now()
	if !now.After(t.last) {
		now = t.last.Add(time.Microsecond)
	}

	t.last = now

	return now
}

func (t *Task) find(id, userID string) (internal.Task, error) {
	task, ok := t.tasks[id]
	if !ok || task.UserID != userID {
		return internal.Task{}, internal.NewErrorf(internal.ErrorCodeNotFound, "task not found")
	}

	return task, nil
}

func (t *Task) userTasks(userID string) []internal.Task {
	res := make([]internal.Task, 0)

	for _, task := range t.tasks {
		if task.UserID == userID {
			res = append(res, task)
		}
	}

	internal.SortTasks(res, []internal.SortKey{{Field: internal.SortFieldCreatedAt}})

	return res
}

func (t *Task) apply(changed []internal.Task, now time.Time) {
	for _, c := range changed {
		task, ok := t.tasks[c.ID]
		if !ok {
			continue
		}

		task.Status = c.Status
		task.Position = c.Position
		task.UpdatedAt = now

		t.tasks[c.ID] = task
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	res := *t

	return &res
}
