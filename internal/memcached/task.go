package memcached

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanLimbu/taskboard-api/internal"
)

// Task caches single tasks in front of a TaskStore.
type Task struct {
	client     Client
	orig       TaskStore
	expiration time.Duration
	logger     *zap.Logger
}

// TaskStore defines the store being decorated.
type TaskStore interface {
	Create(ctx context.Context, params internal.CreateParams) (internal.Task, error)
	Delete(ctx context.Context, id, userID string) error
	Find(ctx context.Context, id, userID string) (internal.Task, error)
	List(ctx context.Context, params internal.ListParams) ([]internal.Task, error)
	Reorder(ctx context.Context, params internal.MoveParams) (internal.ReorderResult, error)
	Update(ctx context.Context, id, userID string, params internal.UpdateParams) (internal.Task, error)
}

// NewTask instantiates the decorator.
func NewTask(client Client, orig TaskStore, logger *zap.Logger) *Task {
	return &Task{
		client:     client,
		orig:       orig,
		expiration: 15 * time.Minute,
		logger:     logger,
	}
}

// Create stores the task and caches it.
func (t *Task) Create(ctx context.Context, params internal.CreateParams) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Create").End()

	task, err := t.orig.Create(ctx, params)
	if err != nil {
		return internal.Task{}, fmt.Errorf("orig.Create: %w", err)
	}

	setTask(ctx, t.client, taskKey(task.ID), &task, t.expiration)

	return task, nil
}

// Delete removes the task and its cached copy.
func (t *Task) Delete(ctx context.Context, id, userID string) error {
	defer newOTELSpan(ctx, "Task.Delete").End()

	if err := t.orig.Delete(ctx, id, userID); err != nil {
		return fmt.Errorf("orig.Delete: %w", err)
	}

	deleteTask(ctx, t.client, taskKey(id))

	t.refresh(ctx, userID)

	return nil
}

// Find returns the cached task, falling back to the store when missing. A cached task owned by
// someone else is reported as not found.
func (t *Task) Find(ctx context.Context, id, userID string) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Find").End()

	var res internal.Task

	if err := getTask(ctx, t.client, taskKey(id), &res); err == nil {
		if res.UserID != userID {
			return internal.Task{}, internal.NewErrorf(internal.ErrorCodeNotFound, "task not found")
		}

		return res, nil
	}

	t.logger.Debug("Find: not cached", zap.String("id", id))

	res, err := t.orig.Find(ctx, id, userID)
	if err != nil {
		return internal.Task{}, fmt.Errorf("orig.Find: %w", err)
	}

	setTask(ctx, t.client, taskKey(res.ID), &res, t.expiration)

	return res, nil
}

// List is not cached here.
func (t *Task) List(ctx context.Context, params internal.ListParams) ([]internal.Task, error) {
	return t.orig.List(ctx, params)
}

// Reorder moves the task and refreshes every cached task of the user.
func (t *Task) Reorder(ctx context.Context, params internal.MoveParams) (internal.ReorderResult, error) {
	defer newOTELSpan(ctx, "Task.Reorder").End()

	res, err := t.orig.Reorder(ctx, params)
	if err != nil {
		return internal.ReorderResult{}, fmt.Errorf("orig.Reorder: %w", err)
	}

	for i := range res.Updated {
		setTask(ctx, t.client, taskKey(res.Updated[i].ID), &res.Updated[i], t.expiration)
	}

	return res, nil
}

// Update changes the task and refreshes its cached copy.
func (t *Task) Update(ctx context.Context, id, userID string, params internal.UpdateParams) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Update").End()

	task, err := t.orig.Update(ctx, id, userID, params)
	if err != nil {
		return internal.Task{}, fmt.Errorf("orig.Update: %w", err)
	}

	if params.Status != nil || params.Position != nil {
		t.refresh(ctx, userID)

		return task, nil
	}

	setTask(ctx, t.client, taskKey(task.ID), &task, t.expiration)

	return task, nil
}

// refresh caches every task of the user again, used after positions changed in a column.
func (t *Task) refresh(ctx context.Context, userID string) {
	tasks, err := t.orig.List(ctx, internal.ListParams{UserID: userID})
	if err != nil {
		t.logger.Warn("couldn't refresh cached tasks", zap.String("user", userID), zap.Error(err))

		return
	}

	for i := range tasks {
		setTask(ctx, t.client, taskKey(tasks[i].ID), &tasks[i], t.expiration)
	}
}
