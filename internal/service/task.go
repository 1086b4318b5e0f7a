package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/sanLimbu/taskboard-api/internal"
)

// TaskRepository defines the datastore handling persisting Task records.
type TaskRepository interface {
	Create(ctx context.Context, params internal.CreateParams) (internal.Task, error)
	Delete(ctx context.Context, id, userID string) error
	Find(ctx context.Context, id, userID string) (internal.Task, error)
	List(ctx context.Context, params internal.ListParams) ([]internal.Task, error)
	Reorder(ctx context.Context, params internal.MoveParams) (internal.ReorderResult, error)
	Update(ctx context.Context, id, userID string, params internal.UpdateParams) (internal.Task, error)
}

// TaskSearchRepository defines the datastore handling searching Task records.
type TaskSearchRepository interface {
	Search(ctx context.Context, params internal.SearchParams) (internal.SearchResults, error)
}

// TaskMessageBrokerRepository defines the datastore handling publishing Task events.
type TaskMessageBrokerRepository interface {
	Created(ctx context.Context, task internal.Task) error
	Deleted(ctx context.Context, id string) error
	Updated(ctx context.Context, task internal.Task) error
}

// Task defines the application service in charge of interacting with Tasks.
type Task struct {
	logger    *zap.Logger
	repo      TaskRepository
	search    TaskSearchRepository
	msgBroker TaskMessageBrokerRepository
}

// NewTask instantiates the Task service, search and msgBroker are optional.
func NewTask(logger *zap.Logger, repo TaskRepository, search TaskSearchRepository, msgBroker TaskMessageBrokerRepository) *Task {
	return &Task{
		logger:    logger,
		repo:      repo,
		search:    search,
		msgBroker: msgBroker,
	}
}

// By returns the tasks of the user matching the filters.
func (t *Task) By(ctx context.Context, params internal.ListParams) ([]internal.Task, error) {
	ctx, span := trace.SpanFromContext(ctx).Tracer().Start(ctx, "Task.By")
	defer span.End()

	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("params.Validate: %w", err)
	}

	res, err := t.repo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("repo list: %w", err)
	}

	return res, nil
}

// Task gets an existing Task owned by userID.
func (t *Task) Task(ctx context.Context, id, userID string) (internal.Task, error) {
	ctx, span := trace.SpanFromContext(ctx).Tracer().Start(ctx, "Task.Task")
	defer span.End()

	task, err := t.repo.Find(ctx, id, userID)
	if err != nil {
		return internal.Task{}, fmt.Errorf("repo find: %w", err)
	}

	return task, nil
}

// Create stores a new task at the end of its column.
func (t *Task) Create(ctx context.Context, params internal.CreateParams) (internal.Task, error) {
	ctx, span := trace.SpanFromContext(ctx).Tracer().Start(ctx, "Task.Create")
	defer span.End()

	params = params.WithDefaults()

	if err := params.Validate(); err != nil {
		return internal.Task{}, fmt.Errorf("params.Validate: %w", err)
	}

	task, err := t.repo.Create(ctx, params)
	if err != nil {
		return internal.Task{}, fmt.Errorf("repo create: %w", err)
	}

	if t.msgBroker != nil {
		if err := t.msgBroker.Created(ctx, task); err != nil {
			t.logger.Warn("couldn't publish created event", zap.String("id", task.ID), zap.Error(err))
		}
	}

	return task, nil
}

// Update changes an existing Task owned by userID.
func (t *Task) Update(ctx context.Context, id, userID string, params internal.UpdateParams) (internal.Task, error) {
	ctx, span := trace.SpanFromContext(ctx).Tracer().Start(ctx, "Task.Update")
	defer span.End()

	params = params.WithDefaults()

	if err := params.Validate(); err != nil {
		return internal.Task{}, fmt.Errorf("params.Validate: %w", err)
	}

	task, err := t.repo.Update(ctx, id, userID, params)
	if err != nil {
		return internal.Task{}, fmt.Errorf("repo update: %w", err)
	}

	t.updated(ctx, task)

	return task, nil
}

// Delete removes an existing Task owned by userID.
func (t *Task) Delete(ctx context.Context, id, userID string) error {
	ctx, span := trace.SpanFromContext(ctx).Tracer().Start(ctx, "Task.Delete")
	defer span.End()

	if err := t.repo.Delete(ctx, id, userID); err != nil {
		return fmt.Errorf("repo delete: %w", err)
	}

	if t.msgBroker != nil {
		if err := t.msgBroker.Deleted(ctx, id); err != nil {
			t.logger.Warn("couldn't publish deleted event", zap.String("id", id), zap.Error(err))
		}
	}

	return nil
}

// Reorder moves a task to a column slot, it returns every task of the user in board order.
func (t *Task) Reorder(ctx context.Context, params internal.MoveParams) (internal.ReorderResult, error) {
	ctx, span := trace.SpanFromContext(ctx).Tracer().Start(ctx, "Task.Reorder")
	defer span.End()

	if err := params.Validate(); err != nil {
		return internal.ReorderResult{}, fmt.Errorf("params.Validate: %w", err)
	}

	res, err := t.repo.Reorder(ctx, params)
	if err != nil {
		return internal.ReorderResult{}, fmt.Errorf("repo reorder: %w", err)
	}

	t.updated(ctx, res.Task)

	return res, nil
}

// Stats counts the tasks of the user per status and priority.
func (t *Task) Stats(ctx context.Context, userID string) (internal.Stats, error) {
	ctx, span := trace.SpanFromContext(ctx).Tracer().Start(ctx, "Task.Stats")
	defer span.End()

	tasks, err := t.repo.List(ctx, internal.ListParams{UserID: userID})
	if err != nil {
		return internal.Stats{}, fmt.Errorf("repo list: %w", err)
	}

	return internal.NewStats(tasks), nil
}

// Search finds the tasks of the user containing the query. Without a search index the tasks are
// matched in memory.
func (t *Task) Search(ctx context.Context, params internal.SearchParams) (internal.SearchResults, error) {
	ctx, span := trace.SpanFromContext(ctx).Tracer().Start(ctx, "Task.Search")
	defer span.End()

	params = params.WithDefaults()

	if err := params.Validate(); err != nil {
		return internal.SearchResults{}, fmt.Errorf("params.Validate: %w", err)
	}

	if t.search != nil {
		res, err := t.search.Search(ctx, params)
		if err != nil {
			return internal.SearchResults{}, fmt.Errorf("search: %w", err)
		}

		return res, nil
	}

	tasks, err := t.repo.List(ctx, internal.ListParams{UserID: params.UserID, Status: params.Status, Priority: params.Priority})
	if err != nil {
		return internal.SearchResults{}, fmt.Errorf("repo list: %w", err)
	}

	found := make([]internal.Task, 0)

	for _, task := range tasks {
		if params.Matches(task) {
			found = append(found, task)
		}
	}

	res := internal.SearchResults{Total: int64(len(found))}

	from := params.From
	if from > res.Total {
		from = res.Total
	}

	to := from + params.Size
	if to > res.Total {
		to = res.Total
	}

	res.Tasks = found[from:to]

	return res, nil
}

func (t *Task) updated(ctx context.Context, task internal.Task) {
	if t.msgBroker == nil {
		return
	}

	if err := t.msgBroker.Updated(ctx, task); err != nil {
		t.logger.Warn("couldn't publish updated event", zap.String("id", task.ID), zap.Error(err))
	}
}
