// Package redis caches the task lists of every user. Each user has a generation counter that is part
// of the list keys, writes increment it so stale lists are never read again and expire on their own.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/sanLimbu/taskboard-api/internal"
)

const otelName = "github.com/sanLimbu/taskboard-api/internal/redis"

// TaskStore defines the store being decorated.
type TaskStore interface {
	Create(ctx context.Context, params internal.CreateParams) (internal.Task, error)
	Delete(ctx context.Context, id, userID string) error
	Find(ctx context.Context, id, userID string) (internal.Task, error)
	List(ctx context.Context, params internal.ListParams) ([]internal.Task, error)
	Reorder(ctx context.Context, params internal.MoveParams) (internal.ReorderResult, error)
	Update(ctx context.Context, id, userID string, params internal.UpdateParams) (internal.Task, error)
}

// Task caches List results in front of a TaskStore.
type Task struct {
	client     *redis.Client
	orig       TaskStore
	expiration time.Duration
	logger     *zap.Logger
}

// NewTask instantiates the decorator.
func NewTask(client *redis.Client, orig TaskStore, expiration time.Duration, logger *zap.Logger) *Task {
	return &Task{
		client:     client,
		orig:       orig,
		expiration: expiration,
		logger:     logger,
	}
}

// Create stores the task and invalidates the lists of its owner.
func (t *Task) Create(ctx context.Context, params internal.CreateParams) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Create").End()

	task, err := t.orig.Create(ctx, params)
	if err != nil {
		return internal.Task{}, fmt.Errorf("orig.Create: %w", err)
	}

	t.invalidate(ctx, params.UserID)

	return task, nil
}

// Delete removes the task and invalidates the lists of its owner.
func (t *Task) Delete(ctx context.Context, id, userID string) error {
	defer newOTELSpan(ctx, "Task.Delete").End()

	if err := t.orig.Delete(ctx, id, userID); err != nil {
		return fmt.Errorf("orig.Delete: %w", err)
	}

	t.invalidate(ctx, userID)

	return nil
}

// Find is not cached here.
func (t *Task) Find(ctx context.Context, id, userID string) (internal.Task, error) {
	return t.orig.Find(ctx, id, userID)
}

// List returns the cached list for the current generation, falling back to the store.
func (t *Task) List(ctx context.Context, params internal.ListParams) ([]internal.Task, error) {
	defer newOTELSpan(ctx, "Task.List").End()

	gen, err := t.client.Get(ctx, generationKey(params.UserID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		t.logger.Warn("couldn't read generation", zap.Error(err))

		return t.orig.List(ctx, params)
	}

	key := listKey(params, gen)

	if b, err := t.client.Get(ctx, key).Bytes(); err == nil {
		var res []internal.Task
		if err := json.Unmarshal(b, &res); err == nil {
			return res, nil
		}
	}

	res, err := t.orig.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("orig.List: %w", err)
	}

	b, err := json.Marshal(res)
	if err != nil {
		return res, nil
	}

	if err := t.client.Set(ctx, key, b, t.expiration).Err(); err != nil {
		t.logger.Warn("couldn't cache list", zap.Error(err))
	}

	return res, nil
}

// Reorder moves the task and invalidates the lists of its owner.
func (t *Task) Reorder(ctx context.Context, params internal.MoveParams) (internal.ReorderResult, error) {
	defer newOTELSpan(ctx, "Task.Reorder").End()

	res, err := t.orig.Reorder(ctx, params)
	if err != nil {
		return internal.ReorderResult{}, fmt.Errorf("orig.Reorder: %w", err)
	}

	t.invalidate(ctx, params.UserID)

	return res, nil
}

// Update changes the task and invalidates the lists of its owner.
func (t *Task) Update(ctx context.Context, id, userID string, params internal.UpdateParams) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Update").End()

	task, err := t.orig.Update(ctx, id, userID, params)
	if err != nil {
		return internal.Task{}, fmt.Errorf("orig.Update: %w", err)
	}

	t.invalidate(ctx, userID)

	return task, nil
}

func (t *Task) invalidate(ctx context.Context, userID string) {
	if err := t.client.Incr(ctx, generationKey(userID)).Err(); err != nil {
		t.logger.Warn("couldn't invalidate lists", zap.String("user", userID), zap.Error(err))
	}
}

func generationKey(userID string) string {
	return "tasks:" + userID + ":generation"
}

func listKey(params internal.ListParams, gen int64) string {
	var status, priority string

	if params.Status != nil {
		status = string(*params.Status)
	}

	if params.Priority != nil {
		priority = string(*params.Priority)
	}

	return fmt.Sprintf("tasks:%s:%d:list:%s:%s:%s",
		params.UserID, gen, status, priority, internal.FormatSort(params.SortKeys()))
}

func newOTELSpan(ctx context.Context, name string) trace.Span {
	_, span := otel.Tracer(otelName).Start(ctx, name)

	span.SetAttributes(semconv.DBSystemRedis)

	return span
}
