package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sanLimbu/taskboard-api/internal"
)

// Task represents the repository used for interacting with Task documents.
type Task struct {
	client   *mongo.Client
	tasks    *mongo.Collection
	counters *mongo.Collection
	now      func() time.Time
}

// NewTask instantiates the Task repository.
func NewTask(client *mongo.Client, database *mongo.Database) *Task {
	return &Task{
		client:   client,
		tasks:    database.Collection(tasksCollection),
		counters: database.Collection(countersCollection),
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// Create inserts a new task document, its position comes from the column counter.
func (t *Task) Create(ctx context.Context, params internal.CreateParams) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Create").End()

	var res taskDocument

	err := t.transaction(ctx, func(sc mongo.SessionContext) error {
		var counter struct {
			Next int `bson:"next"`
		}

		if err := t.counters.FindOneAndUpdate(sc,
			bson.M{"_id": counterID(params.UserID, params.Status)},
			bson.M{"$inc": bson.M{"next": 1}},
			options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
		).Decode(&counter); err != nil {
			return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "counters.FindOneAndUpdate")
		}

		now := t.now()

		res = taskDocument{
			ID:          uuid.NewString(),
			UserID:      params.UserID,
			Title:       params.Title,
			Description: params.Description,
			Priority:    string(params.Priority),
			Status:      string(params.Status),
			DueDate:     params.DueDate,
			Position:    counter.Next - 1,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if _, err := t.tasks.InsertOne(sc, res); err != nil {
			return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "tasks.InsertOne")
		}

		return nil
	})
	if err != nil {
		return internal.Task{}, err
	}

	return res.task(), nil
}

// Find returns the requested task owned by userID.
func (t *Task) Find(ctx context.Context, id, userID string) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Find").End()

	return t.find(ctx, id, userID)
}

// List returns the tasks of the user matching the filters, sorted as requested.
func (t *Task) List(ctx context.Context, params internal.ListParams) ([]internal.Task, error) {
	defer newOTELSpan(ctx, "Task.List").End()

	res, err := t.list(ctx, taskFilter(params))
	if err != nil {
		return nil, err
	}

	// Ranked fields have no native order, sorting happens here.
	internal.SortTasks(res, params.SortKeys())

	return res, nil
}

// Update changes the task owned by userID, a status or position change renumbers the affected
// columns in the same transaction.
func (t *Task) Update(ctx context.Context, id, userID string, params internal.UpdateParams) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Update").End()

	var res internal.Task

	err := t.transaction(ctx, func(sc mongo.SessionContext) error {
		current, err := t.find(sc, id, userID)
		if err != nil {
			return err
		}

		if params.Moves(current) {
			if _, err := t.move(sc, userID, id, params.Target(current)); err != nil {
				return err
			}
		}

		var doc taskDocument

		if err := t.tasks.FindOneAndUpdate(sc,
			bson.M{"_id": id, "user": userID},
			updateDocument(params, t.now()),
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&doc); err != nil {
			return notFound(err, "task not found")
		}

		res = doc.task()

		return nil
	})
	if err != nil {
		return internal.Task{}, err
	}

	return res, nil
}

// Delete removes the task owned by userID and closes the gap left in its column.
func (t *Task) Delete(ctx context.Context, id, userID string) error {
	defer newOTELSpan(ctx, "Task.Delete").End()

	return t.transaction(ctx, func(sc mongo.SessionContext) error {
		current, err := t.find(sc, id, userID)
		if err != nil {
			return err
		}

		tasks, err := t.list(sc, bson.M{"user": userID})
		if err != nil {
			return err
		}

		changed := internal.PlanRemove(tasks, id)

		if _, err := t.tasks.DeleteOne(sc, bson.M{"_id": id, "user": userID}); err != nil {
			return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "tasks.DeleteOne")
		}

		if err := t.applyPositions(sc, changed); err != nil {
			return err
		}

		return t.setCounter(sc, userID, current.Status, columnSize(tasks, current.Status)-1)
	})
}

// Reorder moves a task to a new column slot, both columns are renumbered in one transaction.
func (t *Task) Reorder(ctx context.Context, params internal.MoveParams) (internal.ReorderResult, error) {
	defer newOTELSpan(ctx, "Task.Reorder").End()

	var res internal.ReorderResult

	err := t.transaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := t.find(sc, params.TaskID, params.UserID); err != nil {
			return err
		}

		updated, err := t.move(sc, params.UserID, params.TaskID, params.To)
		if err != nil {
			return err
		}

		internal.SortByColumn(updated)

		res.Updated = updated

		for _, task := range updated {
			if task.ID == params.TaskID {
				res.Task = task
			}
		}

		return nil
	})
	if err != nil {
		return internal.ReorderResult{}, err
	}

	return res, nil
}

// move applies the ordering plan and returns every task of the user after the move.
func (t *Task) move(sc mongo.SessionContext, userID, taskID string, to internal.ColumnIndex) ([]internal.Task, error) {
	tasks, err := t.list(sc, bson.M{"user": userID})
	if err != nil {
		return nil, err
	}

	moved, changed, err := internal.PlanMove(tasks, taskID, to)
	if err != nil {
		return nil, err
	}

	var from internal.Status

	byID := make(map[string]internal.Task, len(changed))
	for _, c := range changed {
		byID[c.ID] = c
	}

	now := t.now()

	for i, task := range tasks {
		if task.ID == taskID {
			from = task.Status
		}

		if c, ok := byID[task.ID]; ok {
			tasks[i].Status = c.Status
			tasks[i].Position = c.Position
			tasks[i].UpdatedAt = now
		}
	}

	if err := t.applyPositions(sc, changed); err != nil {
		return nil, err
	}

	for _, status := range []internal.Status{from, moved.Status} {
		if err := t.setCounter(sc, userID, status, columnSize(tasks, status)); err != nil {
			return nil, err
		}
	}

	return tasks, nil
}

func (t *Task) find(ctx context.Context, id, userID string) (internal.Task, error) {
	var doc taskDocument

	if err := t.tasks.FindOne(ctx, bson.M{"_id": id, "user": userID}).Decode(&doc); err != nil {
		return internal.Task{}, notFound(err, "task not found")
	}

	return doc.task(), nil
}

func (t *Task) list(ctx context.Context, filter bson.M) ([]internal.Task, error) {
	cursor, err := t.tasks.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "tasks.Find")
	}

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "cursor.All")
	}

	res := make([]internal.Task, len(docs))
	for i, doc := range docs {
		res[i] = doc.task()
	}

	return res, nil
}

func (t *Task) applyPositions(ctx context.Context, changed []internal.Task) error {
	now := t.now()

	for _, task := range changed {
		if _, err := t.tasks.UpdateOne(ctx,
			bson.M{"_id": task.ID, "user": task.UserID},
			bson.M{"$set": bson.M{
				"status":    string(task.Status),
				"position":  task.Position,
				"updatedAt": now,
			}},
		); err != nil {
			return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "tasks.UpdateOne")
		}
	}

	return nil
}

// setCounter stores the next position of a column, writing it also makes concurrent transactions on
// the same column conflict.
func (t *Task) setCounter(ctx context.Context, userID string, status internal.Status, next int) error {
	if _, err := t.counters.UpdateOne(ctx,
		bson.M{"_id": counterID(userID, status)},
		bson.M{"$set": bson.M{"next": next}},
		options.Update().SetUpsert(true),
	); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "counters.UpdateOne")
	}

	return nil
}

func (t *Task) transaction(ctx context.Context, fn func(mongo.SessionContext) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "client.StartSession")
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil {
		var ierr *internal.Error
		if errors.As(err, &ierr) {
			return err
		}

		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "session.WithTransaction")
	}

	return nil
}

func columnSize(tasks []internal.Task, status internal.Status) int {
	n := 0

	for _, t := range tasks {
		if t.Status == status {
			n++
		}
	}

	return n
}
