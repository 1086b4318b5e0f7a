package postgresql

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sanLimbu/taskboard-api/internal"
	"github.com/sanLimbu/taskboard-api/internal/postgresql/db"
)

const selectTasks = `SELECT id, user_id, title, description, priority, status, due_date, position, created_at, updated_at
FROM tasks
WHERE user_id = $1
  AND ($2::text IS NULL OR status = $2)
  AND ($3::text IS NULL OR priority = $3)`

// Task represents the repository used for interacting with Task records.
type Task struct {
	pool *pgxpool.Pool
}

// NewTask instantiates the Task repository.
func NewTask(pool *pgxpool.Pool) *Task {
	return &Task{
		pool: pool,
	}
}

// Create inserts a new task record, the position is computed while holding the column lock.
func (t *Task) Create(ctx context.Context, params internal.CreateParams) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Create").End()

	userID, err := parseID(params.UserID, "user")
	if err != nil {
		return internal.Task{}, err
	}

	var res db.Task

	err = pgx.BeginFunc(ctx, t.pool, func(tx pgx.Tx) error {
		q := db.New(tx)

		if err := q.LockColumn(ctx, db.LockColumnParams{
			UserID: userID.String(),
			Status: string(params.Status),
		}); err != nil {
			return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "lock column")
		}

		row, err := q.InsertTask(ctx, db.InsertTaskParams{
			UserID:      userID,
			Title:       params.Title,
			Description: params.Description,
			Priority:    string(params.Priority),
			Status:      string(params.Status),
			DueDate:     newTimestamptz(params.DueDate),
		})
		if err != nil {
			return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "insert task")
		}

		res = row

		return nil
	})
	if err != nil {
		return internal.Task{}, err
	}

	return convertTask(res), nil
}

// Find returns the requested task owned by userID.
func (t *Task) Find(ctx context.Context, id, userID string) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Find").End()

	taskID, uid, err := parseIDs(id, userID)
	if err != nil {
		return internal.Task{}, err
	}

	var res db.Task

	// SelectTask locks the row, the short transaction releases it right away.
	err = pgx.BeginFunc(ctx, t.pool, func(tx pgx.Tx) error {
		row, err := db.New(tx).SelectTask(ctx, db.SelectTaskParams{ID: taskID, UserID: uid})
		if err != nil {
			return notFound(err, "task not found")
		}

		res = row

		return nil
	})
	if err != nil {
		return internal.Task{}, err
	}

	return convertTask(res), nil
}

// List returns the tasks of the user matching the filters, sorted as requested.
func (t *Task) List(ctx context.Context, params internal.ListParams) ([]internal.Task, error) {
	defer newOTELSpan(ctx, "Task.List").End()

	uid, err := parseID(params.UserID, "user")
	if err != nil {
		return nil, err
	}

	var status, priority *string

	if params.Status != nil {
		s := string(*params.Status)
		status = &s
	}

	if params.Priority != nil {
		p := string(*params.Priority)
		priority = &p
	}

	rows, err := t.pool.Query(ctx, selectTasks+orderBy(params.SortKeys()), uid, newText(status), newText(priority))
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "select tasks")
	}

	res, err := pgx.CollectRows(rows, pgx.RowToStructByPos[db.Task])
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "collect rows")
	}

	return convertTasks(res), nil
}

// Update changes the task owned by userID, a status or position change renumbers the affected
// columns in the same transaction.
func (t *Task) Update(ctx context.Context, id, userID string, params internal.UpdateParams) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Update").End()

	taskID, uid, err := parseIDs(id, userID)
	if err != nil {
		return internal.Task{}, err
	}

	var res db.Task

	err = pgx.BeginFunc(ctx, t.pool, func(tx pgx.Tx) error {
		q := db.New(tx)

		row, err := q.SelectTask(ctx, db.SelectTaskParams{ID: taskID, UserID: uid})
		if err != nil {
			return notFound(err, "task not found")
		}

		current := convertTask(row)

		if params.Moves(current) {
			to := params.Target(current)

			tasks, err := lockColumns(ctx, q, uid, current.Status, to.Status)
			if err != nil {
				return err
			}

			_, changed, err := internal.PlanMove(tasks, id, to)
			if err != nil {
				return err
			}

			if err := applyPositions(ctx, q, changed); err != nil {
				return err
			}
		}

		var priority *string
		if params.Priority != nil {
			p := string(*params.Priority)
			priority = &p
		}

		res, err = q.UpdateTask(ctx, db.UpdateTaskParams{
			Title:       newText(params.Title),
			Description: newText(params.Description),
			Priority:    newText(priority),
			DueDate:     newTimestamptz(params.DueDate),
			ID:          taskID,
			UserID:      uid,
		})
		if err != nil {
			return notFound(err, "task not found")
		}

		return nil
	})
	if err != nil {
		return internal.Task{}, err
	}

	return convertTask(res), nil
}

// Delete removes the task owned by userID and closes the gap left in its column.
func (t *Task) Delete(ctx context.Context, id, userID string) error {
	defer newOTELSpan(ctx, "Task.Delete").End()

	taskID, uid, err := parseIDs(id, userID)
	if err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, t.pool, func(tx pgx.Tx) error {
		q := db.New(tx)

		row, err := q.SelectTask(ctx, db.SelectTaskParams{ID: taskID, UserID: uid})
		if err != nil {
			return notFound(err, "task not found")
		}

		tasks, err := lockColumns(ctx, q, uid, internal.Status(row.Status))
		if err != nil {
			return err
		}

		changed := internal.PlanRemove(tasks, id)

		n, err := q.DeleteTask(ctx, db.DeleteTaskParams{ID: taskID, UserID: uid})
		if err != nil {
			return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "delete task")
		}

		if n == 0 {
			return internal.NewErrorf(internal.ErrorCodeNotFound, "task not found")
		}

		return applyPositions(ctx, q, changed)
	})
}

// Reorder moves a task to a new column slot, both columns are renumbered in one transaction.
func (t *Task) Reorder(ctx context.Context, params internal.MoveParams) (internal.ReorderResult, error) {
	defer newOTELSpan(ctx, "Task.Reorder").End()

	taskID, uid, err := parseIDs(params.TaskID, params.UserID)
	if err != nil {
		return internal.ReorderResult{}, err
	}

	var res internal.ReorderResult

	err = pgx.BeginFunc(ctx, t.pool, func(tx pgx.Tx) error {
		q := db.New(tx)

		row, err := q.SelectTask(ctx, db.SelectTaskParams{ID: taskID, UserID: uid})
		if err != nil {
			return notFound(err, "task not found")
		}

		tasks, err := lockColumns(ctx, q, uid, internal.Status(row.Status), params.To.Status)
		if err != nil {
			return err
		}

		_, changed, err := internal.PlanMove(tasks, params.TaskID, params.To)
		if err != nil {
			return err
		}

		if err := applyPositions(ctx, q, changed); err != nil {
			return err
		}

		rows, err := q.SelectUserTasks(ctx, uid)
		if err != nil {
			return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "select user tasks")
		}

		res.Updated = convertTasks(rows)
		internal.SortByColumn(res.Updated)

		for _, task := range res.Updated {
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

// lockColumns takes the advisory locks of the columns in board order, which keeps concurrent moves
// from deadlocking, and then reads the tasks of the user.
func lockColumns(ctx context.Context, q *db.Queries, userID uuid.UUID, statuses ...internal.Status) ([]internal.Task, error) {
	uid := userID.String()

	for _, status := range internal.Statuses() {
		for _, s := range statuses {
			if s != status {
				continue
			}

			if err := q.LockColumn(ctx, db.LockColumnParams{UserID: uid, Status: string(status)}); err != nil {
				return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "lock column")
			}

			break
		}
	}

	rows, err := q.SelectUserTasks(ctx, userID)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "select user tasks")
	}

	return convertTasks(rows), nil
}

func applyPositions(ctx context.Context, q *db.Queries, changed []internal.Task) error {
	for _, task := range changed {
		taskID, uid, err := parseIDs(task.ID, task.UserID)
		if err != nil {
			return err
		}

		if err := q.UpdateTaskPosition(ctx, db.UpdateTaskPositionParams{
			Status:   string(task.Status),
			Position: int32(task.Position),
			ID:       taskID,
			UserID:   uid,
		}); err != nil {
			return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "update task position")
		}
	}

	return nil
}

// orderBy translates the sort keys into an ORDER BY clause, only known fields are translated.
func orderBy(keys []internal.SortKey) string {
	cols := make([]string, 0, len(keys)+1)

	for _, k := range keys {
		var col string

		switch k.Field {
		case internal.SortFieldCreatedAt:
			col = "created_at"
		case internal.SortFieldUpdatedAt:
			col = "updated_at"
		case internal.SortFieldDueDate:
			col = "due_date"
		case internal.SortFieldPriority:
			col = "array_position(ARRAY['low', 'medium', 'high']::text[], priority)"
		case internal.SortFieldStatus:
			col = "array_position(ARRAY['todo', 'in-progress', 'completed']::text[], status)"
		case internal.SortFieldTitle:
			col = "title"
		case internal.SortFieldPosition:
			col = "position"
		default:
			continue
		}

		if k.Desc {
			col += " DESC"
		} else {
			col += " ASC"
		}

		cols = append(cols, col)
	}

	cols = append(cols, "id ASC")

	return "\nORDER BY " + strings.Join(cols, ", ")
}
