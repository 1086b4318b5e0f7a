package internal

import (
	"math"
)

// AppendIndex is a column index meaning "after the last task".
const AppendIndex = math.MaxInt32

// PlanMove computes the outcome of moving the task identified by taskID into the slot to.
//
// tasks must include every task of the source column and of the destination column, other tasks are
// ignored. The index is clamped to the destination size, the moved task is inserted there and both
// columns are renumbered to dense 0..n-1 positions.
//
// It returns the moved task with its new status and position, and every task whose status or
// position changed (the moved one included, when it changed).
func PlanMove(tasks []Task, taskID string, to ColumnIndex) (Task, []Task, error) {
	moved, ok := findTask(tasks, taskID)
	if !ok {
		return Task{}, nil, NewErrorf(ErrorCodeNotFound, "task not found")
	}

	sameColumn := to.Status == moved.Status

	src := column(tasks, moved.Status, taskID)

	dst := src
	if !sameColumn {
		dst = column(tasks, to.Status, taskID)
	}

	idx := to.Index
	if idx < 0 {
		idx = 0
	}

	if idx > len(dst) {
		idx = len(dst)
	}

	moved.Status = to.Status

	dst = insertAt(dst, idx, moved)
	renumber(dst)

	after := dst
	if !sameColumn {
		renumber(src)
		after = append(append(make([]Task, 0, len(src)+len(dst)), src...), dst...)
	}

	moved = dst[idx]
	res := changed(tasks, after)

	return moved, res, nil
}

// PlanRemove computes the positions of the column the task identified by taskID leaves, once the
// task is gone. It returns every remaining task whose position changed.
func PlanRemove(tasks []Task, taskID string) []Task {
	removed, ok := findTask(tasks, taskID)
	if !ok {
		return nil
	}

	rest := column(tasks, removed.Status, taskID)
	renumber(rest)

	return changed(tasks, rest)
}

// NextPosition returns the position a new task appended to the column status gets.
func NextPosition(tasks []Task, userID string, status Status) int {
	next := 0

	for _, t := range tasks {
		if t.UserID == userID && t.Status == status && t.Position >= next {
			next = t.Position + 1
		}
	}

	return next
}

func findTask(tasks []Task, id string) (Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}

	return Task{}, false
}

// column returns a copy of the tasks with status, ordered by position, skipping the one with id.
func column(tasks []Task, status Status, skip string) []Task {
	res := make([]Task, 0, len(tasks))

	for _, t := range tasks {
		if t.Status == status && t.ID != skip {
			res = append(res, t)
		}
	}

	SortTasks(res, []SortKey{{Field: SortFieldPosition}, {Field: SortFieldCreatedAt}})

	return res
}

func insertAt(tasks []Task, idx int, t Task) []Task {
	res := make([]Task, 0, len(tasks)+1)
	res = append(res, tasks[:idx]...)
	res = append(res, t)

	return append(res, tasks[idx:]...)
}

func renumber(tasks []Task) {
	for i := range tasks {
		tasks[i].Position = i
	}
}

func changed(before []Task, after []Task) []Task {
	orig := make(map[string]Task, len(before))
	for _, t := range before {
		orig[t.ID] = t
	}

	seen := make(map[string]struct{}, len(after))
	res := make([]Task, 0, len(after))

	for _, t := range after {
		if _, ok := seen[t.ID]; ok {
			continue
		}

		seen[t.ID] = struct{}{}

		if o := orig[t.ID]; o.Status != t.Status || o.Position != t.Position {
			res = append(res, t)
		}
	}

	return res
}
