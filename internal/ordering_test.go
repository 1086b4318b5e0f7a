package internal_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sanLimbu/taskboard-api/internal"
)

func newColumnTask(id string, status internal.Status, position int) internal.Task {
	return internal.Task{
		ID:       id,
		Title:    id,
		Priority: internal.PriorityMedium,
		Status:   status,
		Position: position,
		UserID:   "user",
	}
}

type slot struct {
	Status   internal.Status
	Position int
}

func slots(tasks []internal.Task) map[string]slot {
	res := make(map[string]slot, len(tasks))
	for _, t := range tasks {
		res[t.ID] = slot{Status: t.Status, Position: t.Position}
	}

	return res
}

func TestPlanMove(t *testing.T) {
	t.Parallel()

	board := func() []internal.Task {
		return []internal.Task{
			newColumnTask("a", internal.StatusTodo, 0),
			newColumnTask("b", internal.StatusTodo, 1),
			newColumnTask("c", internal.StatusTodo, 2),
			newColumnTask("d", internal.StatusInProgress, 0),
			newColumnTask("e", internal.StatusInProgress, 1),
		}
	}

	tests := []struct {
		name        string
		taskID      string
		to          internal.ColumnIndex
		moved       slot
		wantChanged map[string]slot
	}{
		{
			"across columns to the top",
			"a",
			internal.ColumnIndex{Status: internal.StatusInProgress, Index: 0},
			slot{internal.StatusInProgress, 0},
			map[string]slot{
				"a": {internal.StatusInProgress, 0},
				"b": {internal.StatusTodo, 0},
				"c": {internal.StatusTodo, 1},
				"d": {internal.StatusInProgress, 1},
				"e": {internal.StatusInProgress, 2},
			},
		},
		{
			"across columns past the end is clamped",
			"c",
			internal.ColumnIndex{Status: internal.StatusInProgress, Index: 42},
			slot{internal.StatusInProgress, 2},
			map[string]slot{
				"c": {internal.StatusInProgress, 2},
			},
		},
		{
			"into an empty column",
			"b",
			internal.ColumnIndex{Status: internal.StatusCompleted, Index: 3},
			slot{internal.StatusCompleted, 0},
			map[string]slot{
				"b": {internal.StatusCompleted, 0},
				"c": {internal.StatusTodo, 1},
			},
		},
		{
			"within the same column downwards",
			"a",
			internal.ColumnIndex{Status: internal.StatusTodo, Index: 2},
			slot{internal.StatusTodo, 2},
			map[string]slot{
				"a": {internal.StatusTodo, 2},
				"b": {internal.StatusTodo, 0},
				"c": {internal.StatusTodo, 1},
			},
		},
		{
			"within the same column upwards",
			"c",
			internal.ColumnIndex{Status: internal.StatusTodo, Index: 0},
			slot{internal.StatusTodo, 0},
			map[string]slot{
				"a": {internal.StatusTodo, 1},
				"b": {internal.StatusTodo, 2},
				"c": {internal.StatusTodo, 0},
			},
		},
		{
			"to the same slot changes nothing",
			"b",
			internal.ColumnIndex{Status: internal.StatusTodo, Index: 1},
			slot{internal.StatusTodo, 1},
			map[string]slot{},
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			moved, changed, err := internal.PlanMove(board(), tt.taskID, tt.to)
			if err != nil {
				t.Fatalf("expected no error, got %s", err)
			}

			if diff := cmp.Diff(tt.moved, slot{moved.Status, moved.Position}); diff != "" {
				t.Errorf("moved mismatch (-want +got):\n%s", diff)
			}

			if diff := cmp.Diff(tt.wantChanged, slots(changed)); diff != "" {
				t.Errorf("changed mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPlanMove_Dense(t *testing.T) {
	t.Parallel()

	// Sparse and duplicated positions, as left behind by older clients.
	tasks := []internal.Task{
		newColumnTask("a", internal.StatusTodo, 4),
		newColumnTask("b", internal.StatusTodo, 4),
		newColumnTask("c", internal.StatusTodo, 9),
	}

	_, changed, err := internal.PlanMove(tasks, "c", internal.ColumnIndex{Status: internal.StatusTodo, Index: 0})
	if err != nil {
		t.Fatalf("expected no error, got %s", err)
	}

	want := map[string]slot{
		"c": {internal.StatusTodo, 0},
		"a": {internal.StatusTodo, 1},
		"b": {internal.StatusTodo, 2},
	}

	if diff := cmp.Diff(want, slots(changed)); diff != "" {
		t.Errorf("changed mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanMove_NotFound(t *testing.T) {
	t.Parallel()

	_, _, err := internal.PlanMove([]internal.Task{newColumnTask("a", internal.StatusTodo, 0)},
		"missing",
		internal.ColumnIndex{Status: internal.StatusTodo})

	var ierr *internal.Error
	if !errors.As(err, &ierr) || ierr.Code() != internal.ErrorCodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestPlanRemove(t *testing.T) {
	t.Parallel()

	tasks := []internal.Task{
		newColumnTask("a", internal.StatusTodo, 0),
		newColumnTask("b", internal.StatusTodo, 1),
		newColumnTask("c", internal.StatusTodo, 2),
		newColumnTask("d", internal.StatusInProgress, 0),
	}

	want := map[string]slot{
		"b": {internal.StatusTodo, 0},
		"c": {internal.StatusTodo, 1},
	}

	if diff := cmp.Diff(want, slots(internal.PlanRemove(tasks, "a"))); diff != "" {
		t.Errorf("changed mismatch (-want +got):\n%s", diff)
	}

	if got := internal.PlanRemove(tasks, "missing"); len(got) != 0 {
		t.Errorf("expected nothing to change, got %v", got)
	}
}

func TestNextPosition(t *testing.T) {
	t.Parallel()

	tasks := []internal.Task{
		newColumnTask("a", internal.StatusTodo, 0),
		newColumnTask("b", internal.StatusTodo, 1),
		newColumnTask("c", internal.StatusInProgress, 0),
		{ID: "d", Status: internal.StatusTodo, Position: 7, UserID: "other"},
	}

	if got := internal.NextPosition(tasks, "user", internal.StatusTodo); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}

	if got := internal.NextPosition(tasks, "user", internal.StatusCompleted); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}
