package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sanLimbu/taskboard-api/internal"
	"github.com/sanLimbu/taskboard-api/internal/memory"
)

func assertCode(t *testing.T, err error, code internal.ErrorCode) {
	t.Helper()

	var ierr *internal.Error
	if !errors.As(err, &ierr) || ierr.Code() != code {
		t.Fatalf("expected error code %d, got %v", code, err)
	}
}

func mustCreate(t *testing.T, store *memory.Task, userID, title string, status internal.Status) internal.Task {
	t.Helper()

	task, err := store.Create(context.Background(), internal.CreateParams{
		UserID:   userID,
		Title:    title,
		Priority: internal.PriorityMedium,
		Status:   status,
	})
	if err != nil {
		t.Fatalf("create %s: %s", title, err)
	}

	return task
}

type placement struct {
	Status   internal.Status
	Position int
}

func placements(t *testing.T, store *memory.Task, userID string) map[string]placement {
	t.Helper()

	tasks, err := store.List(context.Background(), internal.ListParams{UserID: userID})
	if err != nil {
		t.Fatalf("list: %s", err)
	}

	res := make(map[string]placement, len(tasks))
	for _, task := range tasks {
		res[task.Title] = placement{task.Status, task.Position}
	}

	return res
}

func TestTask_CreatePositions(t *testing.T) {
	t.Parallel()

	store := memory.NewTask()

	for i, title := range []string{"a", "b", "c"} {
		if task := mustCreate(t, store, "user", title, internal.StatusTodo); task.Position != i {
			t.Fatalf("expected position %d, got %d", i, task.Position)
		}
	}

	if task := mustCreate(t, store, "user", "d", internal.StatusCompleted); task.Position != 0 {
		t.Fatalf("expected position 0 in a new column, got %d", task.Position)
	}

	if task := mustCreate(t, store, "other", "e", internal.StatusTodo); task.Position != 0 {
		t.Fatalf("expected position 0 for another user, got %d", task.Position)
	}
}

func TestTask_FindOwnership(t *testing.T) {
	t.Parallel()

	store := memory.NewTask()
	task := mustCreate(t, store, "user", "a", internal.StatusTodo)

	found, err := store.Find(context.Background(), task.ID, "user")
	if err != nil {
		t.Fatalf("expected no error, got %s", err)
	}

	if diff := cmp.Diff(task, found); diff != "" {
		t.Fatalf("task mismatch (-want +got):\n%s", diff)
	}

	_, err = store.Find(context.Background(), task.ID, "other")
	assertCode(t, err, internal.ErrorCodeNotFound)

	_, err = store.Find(context.Background(), "not-a-uuid", "user")
	assertCode(t, err, internal.ErrorCodeNotFound)
}

func TestTask_ListFilters(t *testing.T) {
	t.Parallel()

	store := memory.NewTask()
	mustCreate(t, store, "user", "a", internal.StatusTodo)
	mustCreate(t, store, "user", "b", internal.StatusInProgress)
	mustCreate(t, store, "other", "c", internal.StatusTodo)

	todo := internal.StatusTodo

	tasks, err := store.List(context.Background(), internal.ListParams{UserID: "user", Status: &todo})
	if err != nil {
		t.Fatalf("expected no error, got %s", err)
	}

	if len(tasks) != 1 || tasks[0].Title != "a" {
		t.Fatalf("unexpected tasks %+v", tasks)
	}
}

func TestTask_UpdateChangesColumn(t *testing.T) {
	t.Parallel()

	store := memory.NewTask()
	a := mustCreate(t, store, "user", "a", internal.StatusTodo)
	mustCreate(t, store, "user", "b", internal.StatusTodo)
	mustCreate(t, store, "user", "c", internal.StatusCompleted)

	completed := internal.StatusCompleted
	title := "a2"

	updated, err := store.Update(context.Background(), a.ID, "user", internal.UpdateParams{Title: &title, Status: &completed})
	if err != nil {
		t.Fatalf("expected no error, got %s", err)
	}

	if updated.Title != "a2" || updated.Status != internal.StatusCompleted || updated.Position != 1 {
		t.Fatalf("unexpected task %+v", updated)
	}

	want := map[string]placement{
		"a2": {internal.StatusCompleted, 1},
		"b":  {internal.StatusTodo, 0},
		"c":  {internal.StatusCompleted, 0},
	}

	if diff := cmp.Diff(want, placements(t, store, "user")); diff != "" {
		t.Fatalf("placements mismatch (-want +got):\n%s", diff)
	}

	_, err = store.Update(context.Background(), a.ID, "other", internal.UpdateParams{Title: &title})
	assertCode(t, err, internal.ErrorCodeNotFound)
}

func TestTask_DeleteClosesGap(t *testing.T) {
	t.Parallel()

	store := memory.NewTask()
	a := mustCreate(t, store, "user", "a", internal.StatusTodo)
	mustCreate(t, store, "user", "b", internal.StatusTodo)
	mustCreate(t, store, "user", "c", internal.StatusTodo)

	assertCode(t, store.Delete(context.Background(), a.ID, "other"), internal.ErrorCodeNotFound)

	if err := store.Delete(context.Background(), a.ID, "user"); err != nil {
		t.Fatalf("expected no error, got %s", err)
	}

	_, err := store.Find(context.Background(), a.ID, "user")
	assertCode(t, err, internal.ErrorCodeNotFound)

	want := map[string]placement{
		"b": {internal.StatusTodo, 0},
		"c": {internal.StatusTodo, 1},
	}

	if diff := cmp.Diff(want, placements(t, store, "user")); diff != "" {
		t.Fatalf("placements mismatch (-want +got):\n%s", diff)
	}
}

func TestTask_Reorder(t *testing.T) {
	t.Parallel()

	store := memory.NewTask()
	a := mustCreate(t, store, "user", "a", internal.StatusTodo)
	mustCreate(t, store, "user", "b", internal.StatusTodo)
	mustCreate(t, store, "user", "c", internal.StatusInProgress)

	res, err := store.Reorder(context.Background(), internal.MoveParams{
		UserID: "user",
		TaskID: a.ID,
		From:   internal.ColumnIndex{Status: internal.StatusTodo, Index: 0},
		To:     internal.ColumnIndex{Status: internal.StatusInProgress, Index: 0},
	})
	if err != nil {
		t.Fatalf("expected no error, got %s", err)
	}

	if res.Task.ID != a.ID || res.Task.Status != internal.StatusInProgress || res.Task.Position != 0 {
		t.Fatalf("unexpected moved task %+v", res.Task)
	}

	order := make([]string, len(res.Updated))
	for i, task := range res.Updated {
		order[i] = task.Title
	}

	if diff := cmp.Diff([]string{"b", "a", "c"}, order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	want := map[string]placement{
		"a": {internal.StatusInProgress, 0},
		"b": {internal.StatusTodo, 0},
		"c": {internal.StatusInProgress, 1},
	}

	if diff := cmp.Diff(want, placements(t, store, "user")); diff != "" {
		t.Fatalf("placements mismatch (-want +got):\n%s", diff)
	}

	_, err = store.Reorder(context.Background(), internal.MoveParams{
		UserID: "other",
		TaskID: a.ID,
		To:     internal.ColumnIndex{Status: internal.StatusTodo},
	})
	assertCode(t, err, internal.ErrorCodeNotFound)
}

func TestTask_ListCreationOrder(t *testing.T) {
	t.Parallel()

	store := memory.NewTask()

	expected := make([]string, 100)

	for i := range expected {
		expected[i] = mustCreate(t, store, "user", "task", internal.StatusTodo).ID
	}

	tasks, err := store.List(context.Background(), internal.ListParams{
		UserID: "user",
		Sort:   []internal.SortKey{{Field: internal.SortFieldCreatedAt}},
	})
	if err != nil {
		t.Fatalf("list: %s", err)
	}

	actual := make([]string, len(tasks))
	for i, task := range tasks {
		actual[i] = task.ID

		if task.Position != i {
			t.Fatalf("expected position %d, got %d", i, task.Position)
		}
	}

	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}
