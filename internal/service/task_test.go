package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/sanLimbu/taskboard-api/internal"
	"github.com/sanLimbu/taskboard-api/internal/memory"
	"github.com/sanLimbu/taskboard-api/internal/service"
)

type event struct {
	Type string
	ID   string
}

type fakeBroker struct {
	mu     sync.Mutex
	events []event
	err    error
}

func (f *fakeBroker) record(typ, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.events = append(f.events, event{typ, id})

	return f.err
}

func (f *fakeBroker) Created(_ context.Context, task internal.Task) error {
	return f.record("created", task.ID)
}

func (f *fakeBroker) Deleted(_ context.Context, id string) error {
	return f.record("deleted", id)
}

func (f *fakeBroker) Updated(_ context.Context, task internal.Task) error {
	return f.record("updated", task.ID)
}

type fakeSearch struct {
	searchFn func(ctx context.Context, params internal.SearchParams) (internal.SearchResults, error)
}

func (f *fakeSearch) Search(ctx context.Context, params internal.SearchParams) (internal.SearchResults, error) {
	return f.searchFn(ctx, params)
}

func assertCode(t *testing.T, err error, code internal.ErrorCode) {
	t.Helper()

	var ierr *internal.Error
	if !errors.As(err, &ierr) || ierr.Code() != code {
		t.Fatalf("expected error code %d, got %v", code, err)
	}
}

func newTaskService(broker *fakeBroker) *service.Task {
	return service.NewTask(zap.NewNop(), memory.NewTask(), nil, broker)
}

func TestTask_CreatePositions(t *testing.T) {
	t.Parallel()

	broker := &fakeBroker{}
	svc := newTaskService(broker)

	for i, title := range []string{"a", "b", "c"} {
		task, err := svc.Create(context.Background(), internal.CreateParams{UserID: "user", Title: title})
		if err != nil {
			t.Fatalf("expected no error, got %s", err)
		}

		if task.Position != i || task.Status != internal.StatusTodo || task.Priority != internal.PriorityMedium {
			t.Fatalf("unexpected task %+v", task)
		}
	}

	if len(broker.events) != 3 || broker.events[0].Type != "created" {
		t.Fatalf("unexpected events %v", broker.events)
	}
}

func TestTask_CreateInvalid(t *testing.T) {
	t.Parallel()

	broker := &fakeBroker{}
	svc := newTaskService(broker)

	_, err := svc.Create(context.Background(), internal.CreateParams{UserID: "user", Title: "   "})
	assertCode(t, err, internal.ErrorCodeInvalidArgument)

	if len(broker.events) != 0 {
		t.Fatalf("expected no events, got %v", broker.events)
	}
}

func TestTask_Ownership(t *testing.T) {
	t.Parallel()

	svc := newTaskService(&fakeBroker{})
	ctx := context.Background()

	task, err := svc.Create(ctx, internal.CreateParams{UserID: "user", Title: "mine"})
	if err != nil {
		t.Fatalf("expected no error, got %s", err)
	}

	if _, err := svc.Create(ctx, internal.CreateParams{UserID: "other", Title: "theirs"}); err != nil {
		t.Fatalf("expected no error, got %s", err)
	}

	todo := internal.StatusTodo

	tasks, err := svc.By(ctx, internal.ListParams{UserID: "user", Status: &todo})
	if err != nil {
		t.Fatalf("expected no error, got %s", err)
	}

	if len(tasks) != 1 || tasks[0].ID != task.ID {
		t.Fatalf("unexpected tasks %+v", tasks)
	}

	found, err := svc.Task(ctx, task.ID, "user")
	if err != nil {
		t.Fatalf("expected no error, got %s", err)
	}

	if diff := cmp.Diff(task, found); diff != "" {
		t.Fatalf("task mismatch (-want +got):\n%s", diff)
	}

	_, err = svc.Task(ctx, task.ID, "other")
	assertCode(t, err, internal.ErrorCodeNotFound)

	_, err = svc.Update(ctx, task.ID, "other", internal.UpdateParams{})
	assertCode(t, err, internal.ErrorCodeNotFound)

	assertCode(t, svc.Delete(ctx, task.ID, "other"), internal.ErrorCodeNotFound)
}

func TestTask_Delete(t *testing.T) {
	t.Parallel()

	broker := &fakeBroker{}
	svc := newTaskService(broker)
	ctx := context.Background()

	task, _ := svc.Create(ctx, internal.CreateParams{UserID: "user", Title: "a"})

	if err := svc.Delete(ctx, task.ID, "user"); err != nil {
		t.Fatalf("expected no error, got %s", err)
	}

	_, err := svc.Task(ctx, task.ID, "user")
	assertCode(t, err, internal.ErrorCodeNotFound)

	if diff := cmp.Diff(event{"deleted", task.ID}, broker.events[len(broker.events)-1]); diff != "" {
		t.Fatalf("event mismatch (-want +got):\n%s", diff)
	}
}

func TestTask_Reorder(t *testing.T) {
	t.Parallel()

	broker := &fakeBroker{err: errors.New("broker down")}
	svc := newTaskService(broker)
	ctx := context.Background()

	a, _ := svc.Create(ctx, internal.CreateParams{UserID: "user", Title: "a"})
	b, _ := svc.Create(ctx, internal.CreateParams{UserID: "user", Title: "b"})

	res, err := svc.Reorder(ctx, internal.MoveParams{
		UserID: "user",
		TaskID: a.ID,
		To:     internal.ColumnIndex{Status: internal.StatusCompleted, Index: 5},
	})
	if err != nil {
		t.Fatalf("expected no error even if publishing fails, got %s", err)
	}

	if res.Task.Status != internal.StatusCompleted || res.Task.Position != 0 {
		t.Fatalf("unexpected moved task %+v", res.Task)
	}

	if len(res.Updated) != 2 || res.Updated[0].ID != b.ID || res.Updated[0].Position != 0 {
		t.Fatalf("unexpected updated tasks %+v", res.Updated)
	}

	_, err = svc.Reorder(ctx, internal.MoveParams{UserID: "user", TaskID: a.ID, To: internal.ColumnIndex{Status: "archived"}})
	assertCode(t, err, internal.ErrorCodeInvalidArgument)
}

func TestTask_Stats(t *testing.T) {
	t.Parallel()

	svc := newTaskService(&fakeBroker{})
	ctx := context.Background()

	for _, params := range []internal.CreateParams{
		{UserID: "user", Title: "a", Status: internal.StatusTodo, Priority: internal.PriorityLow},
		{UserID: "user", Title: "b", Status: internal.StatusInProgress},
		{UserID: "user", Title: "c", Status: internal.StatusCompleted, Priority: internal.PriorityHigh},
		{UserID: "other", Title: "d"},
	} {
		if _, err := svc.Create(ctx, params); err != nil {
			t.Fatalf("expected no error, got %s", err)
		}
	}

	stats, err := svc.Stats(ctx, "user")
	if err != nil {
		t.Fatalf("expected no error, got %s", err)
	}

	expected := internal.Stats{
		Total:      3,
		Todo:       1,
		InProgress: 1,
		Completed:  1,
		ByPriority: internal.PriorityCounts{Low: 1, Medium: 1, High: 1},
	}

	if diff := cmp.Diff(expected, stats); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestTask_Search(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("in store", func(t *testing.T) {
		t.Parallel()

		svc := newTaskService(&fakeBroker{})

		for _, title := range []string{"Write report", "Read report", "Call mom"} {
			if _, err := svc.Create(ctx, internal.CreateParams{UserID: "user", Title: title}); err != nil {
				t.Fatalf("expected no error, got %s", err)
			}
		}

		res, err := svc.Search(ctx, internal.SearchParams{UserID: "user", Query: "REPORT", Size: 1})
		if err != nil {
			t.Fatalf("expected no error, got %s", err)
		}

		if res.Total != 2 || len(res.Tasks) != 1 {
			t.Fatalf("unexpected results %+v", res)
		}

		res, err = svc.Search(ctx, internal.SearchParams{UserID: "user", Query: "report", From: 10})
		if err != nil {
			t.Fatalf("expected no error, got %s", err)
		}

		if res.Total != 2 || len(res.Tasks) != 0 {
			t.Fatalf("unexpected results %+v", res)
		}
	})

	t.Run("index", func(t *testing.T) {
		t.Parallel()

		search := &fakeSearch{
			searchFn: func(_ context.Context, params internal.SearchParams) (internal.SearchResults, error) {
				if params.UserID != "user" || params.Query != "report" || params.Size != 10 {
					return internal.SearchResults{}, errors.New("unexpected params")
				}

				return internal.SearchResults{Tasks: []internal.Task{{ID: "1"}}, Total: 1}, nil
			},
		}

		svc := service.NewTask(zap.NewNop(), memory.NewTask(), search, nil)

		res, err := svc.Search(ctx, internal.SearchParams{UserID: "user", Query: " report "})
		if err != nil {
			t.Fatalf("expected no error, got %s", err)
		}

		if res.Total != 1 {
			t.Fatalf("unexpected results %+v", res)
		}

		_, err = svc.Search(ctx, internal.SearchParams{UserID: "user"})
		assertCode(t, err, internal.ErrorCodeInvalidArgument)
	})
}

func TestTask_ConcurrentCreate(t *testing.T) {
	t.Parallel()

	const n = 50

	svc := newTaskService(&fakeBroker{})
	ctx := context.Background()

	var wg sync.WaitGroup

	errC := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if _, err := svc.Create(ctx, internal.CreateParams{UserID: "user", Title: "task"}); err != nil {
				errC <- err
			}
		}()
	}

	wg.Wait()
	close(errC)

	for err := range errC {
		t.Fatalf("expected no error, got %s", err)
	}

	todo := internal.StatusTodo

	tasks, err := svc.By(ctx, internal.ListParams{UserID: "user", Status: &todo})
	if err != nil {
		t.Fatalf("expected no error, got %s", err)
	}

	assertDense(t, tasks, n)
}

func TestTask_ConcurrentReorderAndCreate(t *testing.T) {
	t.Parallel()

	const n = 20

	svc := newTaskService(&fakeBroker{})
	ctx := context.Background()

	existing := make([]internal.Task, n)

	for i := range existing {
		task, err := svc.Create(ctx, internal.CreateParams{UserID: "user", Title: "existing"})
		if err != nil {
			t.Fatalf("expected no error, got %s", err)
		}

		existing[i] = task
	}

	var wg sync.WaitGroup

	errC := make(chan error, 2*n)

	for i, task := range existing {
		wg.Add(2)

		to := internal.ColumnIndex{Status: internal.StatusInProgress, Index: i % 3}
		if i%2 == 0 {
			to = internal.ColumnIndex{Status: internal.StatusTodo, Index: 0}
		}

		go func(id string, to internal.ColumnIndex) {
			defer wg.Done()

			if _, err := svc.Reorder(ctx, internal.MoveParams{UserID: "user", TaskID: id, To: to}); err != nil {
				errC <- err
			}
		}(task.ID, to)

		go func() {
			defer wg.Done()

			if _, err := svc.Create(ctx, internal.CreateParams{UserID: "user", Title: "new"}); err != nil {
				errC <- err
			}
		}()
	}

	wg.Wait()
	close(errC)

	for err := range errC {
		t.Fatalf("expected no error, got %s", err)
	}

	total := 0

	for _, status := range []internal.Status{internal.StatusTodo, internal.StatusInProgress} {
		status := status

		tasks, err := svc.By(ctx, internal.ListParams{UserID: "user", Status: &status})
		if err != nil {
			t.Fatalf("expected no error, got %s", err)
		}

		assertDense(t, tasks, len(tasks))

		total += len(tasks)
	}

	if total != 2*n {
		t.Fatalf("expected %d tasks, got %d", 2*n, total)
	}
}

func assertDense(t *testing.T, tasks []internal.Task, n int) {
	t.Helper()

	if len(tasks) != n {
		t.Fatalf("expected %d tasks, got %d", n, len(tasks))
	}

	seen := make(map[int]bool, n)

	for _, task := range tasks {
		if task.Position < 0 || task.Position >= n || seen[task.Position] {
			t.Fatalf("unexpected position %d in %d tasks", task.Position, n)
		}

		seen[task.Position] = true
	}
}
