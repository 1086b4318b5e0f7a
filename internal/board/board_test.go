package board_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/sanLimbu/taskboard-api/internal"
	"github.com/sanLimbu/taskboard-api/internal/board"
	"github.com/sanLimbu/taskboard-api/internal/client"
)

type fakeAPI struct {
	board.API

	tasks      []internal.Task
	listCalls  int
	lastFilter client.Filters
	reorderErr error
	createErr  error
}

func (f *fakeAPI) Tasks(_ context.Context, _ *client.Session, filters client.Filters) ([]internal.Task, error) {
	f.listCalls++
	f.lastFilter = filters

	return f.tasks, nil
}

func (f *fakeAPI) Reorder(_ context.Context, _ *client.Session, _ internal.MoveParams) (internal.ReorderResult, error) {
	return internal.ReorderResult{}, f.reorderErr
}

func (f *fakeAPI) Create(_ context.Context, _ *client.Session, params internal.CreateParams) (internal.Task, error) {
	if f.createErr != nil {
		return internal.Task{}, f.createErr
	}

	return internal.Task{ID: "new", Title: params.Title, Status: internal.StatusTodo}, nil
}

func TestBoard_ReorderFailureReloads(t *testing.T) {
	api := &fakeAPI{
		tasks:      []internal.Task{newTask("server", internal.StatusTodo, 0, internal.PriorityLow)},
		reorderErr: internal.NewErrorf(internal.ErrorCodeNotFound, "task not found"),
	}

	state := board.NewState()
	state.Replace([]internal.Task{newTask("stale", internal.StatusTodo, 0, internal.PriorityLow)})

	b := board.New(api, client.NewSession("token"), state, zap.NewNop())

	if _, err := b.Reorder(context.Background(), internal.MoveParams{TaskID: "stale"}); err == nil {
		t.Fatalf("expected error")
	}

	if api.listCalls != 1 {
		t.Fatalf("expected a reload, got %d calls", api.listCalls)
	}

	if tasks := state.Tasks(); len(tasks) != 1 || tasks[0].ID != "server" {
		t.Fatalf("expected server tasks, got %#v", tasks)
	}
}

func TestBoard_SetFiltersFetches(t *testing.T) {
	api := &fakeAPI{}
	b := board.New(api, client.NewSession("token"), board.NewState(), zap.NewNop())

	high := internal.PriorityHigh

	if err := b.SetFilters(context.Background(), board.Filters{Priority: &high}); err != nil {
		t.Fatalf("set filters: %v", err)
	}

	if api.listCalls != 1 || api.lastFilter.Priority == nil || *api.lastFilter.Priority != high {
		t.Fatalf("expected filtered fetch, got %#v", api.lastFilter)
	}
}

func TestBoard_UnauthenticatedResets(t *testing.T) {
	api := &fakeAPI{createErr: internal.NewErrorf(internal.ErrorCodeUnauthenticated, "not authorized")}

	state := board.NewState()
	state.SetUser(internal.User{ID: "user"})
	state.Replace([]internal.Task{newTask("a", internal.StatusTodo, 0, internal.PriorityLow)})

	b := board.New(api, client.NewSession("token"), state, zap.NewNop())

	if _, err := b.Create(context.Background(), internal.CreateParams{Title: "b"}); err == nil {
		t.Fatalf("expected error")
	}

	if _, ok := state.User(); ok || len(state.Tasks()) != 0 {
		t.Fatalf("expected state to be reset")
	}
}

func TestBoard_Logout(t *testing.T) {
	session := client.NewSession("token")
	state := board.NewState()
	state.SetUser(internal.User{ID: "user"})

	board.New(&fakeAPI{}, session, state, zap.NewNop()).Logout()

	if session.Authenticated() {
		t.Fatalf("expected session to be cleared")
	}

	if _, ok := state.User(); ok {
		t.Fatalf("expected user to be cleared")
	}
}

func TestBoard_ClearFilterFetches(t *testing.T) {
	api := &fakeAPI{}
	b := board.New(api, client.NewSession("token"), board.NewState(), zap.NewNop())

	todo := internal.StatusTodo
	high := internal.PriorityHigh
	sort := []internal.SortKey{{Field: internal.SortFieldDueDate}}

	if err := b.SetFilters(context.Background(), board.Filters{Status: &todo, Priority: &high, Sort: sort}); err != nil {
		t.Fatalf("set filters: %v", err)
	}

	if err := b.ClearFilter(context.Background(), board.FilterPriority); err != nil {
		t.Fatalf("clear filter: %v", err)
	}

	f := api.lastFilter

	if api.listCalls != 2 || f.Priority != nil || f.Status == nil || *f.Status != todo {
		t.Fatalf("unexpected fetch %#v", f)
	}

	if diff := cmp.Diff(sort, f.Sort); diff != "" {
		t.Fatalf("sort mismatch (-want +got):\n%s", diff)
	}
}
