package board_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sanLimbu/taskboard-api/internal"
	"github.com/sanLimbu/taskboard-api/internal/auth"
	"github.com/sanLimbu/taskboard-api/internal/board"
	"github.com/sanLimbu/taskboard-api/internal/client"
	"github.com/sanLimbu/taskboard-api/internal/memory"
	"github.com/sanLimbu/taskboard-api/internal/rest"
	"github.com/sanLimbu/taskboard-api/internal/service"
)

func newAPI(t *testing.T) *client.Client {
	t.Helper()

	logger := zap.NewNop()

	tokens, err := auth.NewTokens("secret", time.Hour)
	if err != nil {
		t.Fatalf("new tokens: %v", err)
	}

	users := service.NewUser(logger, memory.NewUser(), tokens)
	tasks := service.NewTask(logger, memory.NewTask(), nil, nil)

	router := chi.NewRouter()
	rest.NewUserHandler(users, logger, time.Hour, false).Register(router)
	router.Group(func(r chi.Router) {
		r.Use(rest.Authenticate(users, logger))
		rest.NewTaskHandler(tasks, logger).Register(r)
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	api, err := client.New(client.Config{BaseURL: srv.URL, HTTPClient: srv.Client(), Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	return api
}

func TestBoard_EndToEnd(t *testing.T) {
	ctx := context.Background()
	api := newAPI(t)
	session := client.NewSession("")
	b := board.New(api, session, board.NewState(), zap.NewNop())

	user, err := b.Register(ctx, internal.RegisterParams{Name: "Mario", Email: "mario@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if !session.Authenticated() || session.User().ID != user.ID {
		t.Fatalf("expected authenticated session")
	}

	create := func(title string, status internal.Status) internal.Task {
		task, err := b.Create(ctx, internal.CreateParams{Title: title, Status: status})
		if err != nil {
			t.Fatalf("create %s: %v", title, err)
		}

		return task
	}

	a := create("A", internal.StatusTodo)
	bt := create("B", internal.StatusTodo)
	c := create("C", internal.StatusInProgress)

	todo := internal.StatusTodo

	listed, err := api.Tasks(ctx, session, client.Filters{
		Status: &todo,
		Sort:   []internal.SortKey{{Field: internal.SortFieldCreatedAt}},
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(listed) != 2 || listed[0].ID != a.ID || listed[1].ID != bt.ID {
		t.Fatalf("expected [A, B], got %v", ids(listed))
	}

	if listed[0].Position != 0 || listed[1].Position != 1 {
		t.Fatalf("expected positions 0 and 1, got %d and %d", listed[0].Position, listed[1].Position)
	}

	if c.Position != 0 {
		t.Fatalf("expected C at 0, got %d", c.Position)
	}

	if err := b.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	res, err := b.Reorder(ctx, internal.MoveParams{
		TaskID: a.ID,
		From:   internal.ColumnIndex{Status: internal.StatusTodo, Index: 0},
		To:     internal.ColumnIndex{Status: internal.StatusInProgress, Index: 0},
	})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}

	if res.Task.Status != internal.StatusInProgress || res.Task.Position != 0 {
		t.Fatalf("unexpected moved task %#v", res.Task)
	}

	all, err := api.Tasks(ctx, session, client.Filters{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	for _, task := range all {
		if task.ID == a.ID && task.Status != internal.StatusInProgress {
			t.Fatalf("expected A in progress, got %s", task.Status)
		}
	}

	state := b.State()

	if got := ids(state.ByStatus(internal.StatusInProgress)); len(got) != 2 || got[0] != a.ID || got[1] != c.ID {
		t.Fatalf("unexpected in-progress column %v", got)
	}

	if got := ids(state.ByStatus(internal.StatusTodo)); len(got) != 1 || got[0] != bt.ID {
		t.Fatalf("unexpected todo column %v", got)
	}

	stats := state.Stats()
	if stats.Total != 3 || stats.Todo != 1 || stats.InProgress != 2 {
		t.Fatalf("unexpected stats %#v", stats)
	}

	if err := b.Delete(ctx, bt.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := api.Task(ctx, session, bt.ID); err == nil {
		t.Fatalf("expected deleted task to be gone")
	}

	b.Logout()

	if _, err := api.Tasks(ctx, session, client.Filters{}); err == nil {
		t.Fatalf("expected unauthenticated error after logout")
	}
}
