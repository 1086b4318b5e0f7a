package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sanLimbu/taskboard-api/internal"
	"github.com/sanLimbu/taskboard-api/internal/client"
)

func newClient(t *testing.T, handler http.HandlerFunc, conf client.Config) (*client.Client, *int32) {
	t.Helper()

	var calls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	conf.BaseURL = srv.URL

	c, err := client.New(conf)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	return c, &calls
}

func assertCode(t *testing.T, err error, code internal.ErrorCode) {
	t.Helper()

	var ierr *internal.Error
	if !errors.As(err, &ierr) || ierr.Code() != code {
		t.Fatalf("expected code %d, got %v", code, err)
	}
}

func TestNew(t *testing.T) {
	for _, base := range []string{"", "localhost", "://nope"} {
		if _, err := client.New(client.Config{BaseURL: base}); err == nil {
			t.Fatalf("%q: expected error", base)
		}
	}
}

func TestClient_UnauthorizedClearsSession(t *testing.T) {
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer expired" {
			t.Errorf("unexpected header %q", r.Header.Get("Authorization"))
		}

		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"message":"not authorized"}`))
	}, client.Config{})

	session := client.NewSession("expired")
	session.Set("expired", internal.User{ID: "user"})

	_, err := c.Tasks(context.Background(), session, client.Filters{})
	assertCode(t, err, internal.ErrorCodeUnauthenticated)

	if session.Authenticated() || session.User().ID != "" {
		t.Fatalf("expected session to be cleared")
	}
}

func TestClient_ErrorFields(t *testing.T) {
	c, _ := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"message":"Validation failed","errors":{"title":"must be between 1 and 100 characters"}}`))
	}, client.Config{})

	_, err := c.Create(context.Background(), client.NewSession("token"), internal.CreateParams{})
	assertCode(t, err, internal.ErrorCodeInvalidArgument)

	var rerr *client.Error
	if !errors.As(err, &rerr) || rerr.Fields["title"] == "" || rerr.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected error %#v", err)
	}
}

func TestClient_Breaker(t *testing.T) {
	t.Run("client errors keep it closed", func(t *testing.T) {
		c, calls := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}, client.Config{})

		for i := 0; i < 5; i++ {
			_, err := c.Task(context.Background(), client.NewSession("token"), "id")
			assertCode(t, err, internal.ErrorCodeNotFound)
		}

		if *calls != 5 {
			t.Fatalf("expected 5 calls, got %d", *calls)
		}
	})

	t.Run("server errors open it", func(t *testing.T) {
		c, calls := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}, client.Config{})

		for i := 0; i < 5; i++ {
			if err := c.Health(context.Background()); err == nil {
				t.Fatalf("expected error")
			}
		}

		if *calls != 3 {
			t.Fatalf("expected 3 calls, got %d", *calls)
		}
	})
}

func TestClient_Authorize(t *testing.T) {
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Token") != "token" || r.Header.Get("Authorization") != "" {
			w.WriteHeader(http.StatusUnauthorized)

			return
		}

		if r.URL.Query().Get("status") != "todo" || r.URL.Query().Get("sort") != "position,-createdAt" {
			w.WriteHeader(http.StatusBadRequest)

			return
		}

		_, _ = w.Write([]byte(`{"success":true,"results":1,"data":{"tasks":[{"id":"a","title":"a","status":"todo","priority":"low","position":0}]}}`))
	}, client.Config{
		Authorize: func(req *http.Request, token string) {
			req.Header.Set("X-Api-Token", token)
		},
	})

	status := internal.StatusTodo

	tasks, err := c.Tasks(context.Background(), client.NewSession("token"), client.Filters{
		Status: &status,
		Sort:   []internal.SortKey{{Field: internal.SortFieldPosition}, {Field: internal.SortFieldCreatedAt, Desc: true}},
	})
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}

	if len(tasks) != 1 || tasks[0].Status != internal.StatusTodo || tasks[0].Priority != internal.PriorityLow {
		t.Fatalf("unexpected tasks %#v", tasks)
	}
}
