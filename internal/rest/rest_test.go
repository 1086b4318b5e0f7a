package rest_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sanLimbu/taskboard-api/internal/auth"
	"github.com/sanLimbu/taskboard-api/internal/memory"
	"github.com/sanLimbu/taskboard-api/internal/rest"
	"github.com/sanLimbu/taskboard-api/internal/service"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := zap.NewNop()

	tokens, err := auth.NewTokens("secret", time.Hour)
	if err != nil {
		t.Fatalf("new tokens: %v", err)
	}

	users := service.NewUser(logger, memory.NewUser(), tokens)
	tasks := service.NewTask(logger, memory.NewTask(), nil, nil)

	router := chi.NewRouter()

	rest.RegisterHealth(router)
	rest.RegisterOpenAPI(router)
	rest.NewUserHandler(users, logger, time.Hour, false).Register(router)

	router.Group(func(r chi.Router) {
		r.Use(rest.Authenticate(users, logger))
		rest.NewTaskHandler(tasks, logger).Register(r)
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv
}

type response struct {
	status  int
	header  http.Header
	cookies []*http.Cookie
	body    []byte
}

func doRequest(t *testing.T, srv *httptest.Server, method, path, token string, body interface{}) response {
	t.Helper()

	var r io.Reader

	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, srv.URL+path, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	return response{status: resp.StatusCode, header: resp.Header, cookies: resp.Cookies(), body: b}
}

func decode(t *testing.T, resp response, dst interface{}) {
	t.Helper()

	if err := json.Unmarshal(resp.body, dst); err != nil {
		t.Fatalf("unmarshal %s: %v", resp.body, err)
	}
}

func register(t *testing.T, srv *httptest.Server, email string) string {
	t.Helper()

	resp := doRequest(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Mario",
		"email":    email,
		"password": "secret123",
	})

	if resp.status != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.status, resp.body)
	}

	var res rest.AuthResponse
	decode(t, resp, &res)

	return res.Token
}

func createTask(t *testing.T, srv *httptest.Server, token, title, status string) rest.Task {
	t.Helper()

	resp := doRequest(t, srv, http.MethodPost, "/api/tasks", token, rest.CreateTaskRequest{Title: title, Status: status})
	if resp.status != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.status, resp.body)
	}

	var res rest.TaskResponse
	decode(t, resp, &res)

	return res.Data.Task
}
