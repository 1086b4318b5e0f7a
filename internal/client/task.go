package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sanLimbu/taskboard-api/internal"
	"github.com/sanLimbu/taskboard-api/internal/rest"
)

// Filters narrows the listed tasks, zero values are ignored.
type Filters struct {
	Status   *internal.Status
	Priority *internal.Priority
	Sort     []internal.SortKey
}

func (f Filters) query() url.Values {
	res := url.Values{}

	if f.Status != nil {
		res.Set("status", string(*f.Status))
	}

	if f.Priority != nil {
		res.Set("priority", string(*f.Priority))
	}

	if len(f.Sort) > 0 {
		res.Set("sort", internal.FormatSort(f.Sort))
	}

	return res
}

// Tasks lists the tasks of the session user.
func (c *Client) Tasks(ctx context.Context, session *Session, filters Filters) ([]internal.Task, error) {
	var res rest.TasksResponse

	if err := c.do(ctx, session, request{method: http.MethodGet, path: "/api/tasks", query: filters.query()}, &res); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return rest.ConvertTasks(res.Data.Tasks), nil
}

// Task reads one task.
func (c *Client) Task(ctx context.Context, session *Session, id string) (internal.Task, error) {
	var res rest.TaskResponse

	if err := c.do(ctx, session, request{method: http.MethodGet, path: "/api/tasks/" + url.PathEscape(id)}, &res); err != nil {
		return internal.Task{}, fmt.Errorf("read task: %w", err)
	}

	return res.Data.Task.Convert(), nil
}

// Create stores a new task, the user and the position are assigned by the API.
func (c *Client) Create(ctx context.Context, session *Session, params internal.CreateParams) (internal.Task, error) {
	body := rest.CreateTaskRequest{
		Title:       params.Title,
		Description: params.Description,
		Priority:    string(params.Priority),
		Status:      string(params.Status),
		DueDate:     params.DueDate,
	}

	var res rest.TaskResponse

	if err := c.do(ctx, session, request{method: http.MethodPost, path: "/api/tasks", body: body}, &res); err != nil {
		return internal.Task{}, fmt.Errorf("create task: %w", err)
	}

	return res.Data.Task.Convert(), nil
}

// Update changes the non-nil fields of a task.
func (c *Client) Update(ctx context.Context, session *Session, id string, params internal.UpdateParams) (internal.Task, error) {
	body := rest.UpdateTaskRequest{
		Title:       params.Title,
		Description: params.Description,
		DueDate:     params.DueDate,
		Position:    params.Position,
	}

	if params.Priority != nil {
		p := string(*params.Priority)
		body.Priority = &p
	}

	if params.Status != nil {
		s := string(*params.Status)
		body.Status = &s
	}

	var res rest.TaskResponse

	if err := c.do(ctx, session, request{method: http.MethodPut, path: "/api/tasks/" + url.PathEscape(id), body: body}, &res); err != nil {
		return internal.Task{}, fmt.Errorf("update task: %w", err)
	}

	return res.Data.Task.Convert(), nil
}

// Delete removes a task.
func (c *Client) Delete(ctx context.Context, session *Session, id string) error {
	if err := c.do(ctx, session, request{method: http.MethodDelete, path: "/api/tasks/" + url.PathEscape(id)}, nil); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	return nil
}

// Reorder moves a task to a column slot and returns the resulting board.
func (c *Client) Reorder(ctx context.Context, session *Session, params internal.MoveParams) (internal.ReorderResult, error) {
	body := rest.ReorderRequest{
		From: rest.ColumnIndex{Status: string(params.From.Status), Index: params.From.Index},
		To:   rest.ColumnIndex{Status: string(params.To.Status), Index: params.To.Index},
		Task: params.TaskID,
	}

	var res rest.ReorderResponse

	if err := c.do(ctx, session, request{method: http.MethodPut, path: "/api/tasks/reorder", body: body}, &res); err != nil {
		return internal.ReorderResult{}, fmt.Errorf("reorder tasks: %w", err)
	}

	return internal.ReorderResult{
		Updated: rest.ConvertTasks(res.Data.Updated),
		Task:    res.Data.Task.Convert(),
	}, nil
}

// Stats returns the counters computed by the API.
func (c *Client) Stats(ctx context.Context, session *Session) (internal.Stats, error) {
	var res rest.StatsResponse

	if err := c.do(ctx, session, request{method: http.MethodGet, path: "/api/tasks/stats"}, &res); err != nil {
		return internal.Stats{}, fmt.Errorf("task stats: %w", err)
	}

	return res.Data.Stats.Convert(), nil
}

// Search finds tasks containing the query.
func (c *Client) Search(ctx context.Context, session *Session, params internal.SearchParams) (internal.SearchResults, error) {
	query := Filters{Status: params.Status, Priority: params.Priority}.query()
	query.Set("q", params.Query)

	if params.From > 0 {
		query.Set("from", strconv.FormatInt(params.From, 10))
	}

	if params.Size > 0 {
		query.Set("size", strconv.FormatInt(params.Size, 10))
	}

	var res rest.SearchResponse

	if err := c.do(ctx, session, request{method: http.MethodGet, path: "/api/tasks/search", query: query}, &res); err != nil {
		return internal.SearchResults{}, fmt.Errorf("search tasks: %w", err)
	}

	return internal.SearchResults{
		Tasks: rest.ConvertTasks(res.Data.Tasks),
		Total: res.Total,
	}, nil
}
