package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"time"

	esv7 "github.com/elastic/go-elasticsearch/v7"
	esv7api "github.com/elastic/go-elasticsearch/v7/esapi"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/sanLimbu/taskboard-api/internal"
)

const otelName = "github.com/sanLimbu/taskboard-api/internal/elasticsearch"

// Task represents the repository used for interacting with Task records.
type Task struct {
	client *esv7.Client
	index  string
}

type indexedTask struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Priority    internal.Priority `json:"priority"`
	Status      internal.Status   `json:"status"`
	Position    int               `json:"position"`
	DueDate     int64             `json:"due_date,omitempty"`
	CreatedAt   int64             `json:"created_at"`
	UpdatedAt   int64             `json:"updated_at"`
}

// NewTask instantiates the Task repository.
func NewTask(client *esv7.Client) *Task {
	return &Task{
		client: client,
		index:  "tasks",
	}
}

// Index creates or updates a task in an index.
func (t *Task) Index(ctx context.Context, task internal.Task) error {
	defer newOTELSpan(ctx, "Task.Index").End()

	var buf bytes.Buffer

	if err := json.NewEncoder(&buf).Encode(newIndexedTask(task)); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "json.NewEncoder.Encode")
	}

	req := esv7api.IndexRequest{
		Index:      t.index,
		Body:       &buf,
		DocumentID: task.ID,
		Refresh:    "true",
	}

	resp, err := req.Do(ctx, t.client)
	if err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "IndexRequest.Do")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return internal.NewErrorf(internal.ErrorCodeUnknown, "IndexRequest.Do %d", resp.StatusCode)
	}

	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

// Delete removes a task from the index.
func (t *Task) Delete(ctx context.Context, id string) error {
	defer newOTELSpan(ctx, "Task.Delete").End()

	req := esv7api.DeleteRequest{
		Index:      t.index,
		DocumentID: id,
	}

	resp, err := req.Do(ctx, t.client)
	if err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "DeleteRequest.Do")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return internal.NewErrorf(internal.ErrorCodeUnknown, "DeleteRequest.Do %d", resp.StatusCode)
	}

	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

// Search returns the tasks of the user matching a query.
func (t *Task) Search(ctx context.Context, args internal.SearchParams) (internal.SearchResults, error) {
	defer newOTELSpan(ctx, "Task.Search").End()

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(searchQuery(args)); err != nil {
		return internal.SearchResults{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "json.NewEncoder.Encode")
	}

	req := esv7api.SearchRequest{
		Index: []string{t.index},
		Body:  &buf,
	}

	resp, err := req.Do(ctx, t.client)
	if err != nil {
		return internal.SearchResults{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "SearchRequest.Do")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return internal.SearchResults{}, internal.NewErrorf(internal.ErrorCodeUnknown, "SearchRequest.Do %d", resp.StatusCode)
	}

	return decodeHits(resp.Body)
}

// searchQuery always filters by owner, the remaining filters narrow the result further.
func searchQuery(args internal.SearchParams) map[string]interface{} {
	filter := []interface{}{
		map[string]interface{}{
			"term": map[string]interface{}{"user": args.UserID},
		},
	}

	if args.Status != nil {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"status": *args.Status},
		})
	}

	if args.Priority != nil {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"priority": *args.Priority},
		})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":  args.Query,
						"fields": []string{"title^2", "description"},
					},
				},
				"filter": filter,
			},
		},
		"sort": []interface{}{
			"_score",
			map[string]interface{}{"id": "asc"},
		},
		"from": args.From,
		"size": args.Size,
	}
}

func decodeHits(r io.Reader) (internal.SearchResults, error) {
	var hits struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source indexedTask `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(r).Decode(&hits); err != nil {
		return internal.SearchResults{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "json.NewDecoder.Decode")
	}

	res := make([]internal.Task, len(hits.Hits.Hits))

	for i, hit := range hits.Hits.Hits {
		res[i] = hit.Source.task()
	}

	return internal.SearchResults{
		Tasks: res,
		Total: hits.Hits.Total.Value,
	}, nil
}

func newIndexedTask(task internal.Task) indexedTask {
	res := indexedTask{
		ID:          task.ID,
		UserID:      task.UserID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		Status:      task.Status,
		Position:    task.Position,
		CreatedAt:   task.CreatedAt.UnixNano(),
		UpdatedAt:   task.UpdatedAt.UnixNano(),
	}

	if task.DueDate != nil {
		res.DueDate = task.DueDate.UnixNano()
	}

	return res
}

func (i indexedTask) task() internal.Task {
	res := internal.Task{
		ID:          i.ID,
		UserID:      i.UserID,
		Title:       i.Title,
		Description: i.Description,
		Priority:    i.Priority,
		Status:      i.Status,
		Position:    i.Position,
		CreatedAt:   time.Unix(0, i.CreatedAt).UTC(),
		UpdatedAt:   time.Unix(0, i.UpdatedAt).UTC(),
	}

	if i.DueDate != 0 {
		due := time.Unix(0, i.DueDate).UTC()
		res.DueDate = &due
	}

	return res
}

func newOTELSpan(ctx context.Context, name string) trace.Span {
	_, span := otel.Tracer(otelName).Start(ctx, name)

	span.SetAttributes(semconv.DBSystemElasticsearch)

	return span
}
