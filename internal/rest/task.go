package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sanLimbu/taskboard-api/internal"
)

// TaskService defines the application service handling tasks.
type TaskService interface {
	By(ctx context.Context, params internal.ListParams) ([]internal.Task, error)
	Create(ctx context.Context, params internal.CreateParams) (internal.Task, error)
	Delete(ctx context.Context, id, userID string) error
	Reorder(ctx context.Context, params internal.MoveParams) (internal.ReorderResult, error)
	Search(ctx context.Context, params internal.SearchParams) (internal.SearchResults, error)
	Stats(ctx context.Context, userID string) (internal.Stats, error)
	Task(ctx context.Context, id, userID string) (internal.Task, error)
	Update(ctx context.Context, id, userID string, params internal.UpdateParams) (internal.Task, error)
}

// TaskHandler ...
type TaskHandler struct {
	svc    TaskService
	logger *zap.Logger
}

// NewTaskHandler ...
func NewTaskHandler(svc TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register connects the handlers to the router, r is expected to authenticate requests already.
func (t *TaskHandler) Register(r chi.Router) {
	r.Get("/api/tasks", t.list)
	r.Post("/api/tasks", t.create)
	r.Get("/api/tasks/stats", t.stats)
	r.Get("/api/tasks/search", t.search)
	r.Put("/api/tasks/reorder", t.reorder)
	r.Get("/api/tasks/{id}", t.task)
	r.Put("/api/tasks/{id}", t.update)
	r.Delete("/api/tasks/{id}", t.delete)
}

// Task is an activity that needs to be completed, placed in a status column.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Position    int        `json:"position"`
	UserID      string     `json:"user"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewTask converts the domain type.
func NewTask(t internal.Task) Task {
	return Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		DueDate:     t.DueDate,
		Position:    t.Position,
		UserID:      t.UserID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// Convert returns the domain type.
func (t Task) Convert() internal.Task {
	return internal.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    internal.Priority(t.Priority),
		Status:      internal.Status(t.Status),
		DueDate:     t.DueDate,
		Position:    t.Position,
		UserID:      t.UserID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func newTasks(tasks []internal.Task) []Task {
	res := make([]Task, len(tasks))
	for i, t := range tasks {
		res[i] = NewTask(t)
	}

	return res
}

// ConvertTasks returns the domain types.
func ConvertTasks(tasks []Task) []internal.Task {
	res := make([]internal.Task, len(tasks))
	for i, t := range tasks {
		res[i] = t.Convert()
	}

	return res
}

// TaskData wraps a single task.
type TaskData struct {
	Task Task `json:"task"`
}

// TaskResponse defines the response returned back after reading or writing one task.
type TaskResponse struct {
	Success bool     `json:"success"`
	Data    TaskData `json:"data"`
}

// TasksData wraps a list of tasks.
type TasksData struct {
	Tasks []Task `json:"tasks"`
}

// TasksResponse defines the response returned back after listing tasks.
type TasksResponse struct {
	Success bool      `json:"success"`
	Results int       `json:"results"`
	Data    TasksData `json:"data"`
}

func (t *TaskHandler) list(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	sort, err := internal.ParseSort(r.URL.Query().Get("sort"))
	if err != nil {
		renderErrorResponse(r.Context(), w, t.logger, "invalid sort", err)

		return
	}

	params := internal.ListParams{
		UserID:   user.ID,
		Status:   statusQuery(r),
		Priority: priorityQuery(r),
		Sort:     sort,
	}

	tasks, err := t.svc.By(r.Context(), params)
	if err != nil {
		renderErrorResponse(r.Context(), w, t.logger, "list failed", err)

		return
	}

	renderResponse(w, &TasksResponse{
		Success: true,
		Results: len(tasks),
		Data:    TasksData{Tasks: newTasks(tasks)},
	}, http.StatusOK)
}

// CreateTaskRequest defines the request used for creating tasks.
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	Status      string     `json:"status,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

func (t *TaskHandler) create(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	var req CreateTaskRequest
	if err := decodeRequest(r, &req); err != nil {
		renderErrorResponse(r.Context(), w, t.logger, "invalid request", err)

		return
	}

	task, err := t.svc.Create(r.Context(), internal.CreateParams{
		UserID:      user.ID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    internal.Priority(req.Priority),
		Status:      internal.Status(req.Status),
		DueDate:     req.DueDate,
	})
	if err != nil {
		renderErrorResponse(r.Context(), w, t.logger, "create failed", err)

		return
	}

	renderResponse(w, &TaskResponse{Success: true, Data: TaskData{Task: NewTask(task)}}, http.StatusCreated)
}

func (t *TaskHandler) task(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	task, err := t.svc.Task(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil {
		renderErrorResponse(r.Context(), w, t.logger, "find failed", err)

		return
	}

	renderResponse(w, &TaskResponse{Success: true, Data: TaskData{Task: NewTask(task)}}, http.StatusOK)
}

// UpdateTaskRequest defines the request used for updating a task, omitted fields are left untouched.
type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Status      *string    `json:"status,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Position    *int       `json:"position,omitempty"`
}

// Convert returns the domain type.
func (u UpdateTaskRequest) Convert() internal.UpdateParams {
	res := internal.UpdateParams{
		Title:       u.Title,
		Description: u.Description,
		DueDate:     u.DueDate,
		Position:    u.Position,
	}

	if u.Priority != nil {
		p := internal.Priority(*u.Priority)
		res.Priority = &p
	}

	if u.Status != nil {
		s := internal.Status(*u.Status)
		res.Status = &s
	}

	return res
}

func (t *TaskHandler) update(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	var req UpdateTaskRequest
	if err := decodeRequest(r, &req); err != nil {
		renderErrorResponse(r.Context(), w, t.logger, "invalid request", err)

		return
	}

	task, err := t.svc.Update(r.Context(), chi.URLParam(r, "id"), user.ID, req.Convert())
	if err != nil {
		renderErrorResponse(r.Context(), w, t.logger, "update failed", err)

		return
	}

	renderResponse(w, &TaskResponse{Success: true, Data: TaskData{Task: NewTask(task)}}, http.StatusOK)
}

func (t *TaskHandler) delete(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	if err := t.svc.Delete(r.Context(), chi.URLParam(r, "id"), user.ID); err != nil {
		renderErrorResponse(r.Context(), w, t.logger, "delete failed", err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ColumnIndex identifies a slot inside a status column.
type ColumnIndex struct {
	Status string `json:"status"`
	Index  int    `json:"index"`
}

// ReorderRequest defines the request used for moving a task, also known as the drag result.
type ReorderRequest struct {
	From ColumnIndex `json:"from"`
	To   ColumnIndex `json:"to"`
	Task string      `json:"task"`
}

// ReorderData is the board after a move.
type ReorderData struct {
	Updated []Task `json:"updated"`
	Task    Task   `json:"task"`
}

// ReorderResponse defines the response returned back after moving a task.
type ReorderResponse struct {
	Success bool        `json:"success"`
	Data    ReorderData `json:"data"`
}

func (t *TaskHandler) reorder(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	var req ReorderRequest
	if err := decodeRequest(r, &req); err != nil {
		renderErrorResponse(r.Context(), w, t.logger, "invalid request", err)

		return
	}

	res, err := t.svc.Reorder(r.Context(), internal.MoveParams{
		UserID: user.ID,
		TaskID: req.Task,
		From:   internal.ColumnIndex{Status: internal.Status(req.From.Status), Index: req.From.Index},
		To:     internal.ColumnIndex{Status: internal.Status(req.To.Status), Index: req.To.Index},
	})
	if err != nil {
		renderErrorResponse(r.Context(), w, t.logger, "reorder failed", err)

		return
	}

	renderResponse(w, &ReorderResponse{
		Success: true,
		Data: ReorderData{
			Updated: newTasks(res.Updated),
			Task:    NewTask(res.Task),
		},
	}, http.StatusOK)
}

// PriorityCounts holds the number of tasks per priority.
type PriorityCounts struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// Stats aggregates the tasks of the user.
type Stats struct {
	Total      int            `json:"total"`
	Todo       int            `json:"todo"`
	InProgress int            `json:"inProgress"`
	Completed  int            `json:"completed"`
	ByPriority PriorityCounts `json:"byPriority"`
}

// NewStats converts the domain type.
func NewStats(s internal.Stats) Stats {
	return Stats{
		Total:      s.Total,
		Todo:       s.Todo,
		InProgress: s.InProgress,
		Completed:  s.Completed,
		ByPriority: PriorityCounts(s.ByPriority),
	}
}

// Convert returns the domain type.
func (s Stats) Convert() internal.Stats {
	return internal.Stats{
		Total:      s.Total,
		Todo:       s.Todo,
		InProgress: s.InProgress,
		Completed:  s.Completed,
		ByPriority: internal.PriorityCounts(s.ByPriority),
	}
}

// StatsResponse defines the response returned back after aggregating tasks.
type StatsResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Stats Stats `json:"stats"`
	} `json:"data"`
}

func (t *TaskHandler) stats(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	stats, err := t.svc.Stats(r.Context(), user.ID)
	if err != nil {
		renderErrorResponse(r.Context(), w, t.logger, "stats failed", err)

		return
	}

	var res StatsResponse

	res.Success = true
	res.Data.Stats = NewStats(stats)

	renderResponse(w, &res, http.StatusOK)
}

// SearchResponse defines the response returned back after searching tasks.
type SearchResponse struct {
	Success bool      `json:"success"`
	Results int       `json:"results"`
	Total   int64     `json:"total"`
	Data    TasksData `json:"data"`
}

func (t *TaskHandler) search(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	from, err := int64Query(r, "from")
	if err != nil {
		renderErrorResponse(r.Context(), w, t.logger, "invalid from", err)

		return
	}

	size, err := int64Query(r, "size")
	if err != nil {
		renderErrorResponse(r.Context(), w, t.logger, "invalid size", err)

		return
	}

	res, err := t.svc.Search(r.Context(), internal.SearchParams{
		UserID:   user.ID,
		Query:    r.URL.Query().Get("q"),
		Status:   statusQuery(r),
		Priority: priorityQuery(r),
		From:     from,
		Size:     size,
	})
	if err != nil {
		renderErrorResponse(r.Context(), w, t.logger, "search failed", err)

		return
	}

	renderResponse(w, &SearchResponse{
		Success: true,
		Results: len(res.Tasks),
		Total:   res.Total,
		Data:    TasksData{Tasks: newTasks(res.Tasks)},
	}, http.StatusOK)
}

func statusQuery(r *http.Request) *internal.Status {
	v := r.URL.Query().Get("status")
	if v == "" {
		return nil
	}

	s := internal.Status(v)

	return &s
}

func priorityQuery(r *http.Request) *internal.Priority {
	v := r.URL.Query().Get("priority")
	if v == "" {
		return nil
	}

	p := internal.Priority(v)

	return &p
}

func int64Query(r *http.Request, name string) (int64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}

	res, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, internal.NewFieldErrorf(internal.ErrorCodeInvalidArgument, name, "must be a number")
	}

	return res, nil
}
