package board

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sanLimbu/taskboard-api/internal"
	"github.com/sanLimbu/taskboard-api/internal/client"
)

// API defines the calls the board makes, *client.Client implements it.
type API interface {
	Create(ctx context.Context, session *client.Session, params internal.CreateParams) (internal.Task, error)
	Delete(ctx context.Context, session *client.Session, id string) error
	Login(ctx context.Context, session *client.Session, params internal.LoginParams) (internal.User, error)
	Me(ctx context.Context, session *client.Session) (internal.User, error)
	Register(ctx context.Context, session *client.Session, params internal.RegisterParams) (internal.User, error)
	Reorder(ctx context.Context, session *client.Session, params internal.MoveParams) (internal.ReorderResult, error)
	Tasks(ctx context.Context, session *client.Session, filters client.Filters) ([]internal.Task, error)
	Update(ctx context.Context, session *client.Session, id string, params internal.UpdateParams) (internal.Task, error)
}

// Board performs the actions of the user: it calls the API and, once the call succeeds, applies the
// matching transition to State.
type Board struct {
	api     API
	session *client.Session
	state   *State
	logger  *zap.Logger
}

// New instantiates the Board.
func New(api API, session *client.Session, state *State, logger *zap.Logger) *Board {
	return &Board{
		api:     api,
		session: session,
		state:   state,
		logger:  logger,
	}
}

// State returns the cache the board mutates.
func (b *Board) State() *State {
	return b.state
}

// Register signs up.
func (b *Board) Register(ctx context.Context, params internal.RegisterParams) (internal.User, error) {
	user, err := b.api.Register(ctx, b.session, params)
	if err != nil {
		return internal.User{}, fmt.Errorf("api register: %w", err)
	}

	b.state.SetUser(user)

	return user, nil
}

// Login signs in.
func (b *Board) Login(ctx context.Context, params internal.LoginParams) (internal.User, error) {
	user, err := b.api.Login(ctx, b.session, params)
	if err != nil {
		return internal.User{}, fmt.Errorf("api login: %w", err)
	}

	b.state.SetUser(user)

	return user, nil
}

// Restore loads the user of an existing session.
func (b *Board) Restore(ctx context.Context) (internal.User, error) {
	user, err := b.api.Me(ctx, b.session)
	if err != nil {
		return internal.User{}, b.fail(fmt.Errorf("api me: %w", err))
	}

	b.state.SetUser(user)

	return user, nil
}

// Logout forgets the session and the cached tasks.
func (b *Board) Logout() {
	b.session.Clear()
	b.state.Reset()
}

// Load fetches the tasks matching the active filters.
func (b *Board) Load(ctx context.Context) error {
	f := b.state.Filters()

	tasks, err := b.api.Tasks(ctx, b.session, client.Filters{Status: f.Status, Priority: f.Priority, Sort: f.Sort})
	if err != nil {
		return b.fail(fmt.Errorf("api tasks: %w", err))
	}

	b.state.Replace(tasks)

	return nil
}

// SetFilters changes the selection and fetches the matching tasks.
func (b *Board) SetFilters(ctx context.Context, f Filters) error {
	b.state.SetFilters(f)

	return b.Load(ctx)
}

// ClearFilter drops one field of the selection and fetches the matching tasks.
func (b *Board) ClearFilter(ctx context.Context, field FilterField) error {
	b.state.ClearFilter(field)

	return b.Load(ctx)
}

// ClearFilters selects every task and fetches them.
func (b *Board) ClearFilters(ctx context.Context) error {
	b.state.ClearFilters()

	return b.Load(ctx)
}

// Create stores a new task.
func (b *Board) Create(ctx context.Context, params internal.CreateParams) (internal.Task, error) {
	task, err := b.api.Create(ctx, b.session, params)
	if err != nil {
		return internal.Task{}, b.fail(fmt.Errorf("api create: %w", err))
	}

	b.state.Insert(task)

	return task, nil
}

// Update changes a task.
func (b *Board) Update(ctx context.Context, id string, params internal.UpdateParams) (internal.Task, error) {
	task, err := b.api.Update(ctx, b.session, id, params)
	if err != nil {
		return internal.Task{}, b.fail(fmt.Errorf("api update: %w", err))
	}

	b.state.Update(task)

	return task, nil
}

// Delete removes a task.
func (b *Board) Delete(ctx context.Context, id string) error {
	if err := b.api.Delete(ctx, b.session, id); err != nil {
		return b.fail(fmt.Errorf("api delete: %w", err))
	}

	b.state.Remove(id)

	return nil
}

// Reorder moves a task and installs the board returned by the API, when the move fails the tasks are
// fetched again so the cache matches the server.
func (b *Board) Reorder(ctx context.Context, params internal.MoveParams) (internal.ReorderResult, error) {
	res, err := b.api.Reorder(ctx, b.session, params)
	if err != nil {
		err = b.fail(fmt.Errorf("api reorder: %w", err))

		if b.session.Authenticated() {
			if lerr := b.Load(ctx); lerr != nil {
				b.logger.Warn("couldn't reload tasks after failed reorder", zap.Error(lerr))
			}
		}

		return internal.ReorderResult{}, err
	}

	b.state.ApplyReorder(res)

	return res, nil
}

// fail resets the state when the credentials were rejected.
func (b *Board) fail(err error) error {
	var ierr *internal.Error
	if errors.As(err, &ierr) && ierr.Code() == internal.ErrorCodeUnauthenticated {
		b.state.Reset()
	}

	return err
}
