package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sanLimbu/taskboard-api/internal"
	"github.com/sanLimbu/taskboard-api/internal/postgresql/db"
)

// User represents the repository used for interacting with User records.
type User struct {
	q *db.Queries
}

// NewUser instantiates the User repository.
func NewUser(pool *pgxpool.Pool) *User {
	return &User{
		q: db.New(pool),
	}
}

// Create inserts a new user record.
func (u *User) Create(ctx context.Context, params internal.CreateUserParams) (internal.User, error) {
	defer newOTELSpan(ctx, "User.Create").End()

	row, err := u.q.InsertUser(ctx, db.InsertUserParams{
		Name:     params.Name,
		Email:    params.Email,
		Password: params.PasswordHash,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return internal.User{}, internal.NewFieldErrorf(internal.ErrorCodeConflict, "email", "already exists")
		}

		return internal.User{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "insert user")
	}

	return convertUser(row), nil
}

// Find returns the requested user.
func (u *User) Find(ctx context.Context, id string) (internal.User, error) {
	defer newOTELSpan(ctx, "User.Find").End()

	uid, err := parseID(id, "user")
	if err != nil {
		return internal.User{}, err
	}

	row, err := u.q.SelectUser(ctx, uid)
	if err != nil {
		return internal.User{}, notFound(err, "user not found")
	}

	return convertUser(row), nil
}

// FindByEmail returns the user registered with email.
func (u *User) FindByEmail(ctx context.Context, email string) (internal.User, error) {
	defer newOTELSpan(ctx, "User.FindByEmail").End()

	row, err := u.q.SelectUserByEmail(ctx, email)
	if err != nil {
		return internal.User{}, notFound(err, "user not found")
	}

	return convertUser(row), nil
}
