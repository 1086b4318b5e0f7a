package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/sanLimbu/taskboard-api/internal"
	"github.com/sanLimbu/taskboard-api/internal/auth"
)

// UserRepository defines the datastore handling persisting User records.
type UserRepository interface {
	Create(ctx context.Context, params internal.CreateUserParams) (internal.User, error)
	Find(ctx context.Context, id string) (internal.User, error)
	FindByEmail(ctx context.Context, email string) (internal.User, error)
}

// TokenIssuer defines the component issuing and verifying bearer tokens.
type TokenIssuer interface {
	Issue(userID string) (string, error)
	Verify(token string) (string, error)
}

// User defines the application service in charge of registering and authenticating users.
type User struct {
	logger *zap.Logger
	repo   UserRepository
	tokens TokenIssuer
}

// NewUser instantiates the User service.
func NewUser(logger *zap.Logger, repo UserRepository, tokens TokenIssuer) *User {
	return &User{
		logger: logger,
		repo:   repo,
		tokens: tokens,
	}
}

// Register creates a new user and returns a token for it.
func (u *User) Register(ctx context.Context, params internal.RegisterParams) (internal.User, string, error) {
	ctx, span := trace.SpanFromContext(ctx).Tracer().Start(ctx, "User.Register")
	defer span.End()

	params = params.WithDefaults()

	if err := params.Validate(); err != nil {
		return internal.User{}, "", fmt.Errorf("params.Validate: %w", err)
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return internal.User{}, "", fmt.Errorf("auth.HashPassword: %w", err)
	}

	user, err := u.repo.Create(ctx, internal.CreateUserParams{
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: hash,
	})
	if err != nil {
		return internal.User{}, "", fmt.Errorf("repo create: %w", err)
	}

	token, err := u.tokens.Issue(user.ID)
	if err != nil {
		return internal.User{}, "", fmt.Errorf("tokens.Issue: %w", err)
	}

	return user, token, nil
}

// Login verifies the credentials and returns a token for the user. Unknown emails and wrong passwords
// return the same error.
func (u *User) Login(ctx context.Context, params internal.LoginParams) (internal.User, string, error) {
	ctx, span := trace.SpanFromContext(ctx).Tracer().Start(ctx, "User.Login")
	defer span.End()

	params.Email = internal.NormalizeEmail(params.Email)

	if err := params.Validate(); err != nil {
		return internal.User{}, "", fmt.Errorf("params.Validate: %w", err)
	}

	user, err := u.repo.FindByEmail(ctx, params.Email)
	if err != nil {
		if isNotFound(err) {
			return internal.User{}, "", internal.WrapErrorf(err, internal.ErrorCodeUnauthenticated, "invalid credentials")
		}

		return internal.User{}, "", fmt.Errorf("repo find by email: %w", err)
	}

	if !auth.ComparePassword(user.Password, params.Password) {
		return internal.User{}, "", internal.NewErrorf(internal.ErrorCodeUnauthenticated, "invalid credentials")
	}

	token, err := u.tokens.Issue(user.ID)
	if err != nil {
		return internal.User{}, "", fmt.Errorf("tokens.Issue: %w", err)
	}

	return user, token, nil
}

// User gets an existing User.
func (u *User) User(ctx context.Context, id string) (internal.User, error) {
	ctx, span := trace.SpanFromContext(ctx).Tracer().Start(ctx, "User.User")
	defer span.End()

	user, err := u.repo.Find(ctx, id)
	if err != nil {
		return internal.User{}, fmt.Errorf("repo find: %w", err)
	}

	return user, nil
}

// Authenticate returns the user a token was issued for, the user must still exist.
func (u *User) Authenticate(ctx context.Context, token string) (internal.User, error) {
	ctx, span := trace.SpanFromContext(ctx).Tracer().Start(ctx, "User.Authenticate")
	defer span.End()

	id, err := u.tokens.Verify(token)
	if err != nil {
		return internal.User{}, fmt.Errorf("tokens.Verify: %w", err)
	}

	user, err := u.repo.Find(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return internal.User{}, internal.WrapErrorf(err, internal.ErrorCodeUnauthenticated, "not authorized")
		}

		return internal.User{}, fmt.Errorf("repo find: %w", err)
	}

	return user, nil
}

func isNotFound(err error) bool {
	var ierr *internal.Error

	return errors.As(err, &ierr) && ierr.Code() == internal.ErrorCodeNotFound
}
