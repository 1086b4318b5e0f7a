package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sanLimbu/taskboard-api/internal"
	"github.com/sanLimbu/taskboard-api/internal/rest"
)

// Register signs up and stores the issued token in session.
func (c *Client) Register(ctx context.Context, session *Session, params internal.RegisterParams) (internal.User, error) {
	var res rest.AuthResponse

	if err := c.do(ctx, session, request{method: http.MethodPost, path: "/api/auth/register", body: params}, &res); err != nil {
		return internal.User{}, fmt.Errorf("register: %w", err)
	}

	user := res.Data.User.Convert()
	session.Set(res.Token, user)

	return user, nil
}

// Login signs in and stores the issued token in session.
func (c *Client) Login(ctx context.Context, session *Session, params internal.LoginParams) (internal.User, error) {
	var res rest.AuthResponse

	if err := c.do(ctx, session, request{method: http.MethodPost, path: "/api/auth/login", body: params}, &res); err != nil {
		return internal.User{}, fmt.Errorf("login: %w", err)
	}

	user := res.Data.User.Convert()
	session.Set(res.Token, user)

	return user, nil
}

// Me returns the user the session belongs to.
func (c *Client) Me(ctx context.Context, session *Session) (internal.User, error) {
	var res rest.UserResponse

	if err := c.do(ctx, session, request{method: http.MethodGet, path: "/api/auth/me"}, &res); err != nil {
		return internal.User{}, fmt.Errorf("me: %w", err)
	}

	user := res.Data.User.Convert()
	session.setUser(user)

	return user, nil
}

// Health checks the API is up.
func (c *Client) Health(ctx context.Context) error {
	var res rest.HealthResponse

	if err := c.do(ctx, nil, request{method: http.MethodGet, path: "/api/health"}, &res); err != nil {
		return fmt.Errorf("health: %w", err)
	}

	return nil
}
