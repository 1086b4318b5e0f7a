package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sanLimbu/taskboard-api/internal"
)

// UserService defines the application service handling users.
type UserService interface {
	Authenticator
	Login(ctx context.Context, params internal.LoginParams) (internal.User, string, error)
	Register(ctx context.Context, params internal.RegisterParams) (internal.User, string, error)
}

// UserHandler ...
type UserHandler struct {
	svc        UserService
	logger     *zap.Logger
	expiration time.Duration
	secure     bool
}

// NewUserHandler instantiates the handler, expiration is the lifetime of the cookie and secure marks it
// as HTTPS only.
func NewUserHandler(svc UserService, logger *zap.Logger, expiration time.Duration, secure bool) *UserHandler {
	return &UserHandler{
		svc:        svc,
		logger:     logger,
		expiration: expiration,
		secure:     secure,
	}
}

// Register connects the handlers to the router.
func (u *UserHandler) Register(r chi.Router) {
	r.Post("/api/auth/register", u.register)
	r.Post("/api/auth/login", u.login)
	r.With(Authenticate(u.svc, u.logger)).Get("/api/auth/me", u.me)
}

// User is the public representation of an account, it never includes the password.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUser converts the domain type.
func NewUser(u internal.User) User {
	return User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Convert returns the domain type.
func (u User) Convert() internal.User {
	return internal.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UserData wraps a user.
type UserData struct {
	User User `json:"user"`
}

// AuthResponse defines the response returned back after signing up or in.
type AuthResponse struct {
	Success bool     `json:"success"`
	Token   string   `json:"token"`
	Data    UserData `json:"data"`
}

// UserResponse defines the response returned back for the authenticated user.
type UserResponse struct {
	Success bool     `json:"success"`
	Data    UserData `json:"data"`
}

func (u *UserHandler) register(w http.ResponseWriter, r *http.Request) {
	var req internal.RegisterParams
	if err := decodeRequest(r, &req); err != nil {
		renderErrorResponse(r.Context(), w, u.logger, "invalid request", err)

		return
	}

	user, token, err := u.svc.Register(r.Context(), req)
	if err != nil {
		renderErrorResponse(r.Context(), w, u.logger, "register failed", err)

		return
	}

	u.sendToken(w, user, token, http.StatusCreated)
}

func (u *UserHandler) login(w http.ResponseWriter, r *http.Request) {
	var req internal.LoginParams
	if err := decodeRequest(r, &req); err != nil {
		renderErrorResponse(r.Context(), w, u.logger, "invalid request", err)

		return
	}

	user, token, err := u.svc.Login(r.Context(), req)
	if err != nil {
		renderErrorResponse(r.Context(), w, u.logger, "login failed", err)

		return
	}

	u.sendToken(w, user, token, http.StatusOK)
}

func (u *UserHandler) me(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	renderResponse(w, &UserResponse{Success: true, Data: UserData{User: NewUser(user)}}, http.StatusOK)
}

func (u *UserHandler) sendToken(w http.ResponseWriter, user internal.User, token string, status int) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(u.expiration),
		HttpOnly: true,
		Secure:   u.secure,
		SameSite: http.SameSiteLaxMode,
	})

	renderResponse(w, &AuthResponse{
		Success: true,
		Token:   token,
		Data:    UserData{User: NewUser(user)},
	}, status)
}
