package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sanLimbu/taskboard-api/internal"
)

// User is the in-memory User store.
type User struct {
	mu    sync.Mutex
	users map[string]internal.User
	now   func() time.Time
}

// NewUser instantiates the User store.
func NewUser() *User {
	return &User{
		users: make(map[string]internal.User),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts a new user, emails are unique.
func (u *User) Create(ctx context.Context, params internal.CreateUserParams) (internal.User, error) {
	defer newOTELSpan(ctx, "User.Create").End()

	u.mu.Lock()
	defer u.mu.Unlock()

	for _, user := range u.users {
		if user.Email == params.Email {
			return internal.User{}, internal.NewFieldErrorf(internal.ErrorCodeConflict, "email", "already exists")
		}
	}

	now := u.now()

	user := internal.User{
		ID:        uuid.NewString(),
		Name:      params.Name,
		Email:     params.Email,
		Password:  params.PasswordHash,
		CreatedAt: now,
		UpdatedAt: now,
	}

	u.users[user.ID] = user

	return user, nil
}

// Find returns the user with id.
func (u *User) Find(ctx context.Context, id string) (internal.User, error) {
	defer newOTELSpan(ctx, "User.Find").End()

	u.mu.Lock()
	defer u.mu.Unlock()

	user, ok := u.users[id]
	if !ok {
		return internal.User{}, internal.NewErrorf(internal.ErrorCodeNotFound, "user not found")
	}

	return user, nil
}

// FindByEmail returns the user registered with email.
func (u *User) FindByEmail(ctx context.Context, email string) (internal.User, error) {
	defer newOTELSpan(ctx, "User.FindByEmail").End()

	u.mu.Lock()
	defer u.mu.Unlock()

	for _, user := range u.users {
		if user.Email == email {
			return user, nil
		}
	}

	return internal.User{}, internal.NewErrorf(internal.ErrorCodeNotFound, "user not found")
}
