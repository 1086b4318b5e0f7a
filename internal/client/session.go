package client

import (
	"sync"

	"github.com/sanLimbu/taskboard-api/internal"
)

// Session holds the credentials of the signed in user, it is cleared when the API rejects them.
type Session struct {
	mu    sync.RWMutex
	token string
	user  internal.User
}

// NewSession instantiates a Session, token may be empty.
func NewSession(token string) *Session {
	return &Session{token: token}
}

// Token returns the current token, nil sessions have none.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// User returns the signed in user, it is only known after signing in or calling Me.
func (s *Session) User() internal.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.user
}

// Authenticated indicates whether the session has a token.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Set replaces the credentials.
func (s *Session) Set(token string, user internal.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.user = user
}

func (s *Session) setUser(user internal.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = user
}

// Clear removes the credentials.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.user = internal.User{}
}
