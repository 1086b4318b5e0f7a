// Package auth hashes passwords and issues the bearer tokens used to authenticate requests.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/sanLimbu/taskboard-api/internal"
)

const (
	// PasswordCost is the bcrypt cost used for new passwords.
	PasswordCost = 12

	// DefaultExpiration is used when no expiration is configured.
	DefaultExpiration = 30 * 24 * time.Hour
)

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", internal.WrapErrorf(err, internal.ErrorCodeUnknown, "bcrypt.GenerateFromPassword")
	}

	return string(hash), nil
}

// ComparePassword indicates whether password matches hash.
func ComparePassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ParseExpiration converts the configured token lifetime into a duration. Supported values are "1h",
// "24h", "7d", "30d" and "1y", an empty value means DefaultExpiration.
func ParseExpiration(s string) (time.Duration, error) {
	switch s {
	case "":
		return DefaultExpiration, nil
	case "1h":
		return time.Hour, nil
	case "24h":
		return 24 * time.Hour, nil
	case "7d":
		return 7 * 24 * time.Hour, nil
	case "30d":
		return 30 * 24 * time.Hour, nil
	case "1y":
		return 365 * 24 * time.Hour, nil
	}

	return 0, internal.NewErrorf(internal.ErrorCodeInvalidArgument, "unsupported expiration %q", s)
}

type claims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 signed tokens carrying the user id.
type Tokens struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewTokens ...
func NewTokens(secret string, expiration time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, internal.NewErrorf(internal.ErrorCodeInvalidArgument, "secret is required")
	}

	if expiration <= 0 {
		expiration = DefaultExpiration
	}

	return &Tokens{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}, nil
}

// Expiration returns the lifetime of issued tokens.
func (t *Tokens) Expiration() time.Duration {
	return t.expiration
}

// Issue returns a signed token for userID.
func (t *Tokens) Issue(userID string) (string, error) {
	now := t.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		ID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expiration)),
		},
	})

	res, err := token.SignedString(t.secret)
	if err != nil {
		return "", internal.WrapErrorf(err, internal.ErrorCodeUnknown, "token.SignedString")
	}

	return res, nil
}

// Verify returns the user id carried by a valid token. Malformed, tampered and expired tokens all
// return the same Unauthenticated error.
func (t *Tokens) Verify(token string) (string, error) {
	var c claims

	parsed, err := jwt.ParseWithClaims(token, &c,
		func(*jwt.Token) (interface{}, error) {
			return t.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}

		return "", internal.WrapErrorf(err, internal.ErrorCodeUnauthenticated, "not authorized")
	}

	if c.ID == "" {
		return "", internal.NewErrorf(internal.ErrorCodeUnauthenticated, "not authorized")
	}

	return c.ID, nil
}
