package internal

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// User owns tasks. Password holds the hash and is never rendered.
type User struct {
	ID        string
	Name      string
	Email     string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RegisterParams defines the arguments used for signing up.
type RegisterParams struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// WithDefaults returns a copy with a trimmed name and a normalized email.
func (r RegisterParams) WithDefaults() RegisterParams {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)

	return r
}

// Validate indicates whether the fields are valid or not.
func (r RegisterParams) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("must be between 2 and 50 characters"),
			validation.RuneLength(2, 50).Error("must be between 2 and 50 characters")),
		validation.Field(&r.Email,
			validation.Required.Error("must be a valid email"),
			is.EmailFormat.Error("must be a valid email")),
		validation.Field(&r.Password,
			validation.Required.Error("must be at least 6 characters long"),
			validation.RuneLength(6, 0).Error("must be at least 6 characters long")),
	); err != nil {
		return WrapErrorf(err, ErrorCodeInvalidArgument, "invalid values")
	}

	return nil
}

// LoginParams defines the arguments used for signing in.
type LoginParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate indicates whether the fields are valid or not.
func (l LoginParams) Validate() error {
	if err := validation.ValidateStruct(&l,
		validation.Field(&l.Email,
			validation.Required.Error("must be a valid email"),
			is.EmailFormat.Error("must be a valid email")),
		validation.Field(&l.Password, validation.Required.Error("is required")),
	); err != nil {
		return WrapErrorf(err, ErrorCodeInvalidArgument, "invalid values")
	}

	return nil
}

// CreateUserParams defines the arguments used for storing User records, the password is already
// hashed.
type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
