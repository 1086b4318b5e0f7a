package internal_test

import (
	"errors"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/sanLimbu/taskboard-api/internal"
)

func TestWrapErrorf(t *testing.T) {
	t.Parallel()

	orig := errors.New("boom")
	err := internal.WrapErrorf(orig, internal.ErrorCodeNotFound, "task %s", "1")

	if err.Error() != "task 1: boom" {
		t.Fatalf("unexpected message %q", err.Error())
	}

	if !errors.Is(err, orig) {
		t.Fatalf("expected wrapped error")
	}

	var ierr *internal.Error
	if !errors.As(err, &ierr) {
		t.Fatalf("expected *internal.Error")
	}

	if ierr.Code() != internal.ErrorCodeNotFound || ierr.Message() != "task 1" {
		t.Fatalf("unexpected error %+v", ierr)
	}
}

func TestNewFieldErrorf(t *testing.T) {
	t.Parallel()

	err := internal.NewFieldErrorf(internal.ErrorCodeConflict, "email", "already exists")

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors")
	}

	if verrs["email"].Error() != "already exists" {
		t.Fatalf("unexpected field error %v", verrs)
	}
}
