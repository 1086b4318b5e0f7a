package internal_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/sanLimbu/taskboard-api/internal"
)

func fieldErrors(t *testing.T, err error) validation.Errors {
	t.Helper()

	var ierr *internal.Error
	if !errors.As(err, &ierr) || ierr.Code() != internal.ErrorCodeInvalidArgument {
		t.Fatalf("expected invalid argument error, got %v", err)
	}

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}

	return verrs
}

func TestCreateParams_WithDefaults(t *testing.T) {
	t.Parallel()

	params := internal.CreateParams{UserID: "user", Title: "  Write report  "}.WithDefaults()

	if params.Title != "Write report" {
		t.Errorf("expected trimmed title, got %q", params.Title)
	}

	if params.Priority != internal.PriorityMedium {
		t.Errorf("expected medium priority, got %s", params.Priority)
	}

	if params.Status != internal.StatusTodo {
		t.Errorf("expected todo status, got %s", params.Status)
	}

	if err := params.Validate(); err != nil {
		t.Errorf("expected no error, got %s", err)
	}
}

func TestCreateParams_Validate(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name   string
		input  internal.CreateParams
		fields []string
	}{
		{
			"missing title",
			internal.CreateParams{UserID: "user", Priority: internal.PriorityLow, Status: internal.StatusTodo},
			[]string{"title"},
		},
		{
			"title too long",
			internal.CreateParams{UserID: "user", Title: strings.Repeat("x", 101), Priority: internal.PriorityLow, Status: internal.StatusTodo},
			[]string{"title"},
		},
		{
			"description too long",
			internal.CreateParams{UserID: "user", Title: "x", Description: strings.Repeat("x", 501), Priority: internal.PriorityLow, Status: internal.StatusTodo},
			[]string{"description"},
		},
		{
			"unknown priority and status",
			internal.CreateParams{UserID: "user", Title: "x", Priority: "urgent", Status: "done"},
			[]string{"priority", "status"},
		},
		{
			"due date in the past",
			internal.CreateParams{UserID: "user", Title: "x", Priority: internal.PriorityLow, Status: internal.StatusTodo, DueDate: &past},
			[]string{"dueDate"},
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			verrs := fieldErrors(t, tt.input.Validate())
			if len(verrs) != len(tt.fields) {
				t.Fatalf("expected %d field errors, got %v", len(tt.fields), verrs)
			}

			for _, f := range tt.fields {
				if _, ok := verrs[f]; !ok {
					t.Errorf("expected error for %s, got %v", f, verrs)
				}
			}
		})
	}
}

func TestUpdateParams(t *testing.T) {
	t.Parallel()

	task := internal.Task{
		ID:       "1",
		Title:    "old",
		Priority: internal.PriorityLow,
		Status:   internal.StatusTodo,
		Position: 2,
	}

	newPtr := func(s string) *string { return &s }

	t.Run("zero", func(t *testing.T) {
		t.Parallel()

		if !(internal.UpdateParams{}).IsZero() {
			t.Fatalf("expected zero update")
		}
	})

	t.Run("apply leaves the slot alone", func(t *testing.T) {
		t.Parallel()

		completed := internal.StatusCompleted
		params := internal.UpdateParams{Title: newPtr(" new "), Status: &completed}.WithDefaults()

		got := params.Apply(task)
		if got.Title != "new" || got.Status != internal.StatusTodo || got.Position != 2 {
			t.Fatalf("unexpected task %+v", got)
		}
	})

	t.Run("status change appends", func(t *testing.T) {
		t.Parallel()

		completed := internal.StatusCompleted
		params := internal.UpdateParams{Status: &completed}

		if !params.Moves(task) {
			t.Fatalf("expected move")
		}

		if to := params.Target(task); to.Status != internal.StatusCompleted || to.Index != internal.AppendIndex {
			t.Fatalf("unexpected target %+v", to)
		}
	})

	t.Run("explicit position", func(t *testing.T) {
		t.Parallel()

		position := 0
		params := internal.UpdateParams{Position: &position}

		if to := params.Target(task); to.Status != internal.StatusTodo || to.Index != 0 {
			t.Fatalf("unexpected target %+v", to)
		}
	})

	t.Run("same status does not move", func(t *testing.T) {
		t.Parallel()

		todo := internal.StatusTodo
		if (internal.UpdateParams{Status: &todo}).Moves(task) {
			t.Fatalf("expected no move")
		}
	})

	t.Run("empty title", func(t *testing.T) {
		t.Parallel()

		verrs := fieldErrors(t, internal.UpdateParams{Title: newPtr("")}.Validate())
		if _, ok := verrs["title"]; !ok {
			t.Fatalf("expected title error, got %v", verrs)
		}
	})

	t.Run("empty status and priority", func(t *testing.T) {
		t.Parallel()

		status := internal.Status("")
		priority := internal.Priority("")

		verrs := fieldErrors(t, internal.UpdateParams{Status: &status, Priority: &priority}.Validate())
		for _, field := range []string{"status", "priority"} {
			if _, ok := verrs[field]; !ok {
				t.Fatalf("expected %s error, got %v", field, verrs)
			}
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		t.Parallel()

		status := internal.Status("archived")

		verrs := fieldErrors(t, internal.UpdateParams{Status: &status}.Validate())
		if _, ok := verrs["status"]; !ok {
			t.Fatalf("expected status error, got %v", verrs)
		}
	})
}

func TestMoveParams_Validate(t *testing.T) {
	t.Parallel()

	valid := internal.MoveParams{
		UserID: "user",
		TaskID: "task",
		To:     internal.ColumnIndex{Status: internal.StatusCompleted, Index: 0},
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("expected no error, got %s", err)
	}

	invalid := valid
	invalid.To = internal.ColumnIndex{Status: "archived", Index: -1}

	verrs := fieldErrors(t, invalid.Validate())
	if _, ok := verrs["to"]; !ok {
		t.Fatalf("expected to error, got %v", verrs)
	}
}

func TestSearchParams(t *testing.T) {
	t.Parallel()

	params := internal.SearchParams{UserID: "user", Query: "  REPORT "}.WithDefaults()
	if params.Size != 10 {
		t.Fatalf("expected default size, got %d", params.Size)
	}

	if err := params.Validate(); err != nil {
		t.Fatalf("expected no error, got %s", err)
	}

	if !params.Matches(internal.Task{UserID: "user", Title: "Write report"}) {
		t.Errorf("expected title match")
	}

	if params.Matches(internal.Task{UserID: "other", Title: "Write report"}) {
		t.Errorf("expected no match for another user")
	}

	fieldErrors(t, internal.SearchParams{UserID: "user", Size: 10}.Validate())
}

func TestRegisterParams_Validate(t *testing.T) {
	t.Parallel()

	params := internal.RegisterParams{Name: " Ada ", Email: " ADA@Example.com ", Password: "secret1"}.WithDefaults()
	if params.Email != "ada@example.com" || params.Name != "Ada" {
		t.Fatalf("unexpected defaults %+v", params)
	}

	if err := params.Validate(); err != nil {
		t.Fatalf("expected no error, got %s", err)
	}

	verrs := fieldErrors(t, internal.RegisterParams{Name: "A", Email: "nope", Password: "123"}.Validate())
	for _, f := range []string{"name", "email", "password"} {
		if _, ok := verrs[f]; !ok {
			t.Errorf("expected error for %s, got %v", f, verrs)
		}
	}
}
