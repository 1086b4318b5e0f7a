package mongodb

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sanLimbu/taskboard-api/internal"
)

func TestTaskFilter(t *testing.T) {
	t.Parallel()

	status := internal.StatusTodo
	priority := internal.PriorityHigh

	tests := []struct {
		name   string
		input  internal.ListParams
		output bson.M
	}{
		{
			"owner only",
			internal.ListParams{UserID: "user"},
			bson.M{"user": "user"},
		},
		{
			"all filters",
			internal.ListParams{UserID: "user", Status: &status, Priority: &priority},
			bson.M{"user": "user", "status": "todo", "priority": "high"},
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(tt.output, taskFilter(tt.input)); diff != "" {
				t.Fatalf("filter mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUpdateDocument(t *testing.T) {
	t.Parallel()

	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	title := "new"
	completed := internal.StatusCompleted

	actual := updateDocument(internal.UpdateParams{Title: &title, Status: &completed}, now)
	expected := bson.M{"$set": bson.M{"title": "new", "updatedAt": now}}

	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Fatalf("update mismatch (-want +got):\n%s", diff)
	}
}

func TestTaskDocument(t *testing.T) {
	t.Parallel()

	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	actual := taskDocument{
		ID:       "1",
		UserID:   "user",
		Title:    "title",
		Priority: "low",
		Status:   "completed",
		DueDate:  &now,
		Position: 2,
	}.task()

	if actual.Priority != internal.PriorityLow || actual.Status != internal.StatusCompleted || actual.Position != 2 {
		t.Fatalf("unexpected task %+v", actual)
	}

	if actual.DueDate == nil || !actual.DueDate.Equal(now) {
		t.Fatalf("unexpected due date %v", actual.DueDate)
	}

	if counterID("user", internal.StatusInProgress) != "user:in-progress" {
		t.Fatalf("unexpected counter id")
	}
}

func TestNotFound(t *testing.T) {
	t.Parallel()

	var ierr *internal.Error

	if err := notFound(mongo.ErrNoDocuments, "task not found"); !errors.As(err, &ierr) || ierr.Code() != internal.ErrorCodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}

	if err := notFound(errors.New("timeout"), "task not found"); !errors.As(err, &ierr) || ierr.Code() != internal.ErrorCodeUnknown {
		t.Fatalf("expected unknown error, got %v", err)
	}
}
