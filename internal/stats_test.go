package internal_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sanLimbu/taskboard-api/internal"
)

func TestNewStats(t *testing.T) {
	t.Parallel()

	tasks := []internal.Task{
		{ID: "1", Status: internal.StatusTodo, Priority: internal.PriorityLow},
		{ID: "2", Status: internal.StatusInProgress, Priority: internal.PriorityMedium},
		{ID: "3", Status: internal.StatusCompleted, Priority: internal.PriorityMedium},
	}

	want := internal.Stats{
		Total:      3,
		Todo:       1,
		InProgress: 1,
		Completed:  1,
		ByPriority: internal.PriorityCounts{Low: 1, Medium: 2},
	}

	got := internal.NewStats(tasks)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}

	if sum := got.ByPriority.Low + got.ByPriority.Medium + got.ByPriority.High; sum != got.Total {
		t.Fatalf("expected priorities to sum %d, got %d", got.Total, sum)
	}

	if diff := cmp.Diff(internal.Stats{}, internal.NewStats(nil)); diff != "" {
		t.Fatalf("empty stats mismatch (-want +got):\n%s", diff)
	}
}
