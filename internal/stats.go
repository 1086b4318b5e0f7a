package internal

// PriorityCounts holds the number of tasks per priority.
type PriorityCounts struct {
	Low    int
	Medium int
	High   int
}

// Stats aggregates a set of tasks by status and priority.
type Stats struct {
	Total      int
	Todo       int
	InProgress int
	Completed  int
	ByPriority PriorityCounts
}

// NewStats counts tasks in a single pass.
func NewStats(tasks []Task) Stats {
	var res Stats

	for _, t := range tasks {
		res.Total++

		switch t.Status {
		case StatusTodo:
			res.Todo++
		case StatusInProgress:
			res.InProgress++
		case StatusCompleted:
			res.Completed++
		}

		switch t.Priority {
		case PriorityLow:
			res.ByPriority.Low++
		case PriorityMedium:
			res.ByPriority.Medium++
		case PriorityHigh:
			res.ByPriority.High++
		}
	}

	return res
}
