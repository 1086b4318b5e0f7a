package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sanLimbu/taskboard-api/internal"
	"github.com/sanLimbu/taskboard-api/internal/board"
	"github.com/sanLimbu/taskboard-api/internal/client"
)

type filterFlags struct {
	status   string
	priority string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.status, "status", "", "Only tasks with this status: todo, in-progress or completed")
	cmd.Flags().StringVar(&f.priority, "priority", "", "Only tasks with this priority: low, medium or high")
}

func (f *filterFlags) values() (*internal.Status, *internal.Priority) {
	var (
		status   *internal.Status
		priority *internal.Priority
	)

	if f.status != "" {
		s := internal.Status(f.status)
		status = &s
	}

	if f.priority != "" {
		p := internal.Priority(f.priority)
		priority = &p
	}

	return status, priority
}

func newTasksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List and change tasks",
	}

	cmd.AddCommand(
		newTasksListCmd(a),
		newTasksGetCmd(a),
		newTasksCreateCmd(a),
		newTasksUpdateCmd(a),
		newTasksDeleteCmd(a),
		newTasksMoveCmd(a),
	)

	return cmd
}

func newTasksListCmd(a *app) *cobra.Command {
	var (
		filters filterFlags
		sort    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			keys, err := internal.ParseSort(sort)
			if err != nil {
				return err
			}

			status, priority := filters.values()

			tasks, err := a.api.Tasks(cmd.Context(), a.session, client.Filters{
				Status:   status,
				Priority: priority,
				Sort:     keys,
			})
			if err != nil {
				return err
			}

			return printTasks(cmd.OutOrStdout(), tasks)
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVar(&sort, "sort", "", `Sort order, for example "status,-createdAt"`)

	return cmd
}

func newTasksGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.api.Task(cmd.Context(), a.session, args[0])
			if err != nil {
				return err
			}

			return printTasks(cmd.OutOrStdout(), []internal.Task{task})
		},
	}
}

func newTasksCreateCmd(a *app) *cobra.Command {
	var (
		description string
		priority    string
		status      string
		due         string
	)

	cmd := &cobra.Command{
		Use:   "create TITLE",
		Short: "Add a task at the end of its column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dueDate, err := parseDue(due)
			if err != nil {
				return err
			}

			task, err := a.board.Create(cmd.Context(), internal.CreateParams{
				Title:       args[0],
				Description: description,
				Priority:    internal.Priority(priority),
				Status:      internal.Status(status),
				DueDate:     dueDate,
			})
			if err != nil {
				return err
			}

			return printTasks(cmd.OutOrStdout(), []internal.Task{task})
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority: low, medium or high")
	cmd.Flags().StringVar(&status, "status", "", "Status: todo, in-progress or completed")
	cmd.Flags().StringVar(&due, "due", "", "Due date, RFC 3339 or YYYY-MM-DD")

	return cmd
}

func newTasksUpdateCmd(a *app) *cobra.Command {
	var (
		title       string
		description string
		priority    string
		status      string
		due         string
		position    int
	)

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change a task, only the given flags are updated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var params internal.UpdateParams

			flags := cmd.Flags()

			if flags.Changed("title") {
				params.Title = &title
			}

			if flags.Changed("description") {
				params.Description = &description
			}

			if flags.Changed("priority") {
				p := internal.Priority(priority)
				params.Priority = &p
			}

			if flags.Changed("status") {
				s := internal.Status(status)
				params.Status = &s
			}

			if flags.Changed("position") {
				params.Position = &position
			}

			if flags.Changed("due") {
				dueDate, err := parseDue(due)
				if err != nil {
					return err
				}

				params.DueDate = dueDate
			}

			task, err := a.board.Update(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}

			return printTasks(cmd.OutOrStdout(), []internal.Task{task})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Title")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority: low, medium or high")
	cmd.Flags().StringVar(&status, "status", "", "Status: todo, in-progress or completed")
	cmd.Flags().StringVar(&due, "due", "", "Due date, RFC 3339 or YYYY-MM-DD")
	cmd.Flags().IntVar(&position, "position", 0, "Position inside the column")

	return cmd
}

func newTasksDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.board.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])

			return nil
		},
	}
}

func newTasksMoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move ID STATUS INDEX",
		Short: "Move a task to a slot of a column",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[2])
			if err != nil {
				return internal.NewFieldErrorf(internal.ErrorCodeInvalidArgument, "index", "must be a number")
			}

			res, err := a.board.Reorder(cmd.Context(), internal.MoveParams{
				TaskID: args[0],
				To:     internal.ColumnIndex{Status: internal.Status(args[1]), Index: index},
			})
			if err != nil {
				return err
			}

			return printTasks(cmd.OutOrStdout(), []internal.Task{res.Task})
		},
	}
}

func newBoardCmd(a *app) *cobra.Command {
	var filters filterFlags

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show the tasks grouped by column",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, priority := filters.values()

			if err := a.board.SetFilters(cmd.Context(), board.Filters{Status: status, Priority: priority}); err != nil {
				return err
			}

			state := a.board.State()
			w := cmd.OutOrStdout()

			for _, s := range internal.Statuses() {
				tasks := state.ByStatus(s)

				fmt.Fprintf(w, "%s (%d)\n", s, len(tasks))

				for _, t := range tasks {
					fmt.Fprintf(w, "  %d. %s [%s] %s\n", t.Position, t.Title, t.Priority, t.ID)
				}
			}

			return nil
		},
	}

	filters.register(cmd)

	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count the tasks by status and priority",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := a.api.Stats(cmd.Context(), a.session)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

			fmt.Fprintf(w, "total\t%d\n", stats.Total)
			fmt.Fprintf(w, "todo\t%d\n", stats.Todo)
			fmt.Fprintf(w, "in-progress\t%d\n", stats.InProgress)
			fmt.Fprintf(w, "completed\t%d\n", stats.Completed)
			fmt.Fprintf(w, "low\t%d\n", stats.ByPriority.Low)
			fmt.Fprintf(w, "medium\t%d\n", stats.ByPriority.Medium)
			fmt.Fprintf(w, "high\t%d\n", stats.ByPriority.High)

			return w.Flush()
		},
	}
}

func newSearchCmd(a *app) *cobra.Command {
	var (
		filters filterFlags
		from    int64
		size    int64
	)

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search tasks by title and description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, priority := filters.values()

			res, err := a.api.Search(cmd.Context(), a.session, internal.SearchParams{
				Query:    args[0],
				Status:   status,
				Priority: priority,
				From:     from,
				Size:     size,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d found\n", res.Total)

			return printTasks(cmd.OutOrStdout(), res.Tasks)
		},
	}

	filters.register(cmd)
	cmd.Flags().Int64Var(&from, "from", 0, "Offset of the first result")
	cmd.Flags().Int64Var(&size, "size", 10, "Number of results")

	return cmd
}

func printTasks(out io.Writer, tasks []internal.Task) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPOSITION\tPRIORITY\tDUE")

	for _, t := range tasks {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.Local().Format(time.DateOnly)
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n", t.ID, t.Title, t.Status, t.Position, t.Priority, due)
	}

	return w.Flush()
}

func parseDue(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}

	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t, nil
		}
	}

	return nil, internal.NewFieldErrorf(internal.ErrorCodeInvalidArgument, "due", "must be a date")
}
