// Package internal defines the types shared by every layer of the task board: tasks, users, the
// parameters used to query and mutate them, the column ordering plan and the error codes.
package internal
