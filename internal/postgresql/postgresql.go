package postgresql

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/sanLimbu/taskboard-api/internal"
	"github.com/sanLimbu/taskboard-api/internal/postgresql/db"
)

//go:generate sqlc generate

const otelName = "github.com/sanLimbu/taskboard-api/internal/postgresql"

// uniqueViolation is the SQLSTATE raised when a unique constraint fails.
const uniqueViolation = "23505"

func convertTask(t db.Task) internal.Task {
	res := internal.Task{
		ID:          t.ID.String(),
		UserID:      t.UserID.String(),
		Title:       t.Title,
		Description: t.Description,
		Priority:    internal.Priority(t.Priority),
		Status:      internal.Status(t.Status),
		Position:    int(t.Position),
		CreatedAt:   t.CreatedAt.Time.UTC(),
		UpdatedAt:   t.UpdatedAt.Time.UTC(),
	}

	if t.DueDate.Valid {
		due := t.DueDate.Time.UTC()
		res.DueDate = &due
	}

	return res
}

func convertTasks(tasks []db.Task) []internal.Task {
	res := make([]internal.Task, len(tasks))
	for i, t := range tasks {
		res[i] = convertTask(t)
	}

	return res
}

func convertUser(u db.User) internal.User {
	return internal.User{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		Password:  u.Password,
		CreatedAt: u.CreatedAt.Time.UTC(),
		UpdatedAt: u.UpdatedAt.Time.UTC(),
	}
}

func newTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}

	return pgtype.Timestamptz{
		Time:  *t,
		Valid: true,
	}
}

func newText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}

	return pgtype.Text{
		String: *s,
		Valid:  true,
	}
}

// parseID converts ids received from callers, malformed values can never match a record.
func parseID(id string, what string) (uuid.UUID, error) {
	res, err := uuid.Parse(id)
	if err != nil {
		return uuid.UUID{}, internal.WrapErrorf(err, internal.ErrorCodeNotFound, "%s not found", what)
	}

	return res, nil
}

func parseIDs(id, userID string) (uuid.UUID, uuid.UUID, error) {
	taskID, err := parseID(id, "task")
	if err != nil {
		return uuid.UUID{}, uuid.UUID{}, err
	}

	uid, err := parseID(userID, "task")
	if err != nil {
		return uuid.UUID{}, uuid.UUID{}, err
	}

	return taskID, uid, nil
}

func notFound(err error, format string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return internal.WrapErrorf(err, internal.ErrorCodeNotFound, format)
	}

	return internal.WrapErrorf(err, internal.ErrorCodeUnknown, format)
}

func newOTELSpan(ctx context.Context, name string) trace.Span {
	_, span := otel.Tracer(otelName).Start(ctx, name)

	span.SetAttributes(semconv.DBSystemPostgreSQL)

	return span
}
