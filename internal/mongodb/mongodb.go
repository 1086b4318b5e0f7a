// Package mongodb implements the task and user stores on top of MongoDB. Writes that assign or change
// positions run in transactions and bump a per column counter document, which serializes them.
package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/sanLimbu/taskboard-api/internal"
)

const otelName = "github.com/sanLimbu/taskboard-api/internal/mongodb"

const (
	tasksCollection    = "tasks"
	usersCollection    = "users"
	countersCollection = "counters"
)

// EnsureIndexes creates the indexes used by the stores.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	defer newOTELSpan(ctx, "EnsureIndexes").End()

	if _, err := database.Collection(tasksCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "status", Value: 1}, {Key: "position", Value: 1}}},
	}); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "tasks.CreateMany")
	}

	if _, err := database.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "users.CreateOne")
	}

	return nil
}

type taskDocument struct {
	ID          string     `bson:"_id"`
	UserID      string     `bson:"user"`
	Title       string     `bson:"title"`
	Description string     `bson:"description"`
	Priority    string     `bson:"priority"`
	Status      string     `bson:"status"`
	DueDate     *time.Time `bson:"dueDate,omitempty"`
	Position    int        `bson:"position"`
	CreatedAt   time.Time  `bson:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt"`
}

func (d taskDocument) task() internal.Task {
	res := internal.Task{
		ID:          d.ID,
		UserID:      d.UserID,
		Title:       d.Title,
		Description: d.Description,
		Priority:    internal.Priority(d.Priority),
		Status:      internal.Status(d.Status),
		Position:    d.Position,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}

	if d.DueDate != nil {
		due := d.DueDate.UTC()
		res.DueDate = &due
	}

	return res
}

type userDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	Password  string    `bson:"password"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func (d userDocument) user() internal.User {
	return internal.User{
		ID:        d.ID,
		Name:      d.Name,
		Email:     d.Email,
		Password:  d.Password,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

// counterID identifies the counter document of one user column.
func counterID(userID string, status internal.Status) string {
	return userID + ":" + string(status)
}

// taskFilter is the query selecting the tasks of the user, the ownership condition is always present.
func taskFilter(params internal.ListParams) bson.M {
	filter := bson.M{"user": params.UserID}

	if params.Status != nil {
		filter["status"] = string(*params.Status)
	}

	if params.Priority != nil {
		filter["priority"] = string(*params.Priority)
	}

	return filter
}

// updateDocument returns the $set document for the non-nil fields, status and position are handled
// by the ordering plan.
func updateDocument(params internal.UpdateParams, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}

	if params.Title != nil {
		set["title"] = *params.Title
	}

	if params.Description != nil {
		set["description"] = *params.Description
	}

	if params.Priority != nil {
		set["priority"] = string(*params.Priority)
	}

	if params.DueDate != nil {
		set["dueDate"] = *params.DueDate
	}

	return bson.M{"$set": set}
}

func notFound(err error, msg string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return internal.WrapErrorf(err, internal.ErrorCodeNotFound, msg)
	}

	return internal.WrapErrorf(err, internal.ErrorCodeUnknown, msg)
}

func newOTELSpan(ctx context.Context, name string) trace.Span {
	_, span := otel.Tracer(otelName).Start(ctx, name)

	span.SetAttributes(semconv.DBSystemMongoDB)

	return span
}
