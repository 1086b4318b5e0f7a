package rabbitmq

import (
	"bytes"
	"context"
	"encoding/gob"
	"time"

	"github.com/streadway/amqp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"

	"github.com/sanLimbu/taskboard-api/internal"
)

const otelName = "github.com/sanLimbu/taskboard-api/internal/rabbitmq"

// Exchange is the topic exchange events are published to.
const Exchange = "tasks"

// Routing keys of the published events.
const (
	RoutingKeyCreated = "tasks.event.created"
	RoutingKeyUpdated = "tasks.event.updated"
	RoutingKeyDeleted = "tasks.event.deleted"
)

// Publisher defines the subset of *amqp.Channel used for publishing.
type Publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Task represents the repository used for publishing Task records.
type Task struct {
	ch Publisher
}

// NewTask instantiates the Task repository.
func NewTask(channel Publisher) *Task {
	return &Task{
		ch: channel,
	}
}

// Created publishes a message indicating a task was created.
func (t *Task) Created(ctx context.Context, task internal.Task) error {
	return t.publish(ctx, "Task.Created", RoutingKeyCreated, task)
}

// Deleted publishes a message indicating a task was deleted.
func (t *Task) Deleted(ctx context.Context, id string) error {
	return t.publish(ctx, "Task.Deleted", RoutingKeyDeleted, id)
}

// Updated publishes a message indicating a task was updated.
func (t *Task) Updated(ctx context.Context, task internal.Task) error {
	return t.publish(ctx, "Task.Updated", RoutingKeyUpdated, task)
}

func (t *Task) publish(ctx context.Context, spanName, routingKey string, e interface{}) error {
	_, span := otel.Tracer(otelName).Start(ctx, spanName)
	defer span.End()

	span.SetAttributes(
		attribute.KeyValue{
			Key:   semconv.MessagingSystemKey,
			Value: attribute.StringValue("rabbitmq"),
		},
		attribute.KeyValue{
			Key:   semconv.MessagingRabbitmqRoutingKeyKey,
			Value: attribute.StringValue(routingKey),
		},
	)

	var b bytes.Buffer
	if err := gob.NewEncoder(&b).Encode(e); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "gob.Encode")
	}

	err := t.ch.Publish(
		Exchange,   // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			AppId:       "tasks-rest-server",
			ContentType: "application/x-encoding-gob",
			Body:        b.Bytes(),
			Timestamp:   time.Now(),
		})
	if err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "ch.Publish")
	}

	return nil
}

// DecodeTask reads the body of a created or updated event.
func DecodeTask(b []byte) (internal.Task, error) {
	var res internal.Task

	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&res); err != nil {
		return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "gob.Decode")
	}

	return res, nil
}

// DecodeID reads the body of a deleted event.
func DecodeID(b []byte) (string, error) {
	var res string

	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&res); err != nil {
		return "", internal.WrapErrorf(err, internal.ErrorCodeUnknown, "gob.Decode")
	}

	return res, nil
}
