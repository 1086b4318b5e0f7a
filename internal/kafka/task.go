package kafka

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/sanLimbu/taskboard-api/internal"
)

// Producer defines the subset of *kafka.Producer used for publishing.
type Producer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
}

// Task represents the repository used for publishing Task records.
type Task struct {
	producer  Producer
	topicName string
}

// Event types, they double as the message type of the published Event.
const (
	EventCreated = "tasks.event.created"
	EventUpdated = "tasks.event.updated"
	EventDeleted = "tasks.event.deleted"
)

// Event is the JSON payload of every message, deleted events only carry the task id.
type Event struct {
	Type  string
	Value internal.Task
}

// DecodeEvent reads the value of a consumed message.
func DecodeEvent(b []byte) (Event, error) {
	var res Event

	if err := json.NewDecoder(bytes.NewReader(b)).Decode(&res); err != nil {
		return Event{}, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json.Decode")
	}

	return res, nil
}

// NewTask instantiates the Task repository.
func NewTask(producer Producer, topicName string) *Task {
	return &Task{
		topicName: topicName,
		producer:  producer,
	}
}

// Created publishes a message indicating a task was created.
func (t *Task) Created(ctx context.Context, task internal.Task) error {
	return t.publish(ctx, "Task.Created", EventCreated, task)
}

// Deleted publishes a message indicating a task was deleted.
func (t *Task) Deleted(ctx context.Context, id string) error {
	return t.publish(ctx, "Task.Deleted", EventDeleted, internal.Task{ID: id})
}

// Updated publishes a message indicating a task was updated.
func (t *Task) Updated(ctx context.Context, task internal.Task) error {
	return t.publish(ctx, "Task.Updated", EventUpdated, task)
}

func (t *Task) publish(ctx context.Context, spanName, msgType string, task internal.Task) error {
	_, span := trace.SpanFromContext(ctx).Tracer().Start(ctx, spanName)
	defer span.End()

	span.SetAttributes(
		attribute.KeyValue{
			Key:   semconv.MessagingSystemKey,
			Value: attribute.StringValue("kafka"),
		},
	)

	var b bytes.Buffer

	evt := Event{
		Type:  msgType,
		Value: task,
	}

	if err := json.NewEncoder(&b).Encode(evt); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "json.Encode")
	}

	if err := t.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &t.topicName,
			Partition: kafka.PartitionAny,
		},
		Key:   []byte(task.UserID),
		Value: b.Bytes(),
	}, nil); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "producer.Produce")
	}

	return nil
}
