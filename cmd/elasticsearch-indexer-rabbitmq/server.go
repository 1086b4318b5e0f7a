package main

import (
	"context"
	"errors"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	internaldomain "github.com/sanLimbu/taskboard-api/internal"
	"github.com/sanLimbu/taskboard-api/internal/rabbitmq"
)

const rabbitMQConsumerName = "elasticsearch-indexer"

// Channel defines the subset of *amqp.Channel used by the Server.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Cancel(consumer string, noWait bool) error
}

// TaskIndex defines the search index kept up to date.
type TaskIndex interface {
	Index(ctx context.Context, task internaldomain.Task) error
	Delete(ctx context.Context, id string) error
}

// Server consumes task events from an exclusive queue bound to every task routing key.
type Server struct {
	logger *zap.Logger
	ch     Channel
	index  TaskIndex
	done   chan struct{}
}

// NewServer ...
func NewServer(ch Channel, index TaskIndex, logger *zap.Logger) *Server {
	return &Server{
		logger: logger,
		ch:     ch,
		index:  index,
		done:   make(chan struct{}),
	}
}

// ListenAndServe binds the queue and consumes the deliveries in the background.
func (s *Server) ListenAndServe() error {
	queue, err := s.ch.QueueDeclare(
		"",    // name
		false, // durable
		false, // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "channel.QueueDeclare")
	}

	err = s.ch.QueueBind(
		queue.Name,        // queue name
		"tasks.event.*",   // routing key
		rabbitmq.Exchange, // exchange
		false,
		nil,
	)
	if err != nil {
		return internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "channel.QueueBind")
	}

	msgs, err := s.ch.Consume(
		queue.Name,           // queue
		rabbitMQConsumerName, // consumer
		false,                // auto-ack
		false,                // exclusive
		false,                // no-local
		false,                // no-wait
		nil,                  // args
	)
	if err != nil {
		return internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "channel.Consume")
	}

	go func() {
		for msg := range msgs {
			s.logger.Info("Received message", zap.String("routingKey", msg.RoutingKey))

			s.settle(msg, s.handle(context.Background(), msg))
		}

		s.logger.Info("No more messages to consume. Exiting.")

		close(s.done)
	}()

	return nil
}

// settle acks handled deliveries, drops the ones that can never be handled and requeues the rest.
func (s *Server) settle(msg amqp.Delivery, err error) {
	var ierr *internaldomain.Error

	switch {
	case err == nil:
		_ = msg.Ack(false)
	case errors.As(err, &ierr) && ierr.Code() == internaldomain.ErrorCodeInvalidArgument:
		s.logger.Info("Dropping message", zap.Error(err))
		_ = msg.Nack(false, false)
	default:
		s.logger.Warn("Couldn't index, requeueing", zap.Error(err))
		_ = msg.Nack(false, true)
	}
}

func (s *Server) handle(ctx context.Context, msg amqp.Delivery) error {
	switch msg.RoutingKey {
	case rabbitmq.RoutingKeyCreated, rabbitmq.RoutingKeyUpdated:
		task, err := rabbitmq.DecodeTask(msg.Body)
		if err != nil {
			return internaldomain.WrapErrorf(err, internaldomain.ErrorCodeInvalidArgument, "rabbitmq.DecodeTask")
		}

		return s.index.Index(ctx, task)
	case rabbitmq.RoutingKeyDeleted:
		id, err := rabbitmq.DecodeID(msg.Body)
		if err != nil {
			return internaldomain.WrapErrorf(err, internaldomain.ErrorCodeInvalidArgument, "rabbitmq.DecodeID")
		}

		return s.index.Delete(ctx, id)
	}

	return internaldomain.NewErrorf(internaldomain.ErrorCodeInvalidArgument, "unknown routing key %s", msg.RoutingKey)
}

// Shutdown cancels the consumer and waits for the pending deliveries.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")

	_ = s.ch.Cancel(rabbitMQConsumerName, false)

	select {
	case <-ctx.Done():
		return internaldomain.WrapErrorf(ctx.Err(), internaldomain.ErrorCodeUnknown, "context.Done")
	case <-s.done:
		return nil
	}
}
