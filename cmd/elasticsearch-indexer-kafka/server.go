package main

import (
	"context"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"go.uber.org/zap"

	internaldomain "github.com/sanLimbu/taskboard-api/internal"
	taskkafka "github.com/sanLimbu/taskboard-api/internal/kafka"
)

const pollTimeoutMs = 150

// Consumer defines the subset of *kafka.Consumer used by the Server.
type Consumer interface {
	Poll(timeoutMs int) kafka.Event
	CommitMessage(msg *kafka.Message) ([]kafka.TopicPartition, error)
}

// TaskIndex defines the search index kept up to date.
type TaskIndex interface {
	Index(ctx context.Context, task internaldomain.Task) error
	Delete(ctx context.Context, id string) error
}

// Server consumes task events and applies them to the search index. Offsets are committed once the
// event is indexed, failed events are retried after the consumer restarts.
type Server struct {
	logger   *zap.Logger
	consumer Consumer
	index    TaskIndex
	doneC    chan struct{}
	closeC   chan struct{}
}

// NewServer ...
func NewServer(consumer Consumer, index TaskIndex, logger *zap.Logger) *Server {
	return &Server{
		logger:   logger,
		consumer: consumer,
		index:    index,
		doneC:    make(chan struct{}),
		closeC:   make(chan struct{}),
	}
}

// ListenAndServe starts consuming messages in the background.
func (s *Server) ListenAndServe() error {
	go func() {
		for {
			select {
			case <-s.closeC:
				s.logger.Info("No more messages to consume. Exiting.")
				close(s.doneC)

				return
			default:
				if msg, ok := s.consumer.Poll(pollTimeoutMs).(*kafka.Message); ok {
					s.consume(context.Background(), msg)
				}
			}
		}
	}()

	return nil
}

// consume applies one message, it is committed unless indexing failed.
func (s *Server) consume(ctx context.Context, msg *kafka.Message) {
	evt, err := taskkafka.DecodeEvent(msg.Value)
	if err != nil {
		s.logger.Info("Ignoring message, invalid", zap.Error(err))
		s.commit(msg)

		return
	}

	switch evt.Type {
	case taskkafka.EventCreated, taskkafka.EventUpdated:
		err = s.index.Index(ctx, evt.Value)
	case taskkafka.EventDeleted:
		err = s.index.Delete(ctx, evt.Value.ID)
	default:
		s.logger.Info("Ignoring message, unknown type", zap.String("type", evt.Type))
	}

	if err != nil {
		s.logger.Warn("Couldn't index", zap.String("type", evt.Type), zap.Error(err))

		return
	}

	s.logger.Info("Consumed", zap.String("type", evt.Type))
	s.commit(msg)
}

func (s *Server) commit(msg *kafka.Message) {
	if _, err := s.consumer.CommitMessage(msg); err != nil {
		s.logger.Error("commit failed", zap.Error(err))
	}
}

// Shutdown stops polling and waits for the message being indexed.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")

	close(s.closeC)

	select {
	case <-ctx.Done():
		return fmt.Errorf("context.Done: %w", ctx.Err())
	case <-s.doneC:
		return nil
	}
}
