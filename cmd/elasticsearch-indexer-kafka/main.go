package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sanLimbu/taskboard-api/cmd/internal"
	"github.com/sanLimbu/taskboard-api/internal/elasticsearch"
	"github.com/sanLimbu/taskboard-api/internal/envvar"
)

const groupID = "elasticsearch-indexer"

func main() {
	var env string

	flag.StringVar(&env, "env", "", "Environment Variables filename")
	flag.Parse()

	errC, err := run(env)
	if err != nil {
		log.Fatalf("Couldn't run: %s", err)
	}

	if err := <-errC; err != nil {
		log.Fatalf("Error while running: %s", err)
	}
}

func run(env string) (<-chan error, error) {
	if err := envvar.Load(env); err != nil {
		return nil, fmt.Errorf("envvar.Load: %w", err)
	}

	vault, err := internal.NewVaultProvider()
	if err != nil {
		return nil, fmt.Errorf("internal.NewVaultProvider: %w", err)
	}

	conf := envvar.New(vault)

	logger, err := internal.NewLogger(conf)
	if err != nil {
		return nil, fmt.Errorf("internal.NewLogger: %w", err)
	}

	es, err := internal.NewElasticSearch(conf)
	if err != nil {
		return nil, fmt.Errorf("internal.NewElasticSearch: %w", err)
	}

	consumer, err := internal.NewKafkaConsumer(conf, groupID)
	if err != nil {
		return nil, fmt.Errorf("internal.NewKafkaConsumer: %w", err)
	}

	if _, err := internal.NewOTExporter(conf, "taskboard-indexer-kafka"); err != nil {
		return nil, fmt.Errorf("internal.NewOTExporter: %w", err)
	}

	srv := NewServer(consumer.Consumer, elasticsearch.NewTask(es), logger)

	errC := make(chan error, 1)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	go func() {
		<-ctx.Done()

		logger.Info("Shutdown signal received")

		ctxTimeout, cancel := context.WithTimeout(context.Background(), 10*time.Second)

		defer func() {
			_ = logger.Sync()
			_ = consumer.Consumer.Unsubscribe()
			_ = consumer.Consumer.Close()

			stop()
			cancel()
			close(errC)
		}()

		if err := srv.Shutdown(ctxTimeout); err != nil {
			errC <- err
		}

		logger.Info("Shutdown completed")
	}()

	go func() {
		logger.Info("Listening and serving")

		if err := srv.ListenAndServe(); err != nil {
			errC <- err
		}
	}()

	return errC, nil
}
