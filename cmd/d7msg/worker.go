package main

import (
	"context"
	"errors"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/example/d7-messaging/internal/config"
	"github.com/example/d7-messaging/internal/kafka/consumer"
	"github.com/example/d7-messaging/internal/kafka/producer"
	kafkapublisher "github.com/example/d7-messaging/internal/kafka/publisher"
	"github.com/example/d7-messaging/internal/logger"
	"github.com/example/d7-messaging/internal/worker"
)

const drainTimeout = 30 * time.Second

func workerCommand() *cli.Command {
	return &cli.Command{
		Name:   "worker",
		Usage:  "consume compose requests from Kafka and publish one result per record",
		Action: runWorker,
	}
}

func runWorker(c *cli.Context) error {
	ctx := c.Context

	cfg, err := config.LoadWorker()
	if err != nil {
		return fail("config load", err)
	}
	log, err := newLogger(cfg, "d7msg-worker")
	if err != nil {
		return fail("logger init", err)
	}
	rt, err := buildRuntime(cfg, log)
	if err != nil {
		return fail("runtime init", err)
	}
	defer rt.shutdown()

	prod, err := producer.New(cfg.Kafka.Brokers, logger.Component(log, "", "kafka-producer"))
	if err != nil {
		return fail("kafka producer", err)
	}
	defer func() {
		if err := prod.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close kafka producer")
		}
	}()

	cons, err := consumer.New(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup, logger.Component(log, "", "kafka-consumer"))
	if err != nil {
		return fail("kafka consumer", err)
	}
	defer func() {
		if err := cons.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close kafka consumer")
		}
	}()

	publisher := kafkapublisher.NewResultPublisher(prod, cfg.Kafka.ResultTopic, logger.Component(log, "", "result-publisher"))

	engine, err := worker.NewEngine(worker.Config{
		MsgMaxBytes: cfg.Worker.MsgMaxBytes,
		Concurrency: cfg.Worker.Concurrency,
	}, worker.Dependencies{
		Sender:    rt.composer,
		Publisher: publisher,
		Committer: worker.CommitFunc(func(ctx context.Context, record *worker.Record) error {
			return record.Commit(ctx)
		}),
		Logger: logger.Component(log, "", "worker-engine"),
		Now:    time.Now,
	})
	if err != nil {
		return fail("worker engine", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := cons.Consume(ctx, []string{cfg.Kafka.RequestTopic}, worker.KafkaHandler(engine, cons)); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
		close(errCh)
	}()

	log.Info().
		Str("request_topic", cfg.Kafka.RequestTopic).
		Str("result_topic", cfg.Kafka.ResultTopic).
		Int("concurrency", cfg.Worker.Concurrency).
		Msg("d7 worker started")

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("consumer terminated with error")
			runErr = err
		}
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := engine.Wait(drainCtx); err != nil {
		log.Warn().Err(err).Msg("in-flight records did not finish before shutdown")
	}
	return runErr
}
