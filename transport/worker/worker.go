package worker

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic/config"
	"clinic/infras/kafka"
	"clinic/infras/otel"
	"clinic/internal/domains/appointment/event"

	"github.com/rs/zerolog/log"
)

// Worker consumes appointment lifecycle events outside the request path.
type Worker struct {
	Config   *config.Config
	Kafka    kafka.Client
	Listener *event.SlotCacheListener
	Otel     otel.Otel
}

func New(cfg *config.Config, kafkaClient kafka.Client, listener *event.SlotCacheListener, otl otel.Otel) *Worker {
	return &Worker{
		Config:   cfg,
		Kafka:    kafkaClient,
		Listener: listener,
		Otel:     otl,
	}
}

// Run blocks until SIGINT or SIGTERM, then releases the broker and tracer.
func (w *Worker) Run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	topic := w.Config.Kafka.Topic.Appointment

	log.Info().Str("topic", topic).Str("group", w.Config.Kafka.ConsumerGroup).Msg("Starting appointment event worker.")

	w.Kafka.Consume(ctx, w.Config.Kafka.ConsumerGroup, topic, w.Listener.Handle)

	w.shutdown()
}

func (w *Worker) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(w.Config.Server.Shutdown.CleanupPeriodSeconds)*time.Second)
	defer cancel()

	if err := w.Kafka.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close Kafka client")
	}

	if err := w.Otel.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to flush traces")
	}

	log.Info().Msg("Worker stopped.")
}
