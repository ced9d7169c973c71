package cleanup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SETHUKUMAR1709/job-application-tracker/shared/rabbitmq"
	amqp "github.com/rabbitmq/amqp091-go"
)

// WorkerConfig holds cleanup worker configuration
type WorkerConfig struct {
	Logger        *slog.Logger
	RabbitClient  *rabbitmq.Client
	Processor     *Processor
	Concurrency   int
	PrefetchCount int
	WorkerID      string
}

// Worker consumes cleanup events and removes the referenced blobs with a
// small pool of goroutines.
type Worker struct {
	logger        *slog.Logger
	rabbitClient  *rabbitmq.Client
	processor     *Processor
	concurrency   int
	prefetchCount int
	workerID      string

	deliveries chan amqp.Delivery
	wg         sync.WaitGroup
}

// NewWorker creates a new cleanup worker instance
func NewWorker(cfg *WorkerConfig) *Worker {
	return &Worker{
		logger:        cfg.Logger,
		rabbitClient:  cfg.RabbitClient,
		processor:     cfg.Processor,
		concurrency:   cfg.Concurrency,
		prefetchCount: cfg.PrefetchCount,
		workerID:      cfg.WorkerID,
		deliveries:    make(chan amqp.Delivery),
	}
}

// Start consumes until ctx is canceled, then drains the pool.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting cleanup worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Int("prefetch_count", w.prefetchCount),
	)

	channel := w.rabbitClient.GetChannel()
	if channel == nil {
		return fmt.Errorf("rabbitmq channel is nil")
	}

	if err := channel.Qos(w.prefetchCount, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	incoming, err := w.rabbitClient.Consume(w.workerID)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(i)
	}

	w.dispatch(ctx, incoming)

	close(w.deliveries)
	w.wg.Wait()

	w.logger.Info("Cleanup worker stopped")
	return nil
}

// dispatch forwards broker deliveries to the pool until ctx is canceled or
// the delivery channel closes.
func (w *Worker) dispatch(ctx context.Context, incoming <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Dispatcher stopped - context canceled")
			return

		case delivery, ok := <-incoming:
			if !ok {
				w.logger.Warn("RabbitMQ delivery channel closed")
				return
			}

			select {
			case w.deliveries <- delivery:
			case <-ctx.Done():
				// Requeue the in-flight delivery so another consumer picks
				// it up after shutdown.
				if err := delivery.Nack(false, true); err != nil {
					w.logger.Error("Failed to NACK delivery on shutdown",
						slog.String("error", err.Error()),
					)
				}
				return
			}
		}
	}
}

func (w *Worker) workerLoop(workerNum int) {
	defer w.wg.Done()

	workerName := fmt.Sprintf("%s-%d", w.workerID, workerNum)

	for delivery := range w.deliveries {
		err := w.processor.Process(delivery.Body)
		if err == nil {
			if ackErr := delivery.Ack(false); ackErr != nil {
				w.logger.Error("Failed to ACK delivery",
					slog.String("worker_name", workerName),
					slog.String("error", ackErr.Error()),
				)
			}
			continue
		}

		requeue := w.shouldRequeue(err, delivery.Redelivered)
		w.logger.Error("Cleanup event failed",
			slog.String("worker_name", workerName),
			slog.Bool("requeue", requeue),
			slog.String("error", err.Error()),
		)

		if nackErr := delivery.Nack(false, requeue); nackErr != nil {
			w.logger.Error("Failed to NACK delivery",
				slog.String("worker_name", workerName),
				slog.String("error", nackErr.Error()),
			)
		}
	}
}

// shouldRequeue allows one redelivery for transient failures and drops
// events that can never succeed.
func (w *Worker) shouldRequeue(err error, redelivered bool) bool {
	if redelivered {
		return false
	}
	return !errors.Is(err, ErrBadEvent)
}
