package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"leadscout/internal/pipeline"
	"leadscout/shared/rabbitmq"

	"github.com/google/uuid"
)

// Config holds worker configuration
type Config struct {
	Logger        *slog.Logger
	RabbitClient  *rabbitmq.Client
	Runner        *pipeline.Runner
	Concurrency   int
	PrefetchCount int
	JobTimeout    time.Duration
}

// taskDelivery carries one parsed queue message through the worker pool.
type taskDelivery struct {
	JobID       string
	Task        string
	DeliveryTag uint64
}

// Worker consumes task messages from the queue and drives them through the
// pipeline runner.
type Worker struct {
	logger        *slog.Logger
	rabbitClient  *rabbitmq.Client
	runner        *pipeline.Runner
	concurrency   int
	prefetchCount int
	jobTimeout    time.Duration
	workerID      string
	tasksChan     chan *taskDelivery
	wg            sync.WaitGroup
	stopChan      chan struct{}
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	prefetch := cfg.PrefetchCount
	if prefetch <= 0 {
		prefetch = cfg.Concurrency
	}

	return &Worker{
		logger:        cfg.Logger,
		rabbitClient:  cfg.RabbitClient,
		runner:        cfg.Runner,
		concurrency:   cfg.Concurrency,
		prefetchCount: prefetch,
		jobTimeout:    cfg.JobTimeout,
		workerID:      fmt.Sprintf("leadscout-worker-%s", uuid.New().String()[:8]),
		tasksChan:     make(chan *taskDelivery, cfg.Concurrency),
		stopChan:      make(chan struct{}),
	}
}

// Start begins consuming and processing tasks. It blocks until ctx is
// canceled.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("job_timeout", w.jobTimeout),
	)

	deliveries, err := w.setupConsumer(ctx)
	if err != nil {
		return fmt.Errorf("failed to setup consumer: %w", err)
	}

	w.spawnWorkerPool(ctx)
	w.startMessageDispatcher(ctx, deliveries)

	return nil
}

// Stop gracefully stops the worker
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}
