package bootstrap

import (
	"context"
	"log/slog"

	"github.com/yanqian/ragchat/internal/domain/job"
)

// Worker encapsulates the job-consumer lifecycle.
type Worker struct {
	logger   *slog.Logger
	consumer *job.Consumer
}

// NewWorker constructs the runnable worker app.
func NewWorker(logger *slog.Logger, consumer *job.Consumer) *Worker {
	return &Worker{logger: logger.With("component", "bootstrap.worker"), consumer: consumer}
}

// Run starts the consumer's dispatch loops and blocks until ctx is
// cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("worker starting")
	w.consumer.Run(ctx)
	w.logger.Info("worker stopped")
	return nil
}
