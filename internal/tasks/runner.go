package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"shootflow-backend/internal/models"
)

// HandlerFunc processes one claimed task. A returned error marks the task
// failed with the error recorded; it is never retried automatically.
type HandlerFunc func(ctx context.Context, task *models.Task) error

// Runner polls the queue and dispatches claimed tasks to registered handlers.
type Runner struct {
	queue    *Queue
	handlers map[string]HandlerFunc
	interval time.Duration
	log      *slog.Logger
}

func NewRunner(queue *Queue, interval time.Duration, log *slog.Logger) *Runner {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Runner{
		queue:    queue,
		handlers: make(map[string]HandlerFunc),
		interval: interval,
		log:      log,
	}
}

func (r *Runner) Register(kind string, fn HandlerFunc) {
	r.handlers[kind] = fn
}

// Run polls until ctx is cancelled. It drains all queued tasks each tick
// before sleeping again.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for {
				task, err := r.queue.claim(ctx)
				if err != nil {
					r.log.Error("failed to claim task", "error", err)
					break
				}
				if task == nil {
					break
				}
				r.process(ctx, task)
			}
		}
	}
}

func (r *Runner) process(ctx context.Context, task *models.Task) {
	handler, ok := r.handlers[task.Kind]
	var taskErr error
	if !ok {
		taskErr = fmt.Errorf("no handler registered for task kind %q", task.Kind)
	} else {
		taskErr = handler(ctx, task)
	}

	if taskErr != nil {
		r.log.Error("task failed", "task_id", task.ID, "kind", task.Kind, "error", taskErr)
	} else {
		r.log.Info("task completed", "task_id", task.ID, "kind", task.Kind)
	}
	if err := r.queue.finish(ctx, task.ID, taskErr); err != nil {
		r.log.Error("failed to record task result", "task_id", task.ID, "error", err)
	}
}
