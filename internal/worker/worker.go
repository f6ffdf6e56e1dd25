// Package worker drains the durable job queue, one job at a time.
package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"

	"stemtab/internal/constants"
	"stemtab/internal/executor"
	"stemtab/internal/logger"
)

// Worker consumes job ids from a redis list and executes them through
// the shared runner. It processes one job at a time and exits on its
// own after MaxJobs completions; the process supervisor restarts it,
// which keeps long-running model memory from accumulating.
type Worker struct {
	Runner   *executor.Runner
	Client   *redis.Client
	QueueKey string
	MaxJobs  int
	Logger   *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	done   chan struct{}
}

func New(runner *executor.Runner, client *redis.Client, queueKey string, maxJobs int, log *logger.Logger) *Worker {
	if log == nil {
		log = logger.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		Runner:   runner,
		Client:   client,
		QueueKey: queueKey,
		MaxJobs:  maxJobs,
		Logger:   log.WithComponent("worker"),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

func (w *Worker) Start() {
	w.Logger.Info("Starting worker", "queue", w.QueueKey, "max_jobs", w.MaxJobs)
	w.wg.Add(1)
	go w.consume()
}

func (w *Worker) Stop() {
	w.Logger.Info("Stopping worker")
	w.cancel()
	w.wg.Wait()
}

// Done is closed when the worker has drained its job allowance and
// exited on its own.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

func (w *Worker) consume() {
	defer w.wg.Done()
	defer close(w.done)

	processed := 0
	for processed < w.MaxJobs {
		select {
		case <-w.ctx.Done():
			return
		default:
		}

		res, err := w.Client.BRPop(w.ctx, constants.QueuePopTimeout, w.QueueKey).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if w.ctx.Err() != nil {
				return
			}
			w.Logger.Error("Failed to pop from queue", "error", err)
			continue
		}
		if len(res) < 2 {
			continue
		}
		jobID := res[1]

		if err := w.Runner.Run(w.ctx, jobID); err != nil {
			w.Logger.Error("Job execution failed", "job_id", jobID, "error", err)
		}
		processed++
	}

	w.Logger.Info("Worker recycling after job allowance", "processed", processed)
}
