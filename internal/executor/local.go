package executor

import (
	"context"
	"fmt"
	"sync"

	"stemtab/internal/logger"
)

// LocalBackend runs jobs in-process, one goroutine per dispatched job.
// Each dispatch gets a tracked task handle; Close waits for in-flight
// jobs before returning.
type LocalBackend struct {
	Runner *Runner
	Logger *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewLocalBackend(runner *Runner, log *logger.Logger) *LocalBackend {
	if log == nil {
		log = logger.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &LocalBackend{
		Runner:   runner,
		Logger:   log.WithComponent("local_backend"),
		ctx:      ctx,
		cancel:   cancel,
		inflight: make(map[string]struct{}),
	}
}

// Dispatch schedules a job for background execution and returns
// immediately. Dispatching an id that is already in flight here is
// rejected; the claim guard in the runner covers races with other
// processes.
func (b *LocalBackend) Dispatch(_ context.Context, jobID string) error {
	b.mu.Lock()
	if _, running := b.inflight[jobID]; running {
		b.mu.Unlock()
		return fmt.Errorf("job %s is already dispatched", jobID)
	}
	b.inflight[jobID] = struct{}{}
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() {
			b.mu.Lock()
			delete(b.inflight, jobID)
			b.mu.Unlock()
		}()

		if err := b.Runner.Run(b.ctx, jobID); err != nil {
			b.Logger.Error("Job execution failed", "job_id", jobID, "error", err)
		}
	}()

	return nil
}

// Wait blocks until all currently dispatched jobs finish.
func (b *LocalBackend) Wait() {
	b.wg.Wait()
}

// Close cancels the backend context and waits for in-flight jobs.
func (b *LocalBackend) Close() error {
	b.cancel()
	b.wg.Wait()
	return nil
}
