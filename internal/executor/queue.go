package executor

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"stemtab/internal/logger"
)

// QueueBackend pushes job ids onto a redis list for worker processes
// to drain. The job row is already persisted before dispatch, so a
// crash between enqueue and execution loses nothing but time.
type QueueBackend struct {
	Client *redis.Client
	Key    string
	Logger *logger.Logger
}

func NewQueueBackend(client *redis.Client, key string, log *logger.Logger) *QueueBackend {
	if log == nil {
		log = logger.Default()
	}
	return &QueueBackend{
		Client: client,
		Key:    key,
		Logger: log.WithComponent("queue_backend"),
	}
}

func (b *QueueBackend) Dispatch(ctx context.Context, jobID string) error {
	if err := b.Client.LPush(ctx, b.Key, jobID).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job %s: %w", jobID, err)
	}
	b.Logger.Info("Job enqueued", "job_id", jobID, "queue", b.Key)
	return nil
}

// Close is a no-op; the redis client is owned by the caller.
func (b *QueueBackend) Close() error {
	return nil
}
