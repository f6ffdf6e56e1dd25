// Package status streams live job state over websockets.
package status

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"stemtab/internal/logger"
	"stemtab/internal/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Snapshot is one status frame pushed to a subscriber.
type Snapshot struct {
	JobID        string  `json:"job_id,omitempty"`
	Status       string  `json:"status,omitempty"`
	Progress     float64 `json:"progress"`
	ErrorMessage *string `json:"error_message,omitempty"`
	Error        string  `json:"error,omitempty"`
}

// Publisher serves per-job status streams. Every subscriber gets an
// immediate snapshot, then periodic re-emits until the job reaches a
// terminal state, after which the connection is closed.
type Publisher struct {
	Repo     *store.DB
	Interval time.Duration
	Logger   *logger.Logger
}

func NewPublisher(repo *store.DB, interval time.Duration, log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.Default()
	}
	return &Publisher{
		Repo:     repo,
		Interval: interval,
		Logger:   log.WithComponent("status"),
	}
}

// ServeJob upgrades the request and streams the job's state until it
// terminates or the client goes away.
func (p *Publisher) ServeJob(w http.ResponseWriter, r *http.Request, jobID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		p.Logger.Error("Websocket upgrade failed", "job_id", jobID, "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The read pump exists only to notice client disconnects.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if done := p.emit(conn, jobID); done {
		return
	}

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if done := p.emit(conn, jobID); done {
				return
			}
		}
	}
}

// emit writes one snapshot. It reports true when the stream is over:
// terminal job state, unknown job, or a dead connection.
func (p *Publisher) emit(conn *websocket.Conn, jobID string) bool {
	job, err := p.Repo.GetJob(jobID)
	if errors.Is(err, store.ErrNotFound) {
		_ = conn.WriteJSON(Snapshot{Error: "Job not found"})
		return true
	}
	if err != nil {
		p.Logger.Error("Failed to load job for status stream", "job_id", jobID, "error", err)
		// Transient read failure degrades to an in-band error frame.
		_ = conn.WriteJSON(Snapshot{JobID: jobID, Error: "Failed to read job status"})
		return false
	}

	snap := Snapshot{
		JobID:        job.ID,
		Status:       string(job.Status),
		Progress:     job.Progress,
		ErrorMessage: job.ErrorMessage,
	}
	if err := conn.WriteJSON(snap); err != nil {
		return true
	}

	return job.Status.Terminal()
}
