// Package executor drives separation jobs from claim to terminal state.
// Dispatch backends decide where a job runs; the Runner is the shared
// execution path for all of them.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stemtab/internal/audiometa"
	"stemtab/internal/domain"
	"stemtab/internal/logger"
	"stemtab/internal/separation"
	"stemtab/internal/storage"
	"stemtab/internal/store"
)

// Backend accepts job ids for execution.
type Backend interface {
	Dispatch(ctx context.Context, jobID string) error
	Close() error
}

// Runner executes one job: claim, separate, record stems, finish.
type Runner struct {
	Repo    *store.DB
	Files   *storage.Manager
	Engine  separation.Engine
	Logger  *logger.Logger
	Timeout time.Duration
}

func NewRunner(repo *store.DB, files *storage.Manager, engine separation.Engine, timeout time.Duration, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Default()
	}
	return &Runner{
		Repo:    repo,
		Files:   files,
		Engine:  engine,
		Logger:  log.WithComponent("executor"),
		Timeout: timeout,
	}
}

// Run claims and executes a job. A lost claim (already taken, already
// finished, or unknown id) is a logged no-op so duplicate dispatch
// cannot double-execute.
func (r *Runner) Run(ctx context.Context, jobID string) error {
	log := r.Logger.WithJob(jobID)

	claimed, err := r.Repo.ClaimJob(jobID)
	if err != nil {
		return fmt.Errorf("failed to claim job: %w", err)
	}
	if !claimed {
		log.Info("Job not claimable, skipping")
		return nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("Panic in job", "panic", rec)
			_ = r.Repo.FailJob(jobID, fmt.Sprintf("Panic: %v", rec))
		}
	}()

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	job, err := r.Repo.GetJob(jobID)
	if err != nil {
		_ = r.Repo.FailJob(jobID, fmt.Sprintf("Failed to load job: %v", err))
		return err
	}

	audioFile, err := r.Repo.GetAudioFile(job.AudioFileID)
	if err != nil {
		log.Error("Failed to load audio file", "error", err)
		_ = r.Repo.FailJob(jobID, fmt.Sprintf("Failed to load audio file: %v", err))
		return err
	}

	workDir, err := r.Files.JobDir(jobID)
	if err != nil {
		log.Error("Failed to create work dir", "error", err)
		_ = r.Repo.FailJob(jobID, fmt.Sprintf("Failed to create work dir: %v", err))
		return err
	}

	log.Info("Running separation", "algorithm", job.Algorithm, "quality", job.Quality, "input", audioFile.OriginalPath)

	stems, err := r.Engine.Separate(ctx, separation.Request{
		InputPath: audioFile.OriginalPath,
		OutputDir: workDir,
		Algorithm: job.Algorithm,
		Quality:   job.Quality,
	}, func(percent float64) {
		if err := r.Repo.UpdateJobProgress(jobID, percent); err != nil {
			log.Warn("Failed to persist progress", "error", err)
		}
	})
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			log.Error("Job exceeded time limit")
			_ = r.Repo.FailJob(jobID, fmt.Sprintf("Separation timed out after %s", r.Timeout))
			return ctx.Err()
		}
		log.Error("Separation failed", "error", err)
		_ = r.Repo.FailJob(jobID, err.Error())
		return err
	}

	r.recordStems(jobID, stems, log)

	if err := r.Repo.CompleteJob(jobID); err != nil {
		log.Error("Failed to complete job", "error", err)
		return err
	}

	log.Info("Job completed", "stems", len(stems))
	return nil
}

// recordStems creates a track row for every stem whose file actually
// landed on disk. Stems the engine announced but never wrote are
// skipped; rows created before a later failure stay as partial output.
func (r *Runner) recordStems(jobID string, stems map[string]string, log *logger.Logger) {
	for instrument, path := range stems {
		if !storage.FileExists(path) {
			log.Warn("Stem file missing, skipping", "instrument", instrument, "path", path)
			continue
		}

		size, err := storage.FileSize(path)
		if err != nil {
			log.Warn("Failed to stat stem", "instrument", instrument, "error", err)
		}

		var duration float64
		if info := audiometa.Probe(path); info.Duration != nil {
			duration = *info.Duration
		}

		track := &domain.StemTrack{
			ID:             uuid.New().String(),
			JobID:          jobID,
			InstrumentName: instrument,
			FilePath:       path,
			Duration:       duration,
			FileSize:       size,
			CreatedAt:      time.Now(),
		}
		if err := r.Repo.CreateTrack(track); err != nil {
			log.Error("Failed to record stem track", "instrument", instrument, "error", err)
		}
	}
}
