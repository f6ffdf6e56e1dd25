package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stemtab/internal/domain"
	"stemtab/internal/executor"
	"stemtab/internal/logger"
	"stemtab/internal/storage"
	"stemtab/internal/store"
)

type JobService struct {
	Repo    *store.DB
	Files   *storage.Manager
	Backend executor.Backend
	Logger  *logger.Logger
}

func NewJobService(repo *store.DB, files *storage.Manager, backend executor.Backend, log *logger.Logger) *JobService {
	if log == nil {
		log = logger.Default()
	}
	return &JobService{
		Repo:    repo,
		Files:   files,
		Backend: backend,
		Logger:  log.WithComponent("jobs"),
	}
}

// Create records a pending separation job for an uploaded file and
// hands it to the execution backend. A dispatch failure marks the job
// failed rather than leaving it pending forever.
func (s *JobService) Create(ctx context.Context, fileID string, algorithm domain.Algorithm, quality domain.Quality) (*domain.SeparationJob, error) {
	if _, err := s.Repo.GetAudioFile(fileID); err != nil {
		return nil, err
	}

	job := &domain.SeparationJob{
		ID:          uuid.New().String(),
		AudioFileID: fileID,
		Algorithm:   algorithm,
		Quality:     quality,
		Status:      domain.JobStatusPending,
		Progress:    0,
		CreatedAt:   time.Now(),
	}
	if err := s.Repo.CreateJob(job); err != nil {
		return nil, fmt.Errorf("failed to record job: %w", err)
	}

	if err := s.Backend.Dispatch(ctx, job.ID); err != nil {
		s.Logger.Error("Failed to dispatch job", "job_id", job.ID, "error", err)
		if failErr := s.Repo.FailJob(job.ID, fmt.Sprintf("Dispatch failed: %v", err)); failErr != nil {
			s.Logger.Error("Failed to mark undispatched job failed", "job_id", job.ID, "error", failErr)
		}
		return nil, fmt.Errorf("failed to dispatch job: %w", err)
	}

	s.Logger.Info("Job created", "job_id", job.ID, "file_id", fileID,
		"algorithm", algorithm, "quality", quality)
	return job, nil
}

// Get returns a job with its stem tracks attached.
func (s *JobService) Get(id string) (*domain.SeparationJob, error) {
	job, err := s.Repo.GetJob(id)
	if err != nil {
		return nil, err
	}
	if err := s.attachTracks(job); err != nil {
		return nil, err
	}
	return job, nil
}

// List returns a page of jobs, newest first, with tracks attached.
func (s *JobService) List(skip, limit int) ([]*domain.SeparationJob, error) {
	jobs, err := s.Repo.ListJobs(skip, limit)
	if err != nil {
		return nil, err
	}
	for _, job := range jobs {
		if err := s.attachTracks(job); err != nil {
			return nil, err
		}
	}
	return jobs, nil
}

// Delete removes the job row (cascading tracks and tablatures) and its
// working directory. Disk cleanup is best-effort.
func (s *JobService) Delete(id string) error {
	if _, err := s.Repo.GetJob(id); err != nil {
		return err
	}

	if err := s.Files.RemoveJobDir(id); err != nil {
		s.Logger.Warn("Failed to remove job dir", "job_id", id, "error", err)
	}

	if err := s.Repo.DeleteJob(id); err != nil {
		return err
	}

	s.Logger.Info("Job deleted", "job_id", id)
	return nil
}

func (s *JobService) attachTracks(job *domain.SeparationJob) error {
	tracks, err := s.Repo.ListTracksByJob(job.ID)
	if err != nil {
		return fmt.Errorf("failed to load tracks for job %s: %w", job.ID, err)
	}
	job.Tracks = tracks
	return nil
}
