package store

import (
	"database/sql"
	"errors"
	"time"

	"stemtab/internal/domain"
)

const jobColumns = `id, audio_file_id, algorithm, quality, status, progress, error_message, created_at, started_at, completed_at`

func (db *DB) CreateJob(job *domain.SeparationJob) error {
	query := `INSERT INTO separation_jobs (id, audio_file_id, algorithm, quality, status, progress, error_message, created_at, started_at, completed_at)
		VALUES (:id, :audio_file_id, :algorithm, :quality, :status, :progress, :error_message, :created_at, :started_at, :completed_at)`

	_, err := db.NamedExec(query, job)
	return err
}

func (db *DB) GetJob(id string) (*domain.SeparationJob, error) {
	query := `SELECT ` + jobColumns + ` FROM separation_jobs WHERE id = ?`

	job := &domain.SeparationJob{}
	err := db.Get(job, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (db *DB) ListJobs(skip, limit int) ([]*domain.SeparationJob, error) {
	query := `SELECT ` + jobColumns + ` FROM separation_jobs ORDER BY created_at DESC LIMIT ? OFFSET ?`

	var jobs []*domain.SeparationJob
	err := db.Select(&jobs, query, limit, skip)
	return jobs, err
}

func (db *DB) ListJobsByAudioFile(fileID string) ([]*domain.SeparationJob, error) {
	query := `SELECT ` + jobColumns + ` FROM separation_jobs WHERE audio_file_id = ? ORDER BY created_at DESC`

	var jobs []*domain.SeparationJob
	err := db.Select(&jobs, query, fileID)
	return jobs, err
}

// ClaimJob atomically moves a pending job to processing. It reports
// false when the job is missing or someone else already claimed it,
// which makes duplicate dispatch of the same id a harmless no-op.
func (db *DB) ClaimJob(id string) (bool, error) {
	query := `UPDATE separation_jobs SET status = ?, progress = 0, started_at = ? WHERE id = ? AND status = ?`

	res, err := db.Exec(query, domain.JobStatusProcessing, time.Now(), id, domain.JobStatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// UpdateJobProgress persists the latest reported progress. Values are
// trusted as reported; the last write wins.
func (db *DB) UpdateJobProgress(id string, progress float64) error {
	query := `UPDATE separation_jobs SET progress = ? WHERE id = ?`
	_, err := db.Exec(query, progress, id)
	return err
}

// CompleteJob finishes a processing job, forcing progress to 100.
func (db *DB) CompleteJob(id string) error {
	query := `UPDATE separation_jobs SET status = ?, progress = 100, completed_at = ? WHERE id = ? AND status = ?`

	res, err := db.Exec(query, domain.JobStatusCompleted, time.Now(), id, domain.JobStatusProcessing)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// FailJob marks a non-terminal job as failed with an error message.
// Calling it on a job that already reached a terminal state is a no-op.
func (db *DB) FailJob(id string, errorMsg string) error {
	query := `UPDATE separation_jobs SET status = ?, error_message = ?, completed_at = ?
		WHERE id = ? AND status NOT IN (?, ?)`

	_, err := db.Exec(query, domain.JobStatusFailed, errorMsg, time.Now(), id,
		domain.JobStatusCompleted, domain.JobStatusFailed)
	return err
}

func (db *DB) DeleteJob(id string) error {
	res, err := db.Exec(`DELETE FROM separation_jobs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
