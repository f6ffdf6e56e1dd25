package store

import (
	"database/sql"
	"errors"

	"stemtab/internal/domain"
)

func (db *DB) CreateTrack(track *domain.StemTrack) error {
	query := `INSERT INTO stem_tracks (id, job_id, instrument_name, file_path, duration, file_size, created_at)
		VALUES (:id, :job_id, :instrument_name, :file_path, :duration, :file_size, :created_at)`

	_, err := db.NamedExec(query, track)
	return err
}

func (db *DB) GetTrack(id string) (*domain.StemTrack, error) {
	query := `SELECT id, job_id, instrument_name, file_path, duration, file_size, created_at
		FROM stem_tracks WHERE id = ?`

	track := &domain.StemTrack{}
	err := db.Get(track, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return track, nil
}

func (db *DB) ListTracksByJob(jobID string) ([]*domain.StemTrack, error) {
	query := `SELECT id, job_id, instrument_name, file_path, duration, file_size, created_at
		FROM stem_tracks WHERE job_id = ? ORDER BY instrument_name ASC`

	var tracks []*domain.StemTrack
	err := db.Select(&tracks, query, jobID)
	return tracks, err
}
