package store

import (
	"database/sql"
	"errors"

	"stemtab/internal/domain"
)

func (db *DB) CreateAudioFile(f *domain.AudioFile) error {
	query := `INSERT INTO audio_files (id, filename, original_path, file_size, format, duration, sample_rate, channels, title, artist, uploaded_at)
		VALUES (:id, :filename, :original_path, :file_size, :format, :duration, :sample_rate, :channels, :title, :artist, :uploaded_at)`

	_, err := db.NamedExec(query, f)
	return err
}

func (db *DB) GetAudioFile(id string) (*domain.AudioFile, error) {
	query := `SELECT id, filename, original_path, file_size, format, duration, sample_rate, channels, title, artist, uploaded_at
		FROM audio_files WHERE id = ?`

	f := &domain.AudioFile{}
	err := db.Get(f, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// DeleteAudioFile removes the file row. Jobs, stem tracks and tablatures
// hanging off it go with it via foreign key cascades.
func (db *DB) DeleteAudioFile(id string) error {
	res, err := db.Exec(`DELETE FROM audio_files WHERE id = ?`, id)
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
