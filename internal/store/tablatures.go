package store

import (
	"database/sql"
	"errors"

	"stemtab/internal/domain"
)

func (db *DB) CreateTablature(tab *domain.Tablature) error {
	query := `INSERT INTO tablatures (id, track_id, instrument_type, tuning, content, created_at)
		VALUES (:id, :track_id, :instrument_type, :tuning, :content, :created_at)`

	_, err := db.NamedExec(query, tab)
	return err
}

func (db *DB) GetTablature(id string) (*domain.Tablature, error) {
	query := `SELECT id, track_id, instrument_type, tuning, content, created_at
		FROM tablatures WHERE id = ?`

	tab := &domain.Tablature{}
	err := db.Get(tab, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return tab, nil
}

func (db *DB) ListTablaturesByTrack(trackID string) ([]*domain.Tablature, error) {
	query := `SELECT id, track_id, instrument_type, tuning, content, created_at
		FROM tablatures WHERE track_id = ? ORDER BY created_at DESC`

	var tabs []*domain.Tablature
	err := db.Select(&tabs, query, trackID)
	return tabs, err
}

func (db *DB) DeleteTablature(id string) error {
	res, err := db.Exec(`DELETE FROM tablatures WHERE id = ?`, id)
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
