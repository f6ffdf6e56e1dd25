package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stemtab/internal/domain"
	"stemtab/internal/logger"
	"stemtab/internal/storage"
	"stemtab/internal/store"
	"stemtab/internal/tablature"
)

type TablatureService struct {
	Repo   *store.DB
	Mapper *tablature.Mapper
	Logger *logger.Logger
}

func NewTablatureService(repo *store.DB, mapper *tablature.Mapper, log *logger.Logger) *TablatureService {
	if log == nil {
		log = logger.Default()
	}
	return &TablatureService{
		Repo:   repo,
		Mapper: mapper,
		Logger: log.WithComponent("tablature"),
	}
}

// Generate renders notation for a stem track and persists the result.
// The stem audio must still be present on disk.
func (s *TablatureService) Generate(ctx context.Context, trackID string, instrument domain.InstrumentType, tuning string) (*domain.Tablature, error) {
	track, err := s.Repo.GetTrack(trackID)
	if err != nil {
		return nil, err
	}
	if !storage.FileExists(track.FilePath) {
		s.Logger.Warn("Stem file missing for tablature", "track_id", trackID, "path", track.FilePath)
		return nil, store.ErrNotFound
	}

	content, err := s.Mapper.Generate(ctx, track.FilePath, instrument, tuning)
	if err != nil {
		return nil, err
	}

	tab := &domain.Tablature{
		ID:             uuid.New().String(),
		TrackID:        trackID,
		InstrumentType: instrument,
		Tuning:         tuning,
		Content:        content,
		CreatedAt:      time.Now(),
	}
	if err := s.Repo.CreateTablature(tab); err != nil {
		return nil, fmt.Errorf("failed to record tablature: %w", err)
	}

	s.Logger.Info("Tablature generated", "tablature_id", tab.ID, "track_id", trackID,
		"instrument", instrument, "tuning", tuning)
	return tab, nil
}

func (s *TablatureService) Get(id string) (*domain.Tablature, error) {
	return s.Repo.GetTablature(id)
}

func (s *TablatureService) ListByTrack(trackID string) ([]*domain.Tablature, error) {
	if _, err := s.Repo.GetTrack(trackID); err != nil {
		return nil, err
	}
	return s.Repo.ListTablaturesByTrack(trackID)
}

func (s *TablatureService) Delete(id string) error {
	return s.Repo.DeleteTablature(id)
}
