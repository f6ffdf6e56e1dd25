package app

import (
	"stemtab/internal/domain"
	"stemtab/internal/logger"
	"stemtab/internal/storage"
	"stemtab/internal/store"
)

type TrackService struct {
	Repo   *store.DB
	Logger *logger.Logger
}

func NewTrackService(repo *store.DB, log *logger.Logger) *TrackService {
	if log == nil {
		log = logger.Default()
	}
	return &TrackService{
		Repo:   repo,
		Logger: log.WithComponent("tracks"),
	}
}

func (s *TrackService) Get(id string) (*domain.StemTrack, error) {
	return s.Repo.GetTrack(id)
}

// GetPlayable returns a track only if its audio still exists on disk.
// A row whose file was swept or deleted reads as not found.
func (s *TrackService) GetPlayable(id string) (*domain.StemTrack, error) {
	track, err := s.Repo.GetTrack(id)
	if err != nil {
		return nil, err
	}
	if !storage.FileExists(track.FilePath) {
		s.Logger.WithTrack(track.ID, track.InstrumentName).Warn("Stem file missing on disk", "path", track.FilePath)
		return nil, store.ErrNotFound
	}
	return track, nil
}
