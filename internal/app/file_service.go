package app

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"stemtab/internal/audiometa"
	"stemtab/internal/domain"
	"stemtab/internal/logger"
	"stemtab/internal/storage"
	"stemtab/internal/store"
)

// ErrFileTooLarge is returned for uploads over the configured limit.
var ErrFileTooLarge = errors.New("file exceeds maximum upload size")

type FileService struct {
	Repo    *store.DB
	Files   *storage.Manager
	MaxSize int64
	Logger  *logger.Logger
}

func NewFileService(repo *store.DB, files *storage.Manager, maxSize int64, log *logger.Logger) *FileService {
	if log == nil {
		log = logger.Default()
	}
	return &FileService{
		Repo:    repo,
		Files:   files,
		MaxSize: maxSize,
		Logger:  log.WithComponent("files"),
	}
}

// Upload validates and stores an incoming audio file, then records it
// with whatever metadata its headers and tags expose. Validation runs
// before anything touches disk.
func (s *FileService) Upload(filename string, declaredSize int64, r io.Reader) (*domain.AudioFile, error) {
	format, err := storage.Format(filename)
	if err != nil {
		return nil, err
	}
	if declaredSize > s.MaxSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, declaredSize)
	}

	id := uuid.New().String()
	path, size, err := s.Files.SaveUpload(id, filename, r)
	if err != nil {
		return nil, err
	}
	if size > s.MaxSize {
		_ = storage.RemoveFile(path)
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, size)
	}

	info := audiometa.Probe(path)

	file := &domain.AudioFile{
		ID:           id,
		Filename:     filename,
		OriginalPath: path,
		FileSize:     size,
		Format:       format,
		Duration:     info.Duration,
		SampleRate:   info.SampleRate,
		Channels:     info.Channels,
		Title:        info.Title,
		Artist:       info.Artist,
		UploadedAt:   time.Now(),
	}

	if err := s.Repo.CreateAudioFile(file); err != nil {
		_ = storage.RemoveFile(path)
		return nil, fmt.Errorf("failed to record upload: %w", err)
	}

	s.Logger.Info("File uploaded", "file_id", id, "filename", filename, "size", size, "format", format)
	return file, nil
}

func (s *FileService) Get(id string) (*domain.AudioFile, error) {
	return s.Repo.GetAudioFile(id)
}

// Delete removes the file row (cascading its jobs, stems and
// tablatures) and cleans up everything it left on disk. Disk cleanup
// is best-effort.
func (s *FileService) Delete(id string) error {
	file, err := s.Repo.GetAudioFile(id)
	if err != nil {
		return err
	}

	jobs, err := s.Repo.ListJobsByAudioFile(id)
	if err != nil {
		s.Logger.Warn("Failed to list jobs for file cleanup", "file_id", id, "error", err)
	}
	for _, job := range jobs {
		if err := s.Files.RemoveJobDir(job.ID); err != nil {
			s.Logger.Warn("Failed to remove job dir", "job_id", job.ID, "error", err)
		}
	}

	if err := storage.RemoveFile(file.OriginalPath); err != nil && !storage.IsNotExist(err) {
		s.Logger.Warn("Failed to remove uploaded file", "path", file.OriginalPath, "error", err)
	}

	if err := s.Repo.DeleteAudioFile(id); err != nil {
		return err
	}

	s.Logger.Info("File deleted", "file_id", id, "jobs_removed", len(jobs))
	return nil
}
