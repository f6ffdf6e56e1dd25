package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"stemtab/internal/constants"
)

// ErrUnsupportedFormat is returned for uploads whose extension is not
// in the accepted set.
var ErrUnsupportedFormat = fmt.Errorf("unsupported audio format")

var supportedExtensions = map[string]bool{
	constants.ExtMP3:  true,
	constants.ExtWAV:  true,
	constants.ExtFLAC: true,
	constants.ExtMP4:  true,
	constants.ExtM4A:  true,
}

// Manager owns the upload directory and the per-job stem work root.
type Manager struct {
	UploadDir string
	StemsDir  string
}

func NewManager(uploadDir, stemsDir string) (*Manager, error) {
	if err := EnsureDir(uploadDir); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	if err := EnsureDir(stemsDir); err != nil {
		return nil, fmt.Errorf("failed to create stems dir: %w", err)
	}
	return &Manager{UploadDir: uploadDir, StemsDir: stemsDir}, nil
}

// Format returns the lowercased extension of filename without the dot,
// or ErrUnsupportedFormat when it is not an accepted audio type.
func Format(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !supportedExtensions[ext] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return strings.TrimPrefix(ext, "."), nil
}

// SaveUpload streams an upload to disk under a storage id, returning
// the stored path and byte count. The extension must already have been
// validated; nothing touches disk otherwise.
func (m *Manager) SaveUpload(id, filename string, r io.Reader) (string, int64, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	path := filepath.Join(m.UploadDir, id+ext)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, constants.FilePermissions)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create upload file: %w", err)
	}

	n, err := io.Copy(f, r)
	if closeErr := f.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("failed to write upload: %w", err)
	}
	return path, n, nil
}

// JobDir creates (if needed) and returns the working directory for a job.
func (m *Manager) JobDir(jobID string) (string, error) {
	dir := filepath.Join(m.StemsDir, Sanitize(jobID))
	if err := EnsureDir(dir); err != nil {
		return "", fmt.Errorf("failed to create job dir: %w", err)
	}
	return dir, nil
}

// RemoveJobDir deletes a job's working directory and everything in it.
func (m *Manager) RemoveJobDir(jobID string) error {
	return os.RemoveAll(filepath.Join(m.StemsDir, Sanitize(jobID)))
}
