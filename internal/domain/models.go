package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnknownAlgorithm  = errors.New("unknown separation algorithm")
	ErrUnknownQuality    = errors.New("unknown quality level")
	ErrUnknownInstrument = errors.New("unknown instrument type")
)

type Algorithm string

const (
	AlgorithmDemucs   Algorithm = "demucs"
	AlgorithmSpleeter Algorithm = "spleeter"
)

// ParseAlgorithm converts a request string into an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case AlgorithmDemucs, AlgorithmSpleeter:
		return Algorithm(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

// ParseQuality converts a request string into a Quality.
func ParseQuality(s string) (Quality, error) {
	switch Quality(s) {
	case QualityLow, QualityMedium, QualityHigh:
		return Quality(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownQuality, s)
}

type InstrumentType string

const (
	InstrumentGuitar InstrumentType = "guitar"
	InstrumentBass   InstrumentType = "bass"
	InstrumentPiano  InstrumentType = "piano"
)

// ParseInstrumentType converts a request string into an InstrumentType.
func ParseInstrumentType(s string) (InstrumentType, error) {
	switch InstrumentType(s) {
	case InstrumentGuitar, InstrumentBass, InstrumentPiano:
		return InstrumentType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownInstrument, s)
}

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
// The transition rules themselves are enforced by the store's
// conditional updates so they hold across processes.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// AudioFile is an uploaded source recording.
type AudioFile struct {
	ID           string    `json:"id" db:"id"`
	Filename     string    `json:"filename" db:"filename"`
	OriginalPath string    `json:"original_path" db:"original_path"`
	FileSize     int64     `json:"file_size" db:"file_size"`
	Format       string    `json:"format" db:"format"`
	Duration     *float64  `json:"duration,omitempty" db:"duration"`
	SampleRate   *int      `json:"sample_rate,omitempty" db:"sample_rate"`
	Channels     *int      `json:"channels,omitempty" db:"channels"`
	Title        *string   `json:"title,omitempty" db:"title"`
	Artist       *string   `json:"artist,omitempty" db:"artist"`
	UploadedAt   time.Time `json:"uploaded_at" db:"uploaded_at"`
}

// SeparationJob tracks one stem-separation run over an audio file.
type SeparationJob struct {
	ID           string       `json:"id" db:"id"`
	AudioFileID  string       `json:"audio_file_id" db:"audio_file_id"`
	Algorithm    Algorithm    `json:"algorithm" db:"algorithm"`
	Quality      Quality      `json:"quality" db:"quality"`
	Status       JobStatus    `json:"status" db:"status"`
	Progress     float64      `json:"progress" db:"progress"`
	ErrorMessage *string      `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	StartedAt    *time.Time   `json:"started_at,omitempty" db:"started_at"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty" db:"completed_at"`
	Tracks       []*StemTrack `json:"tracks" db:"-"`
}

// StemTrack is one isolated instrument produced by a completed job.
type StemTrack struct {
	ID             string    `json:"id" db:"id"`
	JobID          string    `json:"job_id" db:"job_id"`
	InstrumentName string    `json:"instrument_name" db:"instrument_name"`
	FilePath       string    `json:"file_path" db:"file_path"`
	Duration       float64   `json:"duration" db:"duration"`
	FileSize       int64     `json:"file_size" db:"file_size"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Tablature is rendered notation for a stem track.
type Tablature struct {
	ID             string         `json:"id" db:"id"`
	TrackID        string         `json:"track_id" db:"track_id"`
	InstrumentType InstrumentType `json:"instrument_type" db:"instrument_type"`
	Tuning         string         `json:"tuning" db:"tuning"`
	Content        string         `json:"content" db:"content"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
}
