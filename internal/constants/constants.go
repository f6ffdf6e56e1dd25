// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort          = "8080"
	DefaultDBPath        = "stemtab.db"
	DefaultUploadDir     = "uploads"
	DefaultStemsDir      = "stems"
	DefaultAlgorithm     = "demucs"
	DefaultQuality       = "high"
	DefaultRedisAddr     = "localhost:6379"
	DefaultQueueKey      = "stemtab:jobs"
	DefaultSeparatorCmd  = "stemtab-separate"
	DefaultPitchCmd      = "stemtab-pitch"
	DefaultExecutionMode = "local"
)

// Upload limits
const (
	MaxUploadBytes int64 = 100 * 1024 * 1024
)

// Job execution
const (
	DefaultJobTimeout    = 3600 * time.Second
	DefaultWorkerMaxJobs = 10
	QueuePopTimeout      = 5 * time.Second
)

// Status streaming
const (
	StatusPushInterval = 1 * time.Second
)

// Retention sweeping
const (
	DefaultSweepInterval = 24 * time.Hour
	DefaultRetentionAge  = 7 * 24 * time.Hour
	SweepStartupDelay    = 1 * time.Minute
)

// Track streaming
const (
	StreamChunkSize = 8192
)

// MIME Types
const (
	MimeTypeFLAC = "audio/flac"
	MimeTypeMP3  = "audio/mpeg"
	MimeTypeMP4  = "audio/mp4"
	MimeTypeWAV  = "audio/wav"
)

// File Extensions
const (
	ExtMP3  = ".mp3"
	ExtWAV  = ".wav"
	ExtFLAC = ".flac"
	ExtMP4  = ".mp4"
	ExtM4A  = ".m4a"
)

// File Permissions
const (
	DirPermissions  = 0755
	FilePermissions = 0644
)

// Characters to sanitize from filesystem paths
const InvalidPathChars = "<>:\"/\\|?*"
