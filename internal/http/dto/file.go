package dto

import "stemtab/internal/domain"

type FileResponse struct {
	ID         string   `json:"id"`
	Filename   string   `json:"filename"`
	FileSize   int64    `json:"file_size"`
	Format     string   `json:"format"`
	Duration   *float64 `json:"duration,omitempty"`
	SampleRate *int     `json:"sample_rate,omitempty"`
	Channels   *int     `json:"channels,omitempty"`
	Title      *string  `json:"title,omitempty"`
	Artist     *string  `json:"artist,omitempty"`
	UploadedAt string   `json:"uploaded_at"`
}

func NewFileResponse(f *domain.AudioFile) FileResponse {
	return FileResponse{
		ID:         f.ID,
		Filename:   f.Filename,
		FileSize:   f.FileSize,
		Format:     f.Format,
		Duration:   f.Duration,
		SampleRate: f.SampleRate,
		Channels:   f.Channels,
		Title:      f.Title,
		Artist:     f.Artist,
		UploadedAt: f.UploadedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
