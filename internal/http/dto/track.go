package dto

import "stemtab/internal/domain"

type TrackResponse struct {
	ID             string  `json:"id"`
	JobID          string  `json:"job_id"`
	InstrumentName string  `json:"instrument_name"`
	Duration       float64 `json:"duration"`
	FileSize       int64   `json:"file_size"`
	CreatedAt      string  `json:"created_at"`
}

func NewTrackResponse(t *domain.StemTrack) TrackResponse {
	return TrackResponse{
		ID:             t.ID,
		JobID:          t.JobID,
		InstrumentName: t.InstrumentName,
		Duration:       t.Duration,
		FileSize:       t.FileSize,
		CreatedAt:      t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
