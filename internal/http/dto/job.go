package dto

import "stemtab/internal/domain"

type SeparateRequest struct {
	Algorithm string `json:"algorithm"`
	Quality   string `json:"quality"`
}

type JobResponse struct {
	ID          string          `json:"id"`
	AudioFileID string          `json:"audio_file_id"`
	Algorithm   string          `json:"algorithm"`
	Quality     string          `json:"quality"`
	Status      string          `json:"status"`
	Progress    float64         `json:"progress"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   string          `json:"created_at"`
	StartedAt   string          `json:"started_at,omitempty"`
	CompletedAt string          `json:"completed_at,omitempty"`
	Tracks      []TrackResponse `json:"tracks"`
}

func NewJobResponse(j *domain.SeparationJob) JobResponse {
	resp := JobResponse{
		ID:          j.ID,
		AudioFileID: j.AudioFileID,
		Algorithm:   string(j.Algorithm),
		Quality:     string(j.Quality),
		Status:      string(j.Status),
		Progress:    j.Progress,
		CreatedAt:   j.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Tracks:      []TrackResponse{},
	}
	if j.ErrorMessage != nil {
		resp.Error = *j.ErrorMessage
	}
	if j.StartedAt != nil {
		resp.StartedAt = j.StartedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	if j.CompletedAt != nil {
		resp.CompletedAt = j.CompletedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	for _, track := range j.Tracks {
		resp.Tracks = append(resp.Tracks, NewTrackResponse(track))
	}
	return resp
}

func NewJobListResponse(jobs []*domain.SeparationJob) []JobResponse {
	out := make([]JobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, NewJobResponse(j))
	}
	return out
}
