package dto

import "stemtab/internal/domain"

type TablatureRequest struct {
	InstrumentType string `json:"instrument_type"`
	Tuning         string `json:"tuning"`
}

type TablatureResponse struct {
	ID             string `json:"id"`
	TrackID        string `json:"track_id"`
	InstrumentType string `json:"instrument_type"`
	Tuning         string `json:"tuning"`
	Content        string `json:"content"`
	CreatedAt      string `json:"created_at"`
}

func NewTablatureResponse(t *domain.Tablature) TablatureResponse {
	return TablatureResponse{
		ID:             t.ID,
		TrackID:        t.TrackID,
		InstrumentType: string(t.InstrumentType),
		Tuning:         t.Tuning,
		Content:        t.Content,
		CreatedAt:      t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func NewTablatureListResponse(tabs []*domain.Tablature) []TablatureResponse {
	out := make([]TablatureResponse, 0, len(tabs))
	for _, t := range tabs {
		out = append(out, NewTablatureResponse(t))
	}
	return out
}
