// Package httpapp exposes the REST and websocket API.
package httpapp

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"stemtab/internal/app"
	"stemtab/internal/logger"
	"stemtab/internal/status"
	"stemtab/internal/storage"
	"stemtab/internal/store"
)

type Handler struct {
	Files  *app.FileService
	Jobs   *app.JobService
	Tracks *app.TrackService
	Tabs   *app.TablatureService
	Status *status.Publisher
	Logger *logger.Logger
}

func NewHandler(files *app.FileService, jobs *app.JobService, tracks *app.TrackService, tabs *app.TablatureService, st *status.Publisher, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Default()
	}
	return &Handler{
		Files:  files,
		Jobs:   jobs,
		Tracks: tracks,
		Tabs:   tabs,
		Status: st,
		Logger: log.WithComponent("http"),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	r.Post("/api/upload", h.Upload)
	r.Get("/api/files/{id}", h.GetFile)
	r.Delete("/api/files/{id}", h.DeleteFile)

	r.Post("/api/separate/{file_id}", h.CreateSeparation)
	r.Get("/api/jobs", h.ListJobs)
	r.Get("/api/jobs/{id}", h.GetJob)
	r.Delete("/api/jobs/{id}", h.DeleteJob)
	r.Get("/api/jobs/{id}/ws", h.JobStatusWS)

	r.Get("/api/tracks/{id}", h.GetTrack)
	r.Get("/api/tracks/{id}/download", h.DownloadTrack)
	r.Get("/api/tracks/{id}/stream", h.StreamTrack)

	r.Post("/api/tracks/{id}/tablature", h.CreateTablature)
	r.Get("/api/tracks/{id}/tablatures", h.ListTablatures)
	r.Get("/api/tablature/{id}", h.GetTablature)
	r.Delete("/api/tablature/{id}", h.DeleteTablature)
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, code int, detail string) {
	h.writeJSON(w, code, map[string]string{"detail": detail})
}

// handleError maps service errors onto status codes. Anything not
// recognized is a 500 with a generic body; the detail goes to the log.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, storage.ErrUnsupportedFormat):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrFileTooLarge):
		h.writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	default:
		h.Logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
