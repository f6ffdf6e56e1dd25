package httpapp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"stemtab/internal/constants"
	"stemtab/internal/domain"
	"stemtab/internal/http/dto"
	"stemtab/internal/store"
)

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"service": "stemtab",
		"docs":    "/health",
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	// Slack over the limit so the rejection comes from the size check
	// with a clean 413 rather than a broken multipart read.
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadBytes+1024*1024)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "File exceeds maximum upload size")
			return
		}
		h.writeError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	stored, err := h.Files.Upload(header.Filename, header.Size, file)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, dto.NewFileResponse(stored))
}

func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	file, err := h.Files.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dto.NewFileResponse(file))
}

func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	if err := h.Files.Delete(chi.URLParam(r, "id")); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateSeparation(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "file_id")

	var req dto.SeparateRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	if req.Algorithm == "" {
		req.Algorithm = constants.DefaultAlgorithm
	}
	if req.Quality == "" {
		req.Quality = constants.DefaultQuality
	}

	algorithm, err := domain.ParseAlgorithm(req.Algorithm)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	quality, err := domain.ParseQuality(req.Quality)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := h.Jobs.Create(r.Context(), fileID, algorithm, quality)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusAccepted, dto.NewJobResponse(job))
}

func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 20)
	if skip < 0 {
		skip = 0
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	jobs, err := h.Jobs.List(skip, limit)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dto.NewJobListResponse(jobs))
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.Jobs.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dto.NewJobResponse(job))
}

func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := h.Jobs.Delete(chi.URLParam(r, "id")); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) JobStatusWS(w http.ResponseWriter, r *http.Request) {
	h.Status.ServeJob(w, r, chi.URLParam(r, "id"))
}

func (h *Handler) GetTrack(w http.ResponseWriter, r *http.Request) {
	track, err := h.Tracks.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dto.NewTrackResponse(track))
}

func (h *Handler) DownloadTrack(w http.ResponseWriter, r *http.Request) {
	h.serveTrackFile(w, r, true)
}

func (h *Handler) StreamTrack(w http.ResponseWriter, r *http.Request) {
	h.serveTrackFile(w, r, false)
}

// serveTrackFile sends the stem audio, as an attachment for downloads
// or inline for streaming.
func (h *Handler) serveTrackFile(w http.ResponseWriter, r *http.Request, attachment bool) {
	track, err := h.Tracks.GetPlayable(chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	f, err := os.Open(track.FilePath)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	defer f.Close()

	filename := track.InstrumentName + filepath.Ext(track.FilePath)
	w.Header().Set("Content-Type", mimeFor(track.FilePath))
	w.Header().Set("Content-Length", strconv.FormatInt(track.FileSize, 10))
	if attachment {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	} else {
		w.Header().Set("Content-Disposition", "inline")
	}

	buf := make([]byte, constants.StreamChunkSize)
	if _, err := io.CopyBuffer(w, f, buf); err != nil {
		// Headers are gone; just log the broken transfer.
		h.Logger.Warn("Track transfer interrupted", "track_id", track.ID, "error", err)
	}
}

func (h *Handler) CreateTablature(w http.ResponseWriter, r *http.Request) {
	trackID := chi.URLParam(r, "id")

	var req dto.TablatureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	instrument, err := domain.ParseInstrumentType(req.InstrumentType)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tuning := req.Tuning
	if tuning == "" {
		tuning = "standard"
	}

	tab, err := h.Tabs.Generate(r.Context(), trackID, instrument, tuning)
	if errors.Is(err, store.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "Not found")
		return
	}
	if err != nil {
		// Extraction failures are synchronous; surface the cause.
		h.Logger.Error("Tablature generation failed", "track_id", trackID, "error", err)
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusCreated, dto.NewTablatureResponse(tab))
}

func (h *Handler) ListTablatures(w http.ResponseWriter, r *http.Request) {
	tabs, err := h.Tabs.ListByTrack(chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dto.NewTablatureListResponse(tabs))
}

func (h *Handler) GetTablature(w http.ResponseWriter, r *http.Request) {
	tab, err := h.Tabs.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dto.NewTablatureResponse(tab))
}

func (h *Handler) DeleteTablature(w http.ResponseWriter, r *http.Request) {
	if err := h.Tabs.Delete(chi.URLParam(r, "id")); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func mimeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case constants.ExtMP3:
		return constants.MimeTypeMP3
	case constants.ExtFLAC:
		return constants.MimeTypeFLAC
	case constants.ExtMP4, constants.ExtM4A:
		return constants.MimeTypeMP4
	case constants.ExtWAV:
		return constants.MimeTypeWAV
	}
	return "application/octet-stream"
}
