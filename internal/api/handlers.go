package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"dialogue-ocr/internal/dialogue"
	"dialogue-ocr/internal/job"
	"dialogue-ocr/internal/version"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// StartRequest is the body of POST /ocr/start.
type StartRequest struct {
	VideoPath string `json:"video_path"`
	Lang      string `json:"lang"`
}

// Handlers serves the job API on top of a job.Manager.
type Handlers struct {
	jobs        *job.Manager
	defaultLang string
	log         *zap.Logger
}

// NewHandlers creates handlers. defaultLang is used when a request names no
// language. A nil logger disables logging.
func NewHandlers(jobs *job.Manager, defaultLang string, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{jobs: jobs, defaultLang: defaultLang, log: log}
}

// Health reports liveness and the build version.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

// StartJob validates the video path and starts an extraction job.
func (h *Handlers) StartJob(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	info, err := os.Stat(req.VideoPath)
	if req.VideoPath == "" || err != nil || info.IsDir() {
		writeError(w, http.StatusBadRequest, "video file not found")
		return
	}
	if !strings.EqualFold(filepath.Ext(req.VideoPath), ".mp4") {
		writeError(w, http.StatusBadRequest, "only MP4 files are supported")
		return
	}

	lang := req.Lang
	if lang == "" {
		lang = h.defaultLang
	}

	j, err := h.jobs.Start(req.VideoPath, lang)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"job_id": j.ID})
}

// Progress streams a job's progress as server-sent events: any number of
// "progress" events, then exactly one "complete" or "error" event.
func (h *Handlers) Progress(w http.ResponseWriter, r *http.Request) {
	j, err := h.jobs.Get(chi.URLParam(r, "jobID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	clientGone := r.Context().Done()
	for {
		select {
		case p := <-j.Updates():
			h.writeEvent(w, "progress", p)
			flusher.Flush()

		case <-j.Done():
			h.drain(w, j)
			h.writeOutcome(w, j)
			flusher.Flush()
			return

		case <-clientGone:
			return
		}
	}
}

func (h *Handlers) drain(w http.ResponseWriter, j *job.Job) {
	for {
		select {
		case p := <-j.Updates():
			h.writeEvent(w, "progress", p)
		default:
			return
		}
	}
}

func (h *Handlers) writeOutcome(w http.ResponseWriter, j *job.Job) {
	results, err := j.Outcome()
	if err != nil {
		fmt.Fprintf(w, "event: error\ndata: %s\n\n", strings.ReplaceAll(err.Error(), "\n", " "))
		return
	}
	if results == nil {
		results = []dialogue.Result{}
	}
	h.writeEvent(w, "complete", results)
}

func (h *Handlers) writeEvent(w http.ResponseWriter, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.log.Error("failed to marshal event", zap.String("event", event), zap.Error(err))
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}

// Crop serves one dialogue box crop of a job as PNG.
func (h *Handlers) Crop(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if _, err := h.jobs.Get(jobID); err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	path, err := h.jobs.CropPath(jobID, chi.URLParam(r, "filename"))
	if err != nil {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, path)
}

// DeleteCrops cancels a job and removes it with its crops.
func (h *Handlers) DeleteCrops(w http.ResponseWriter, r *http.Request) {
	if err := h.jobs.Delete(chi.URLParam(r, "jobID")); err != nil {
		if errors.Is(err, job.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
