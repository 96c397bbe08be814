package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studyquiz/internal/models"
	"studyquiz/internal/services"
	"studyquiz/internal/session"
	"studyquiz/internal/worker"
)

// JobQueue accepts uploads for background generation.
type JobQueue interface {
	Submit(sess *session.Session, filename string, data []byte) (models.GenerationJob, error)
	Job(id, sessionID uuid.UUID) (models.GenerationJob, bool)
}

type ContentHandler struct {
	jobs           JobQueue
	maxUploadBytes int64
}

func NewContentHandler(jobs JobQueue, maxUploadBytes int64) *ContentHandler {
	return &ContentHandler{jobs: jobs, maxUploadBytes: maxUploadBytes}
}

func (h *ContentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	if r.ContentLength > h.maxUploadBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", "File exceeds the upload size limit", r))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", "File exceeds the upload size limit", r))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "No file provided", r))
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if !services.IsAcceptedExtension(filename) {
		writeJSON(w, http.StatusUnsupportedMediaType, errorResp(services.CodeUnsupportedFormat, "File type not supported", r))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Failed to read uploaded file", r))
		return
	}

	job, err := h.jobs.Submit(sess, filename, data)
	switch {
	case errors.Is(err, session.ErrGenerationRunning):
		writeJSON(w, http.StatusConflict, errorResp("GENERATION_RUNNING", "Questions are already being generated", r))
		return
	case errors.Is(err, worker.ErrQueueFull), errors.Is(err, worker.ErrPoolClosed):
		writeJSON(w, http.StatusServiceUnavailable, errorResp("QUEUE_FULL", "Server is busy, please try again shortly", r))
		return
	case err != nil:
		log.Printf("Failed to queue generation for %s: %v", filename, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to queue generation", r))
		return
	}

	log.Printf("Queued job %s for session %s (%s, %d bytes)", job.ID, sess.ID, filename, len(data))

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id":   job.ID,
		"filename": filename,
		"status":   job.Status,
	})
}

func (h *ContentHandler) SupportedFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"formats": services.SupportedFormats,
	})
}

func (h *ContentHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid job ID", r))
		return
	}

	job, found := h.jobs.Job(id, sess.ID)
	if !found {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Job not found", r))
		return
	}

	writeJSON(w, http.StatusOK, job)
}
