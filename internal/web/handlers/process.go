package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kozaktomas/photo-faces/internal/constants"
)

// ProcessHandler runs async batch reprocess jobs over the photo library.
type ProcessHandler struct {
	processor  PhotoProcessor
	jobManager *JobManager
	libraryDir string
}

// NewProcessHandler creates a new process handler.
func NewProcessHandler(processor PhotoProcessor, jobManager *JobManager, libraryDir string) *ProcessHandler {
	return &ProcessHandler{
		processor:  processor,
		jobManager: jobManager,
		libraryDir: libraryDir,
	}
}

// processRequest is the JSON body of a reprocess request.
type processRequest struct {
	EventID    string `json:"event_id"`
	CooldownMs int    `json:"cooldown_ms"`
}

// isPhotoFile reports whether a filename looks like a processable photo.
func isPhotoFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif":
		return true
	}
	return false
}

// listPhotoFiles returns the photo filenames in the library directory.
func listPhotoFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read library directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && isPhotoFile(e.Name()) {
			files = append(files, e.Name())
		}
	}
	return files, nil
}

// Start launches an async reprocess of the photo library. Photos are
// processed strictly one at a time with a cooldown between them; faces of
// different photos are never interleaved.
func (h *ProcessHandler) Start(w http.ResponseWriter, r *http.Request) {
	if h.libraryDir == "" {
		respondError(w, http.StatusBadRequest, "no photo library configured")
		return
	}

	var req processRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			respondError(w, http.StatusBadRequest, errInvalidRequestBody)
			return
		}
	}

	cooldown := time.Duration(req.CooldownMs) * time.Millisecond
	if req.CooldownMs <= 0 {
		cooldown = constants.DefaultProcessCooldown * time.Millisecond
	}

	files, err := listPhotoFiles(h.libraryDir)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read photo library")
		return
	}
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "photo library is empty")
		return
	}

	job := h.jobManager.CreateJob(uuid.NewString(), req.EventID, len(files))

	ctx, cancel := context.WithCancel(context.Background())
	job.SetCancel(cancel)
	go h.runJob(ctx, job, files, cooldown)

	respondJSON(w, http.StatusAccepted, map[string]any{
		"job_id":       job.ID,
		"total_photos": len(files),
	})
}

// runJob processes the library sequentially and reports progress events.
func (h *ProcessHandler) runJob(ctx context.Context, job *ProcessJob, files []string, cooldown time.Duration) {
	job.SetStatus(JobStatusRunning)
	job.SendEvent(JobEvent{Type: "started", Message: fmt.Sprintf("Processing %d photos", len(files))})

	result := &ProcessJobResult{}

	for i, name := range files {
		select {
		case <-ctx.Done():
			h.finishJob(job, JobStatusCancelled, result)
			return
		default:
		}

		photoUID := strings.TrimSuffix(name, filepath.Ext(name))
		imageData, err := os.ReadFile(filepath.Join(h.libraryDir, name))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, err))
		} else {
			photoResult, err := h.processor.ProcessPhoto(ctx, photoUID, imageData, job.Namespace)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, err))
			} else {
				result.ProcessedCount++
				result.FaceCount += len(photoResult.FaceIDs)
			}
		}

		job.mu.Lock()
		job.ProcessedPhotos = i + 1
		job.mu.Unlock()

		job.SendEvent(JobEvent{
			Type: "progress",
			Data: map[string]int{"processed": i + 1, "total": len(files)},
		})

		if i < len(files)-1 && cooldown > 0 {
			select {
			case <-ctx.Done():
				h.finishJob(job, JobStatusCancelled, result)
				return
			case <-time.After(cooldown):
			}
		}
	}

	h.finishJob(job, JobStatusCompleted, result)
}

// finishJob records the terminal state and result of a job.
func (h *ProcessHandler) finishJob(job *ProcessJob, status JobStatus, result *ProcessJobResult) {
	now := time.Now()
	job.mu.Lock()
	job.Status = status
	job.CompletedAt = &now
	job.Result = result
	job.mu.Unlock()

	job.SendEvent(JobEvent{Type: string(status), Data: result})
	log.Printf("reprocess job %s finished: %s (%d photos, %d faces, %d errors)",
		job.ID, status, result.ProcessedCount, result.FaceCount, len(result.Errors))
}

// Status returns the current state of a job.
func (h *ProcessHandler) Status(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	job := h.jobManager.GetJob(jobID)
	if job == nil {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}

	job.mu.RLock()
	defer job.mu.RUnlock()
	respondJSON(w, http.StatusOK, job)
}

// Events streams job progress via SSE.
func (h *ProcessHandler) Events(w http.ResponseWriter, r *http.Request) {
	streamSSEEvents(w, r, func(id string) SSEJob {
		if job := h.jobManager.GetJob(id); job != nil {
			return job
		}
		return nil
	}, func(job SSEJob) any {
		return map[string]any{"status": job.GetStatus()}
	})
}

// Cancel cancels a running job.
func (h *ProcessHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	job := h.jobManager.GetJob(jobID)
	if job == nil {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}

	job.Cancel()
	respondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
