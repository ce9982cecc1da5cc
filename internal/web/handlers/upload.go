package handlers

import (
	"context"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/kozaktomas/photo-faces/internal/constants"
	"github.com/kozaktomas/photo-faces/internal/identity"
)

// PhotoProcessor runs the full per-photo face cycle. Implemented by
// pipeline.Processor; an interface here so handlers can be tested without
// a live detector.
type PhotoProcessor interface {
	ProcessPhoto(ctx context.Context, photoUID string, imageData []byte, namespace string) (*identity.PhotoResult, error)
}

// UploadHandler handles photo upload and processing.
type UploadHandler struct {
	processor PhotoProcessor
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(processor PhotoProcessor) *UploadHandler {
	return &UploadHandler{processor: processor}
}

// Upload accepts a multipart photo, runs face processing, and returns the
// per-photo result. Optional form fields: event_id (namespace) and photo_uid.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		respondError(w, http.StatusBadRequest, "photo file is required")
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read photo")
		return
	}

	namespace := r.FormValue("event_id")
	photoUID := r.FormValue("photo_uid")
	if photoUID == "" {
		photoUID = uuid.NewString()
	}

	result, err := h.processor.ProcessPhoto(r.Context(), photoUID, imageData, namespace)
	if err != nil {
		log.Printf("upload %s: processing failed: %v", sanitizeForLog(photoUID), err)
		respondError(w, http.StatusBadGateway, "face processing failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"photo_uid":    photoUID,
		"face_ids":     result.FaceIDs,
		"main_face_id": result.MainFaceID,
		"boxes":        result.Boxes,
	})
}
