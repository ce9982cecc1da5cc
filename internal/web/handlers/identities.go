package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/photo-faces/internal/artifact"
	"github.com/kozaktomas/photo-faces/internal/identity"
)

// IdentitiesHandler serves the identity CRUD surface.
type IdentitiesHandler struct {
	store     identity.Store
	artifacts artifact.Store
}

// NewIdentitiesHandler creates a new identities handler.
func NewIdentitiesHandler(store identity.Store, artifacts artifact.Store) *IdentitiesHandler {
	return &IdentitiesHandler{store: store, artifacts: artifacts}
}

// identitySummary is the list representation of an identity. Raw embeddings
// never leave the API.
type identitySummary struct {
	ID           string `json:"id"`
	DisplayName  string `json:"display_name,omitempty"`
	SampleCount  int    `json:"sample_count"`
	ThumbnailRef string `json:"thumbnail_ref,omitempty"`
}

// List returns all identities in a namespace. The optional name query
// filters by display name, diacritic- and case-insensitively.
func (h *IdentitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	namespace := r.URL.Query().Get("event_id")
	nameFilter := identity.NormalizeDisplayName(r.URL.Query().Get("name"))

	identities, err := h.store.ListIdentities(r.Context(), namespace)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list identities")
		return
	}

	summaries := make([]identitySummary, 0, len(identities))
	for _, id := range identities {
		if nameFilter != "" && identity.NormalizeDisplayName(id.DisplayName) != nameFilter {
			continue
		}
		summaries = append(summaries, identitySummary{
			ID:           id.ID,
			DisplayName:  id.DisplayName,
			SampleCount:  len(id.Samples),
			ThumbnailRef: id.ThumbnailRef,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"identities": summaries,
		"count":      len(summaries),
	})
}

// Rename assigns a display name to an identity.
func (h *IdentitiesHandler) Rename(w http.ResponseWriter, r *http.Request) {
	identityID := chi.URLParam(r, "id")

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	namespace := r.URL.Query().Get("event_id")
	if err := h.store.SetDisplayName(r.Context(), namespace, identityID, req.Name); err != nil {
		if strings.Contains(err.Error(), "not found") {
			respondError(w, http.StatusNotFound, "identity not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to rename identity")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"id":   identityID,
		"name": req.Name,
	})
}

// Thumbnail serves the stored face thumbnail of an identity.
func (h *IdentitiesHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	identityID := chi.URLParam(r, "id")
	namespace := r.URL.Query().Get("event_id")

	identities, err := h.store.ListIdentities(r.Context(), namespace)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list identities")
		return
	}

	var ref string
	for _, id := range identities {
		if id.ID == identityID {
			ref = id.ThumbnailRef
			break
		}
	}
	if ref == "" {
		respondError(w, http.StatusNotFound, "no thumbnail for identity")
		return
	}

	data, err := h.artifacts.Get(r.Context(), ref)
	if err != nil {
		respondError(w, http.StatusNotFound, "thumbnail artifact missing")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
