package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/photo-faces/internal/constants"
	"github.com/kozaktomas/photo-faces/internal/identity"
	"github.com/kozaktomas/photo-faces/internal/store"
)

// SimilarHandler serves the similar-identities lookup over the ANN index.
type SimilarHandler struct {
	store identity.Store
	index *store.RepresentativeIndex
}

// NewSimilarHandler creates a new similar-identities handler.
func NewSimilarHandler(st identity.Store, index *store.RepresentativeIndex) *SimilarHandler {
	return &SimilarHandler{store: st, index: index}
}

// Similar returns the identities whose representative embeddings are nearest
// to the given identity's representative. The index is rebuilt per request
// from the live store; it serves reads only and never feeds matching.
func (h *SimilarHandler) Similar(w http.ResponseWriter, r *http.Request) {
	identityID := chi.URLParam(r, "id")
	namespace := r.URL.Query().Get("event_id")

	limit := constants.DefaultSimilarLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	identities, err := h.store.ListIdentities(r.Context(), namespace)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list identities")
		return
	}

	var rep []float32
	for _, id := range identities {
		if id.ID == identityID {
			rep = identity.Representative(id.Samples)
			break
		}
	}
	if rep == nil {
		respondError(w, http.StatusNotFound, "identity not found")
		return
	}

	if err := h.index.Rebuild(r.Context(), h.store, namespace); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to build similarity index")
		return
	}

	neighbors, err := h.index.Search(rep, limit, identityID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "similarity search failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"identity_id": identityID,
		"neighbors":   neighbors,
	})
}
