// Package identity implements the face-identity clustering core: deciding
// which face embeddings belong to previously-seen identities, which represent
// new identities, and keeping each identity's representative embedding fresh.
package identity

import (
	"context"
	"errors"
)

// ErrMalformedEmbedding is returned when an embedding has the wrong dimension
// or contains non-finite values.
var ErrMalformedEmbedding = errors.New("malformed embedding")

// BoundingBox is a face location in source-image pixel coordinates.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns the pixel area of the box.
func (b BoundingBox) Area() int {
	return b.Width * b.Height
}

// Identity is a cluster of embeddings believed to belong to one person.
// Samples are append-only; insertion order is chronological.
type Identity struct {
	ID           string
	DisplayName  string
	Samples      [][]float32
	ThumbnailRef string
}

// MatchDecision is the ephemeral per-embedding result of matching.
// Only its effect (an appended sample, possibly a new identity) is persisted.
type MatchDecision struct {
	IdentityID string
	Distance   float64
	IsNew      bool
}

// PhotoResult is the per-photo outcome reported to the photo metadata sink
// after all faces have been processed.
type PhotoResult struct {
	FaceIDs    []string      `json:"face_ids"`
	MainFaceID string        `json:"main_face_id"`
	Boxes      []BoundingBox `json:"boxes"`
}

// Store is the persistent identity store, scoped by an optional namespace
// (event ID). Identifiers are unique within a namespace only; identities in
// different namespaces never compare.
type Store interface {
	// ListIdentities returns all identities in the namespace, including
	// their full sample history.
	ListIdentities(ctx context.Context, namespace string) ([]Identity, error)

	// CreateIdentity creates a new identity with its first sample.
	CreateIdentity(ctx context.Context, namespace, id string, embedding []float32, box BoundingBox) error

	// AppendSample appends a sample to an existing identity. It must not
	// silently drop the write: a missing identity is an error.
	AppendSample(ctx context.Context, namespace, id string, embedding []float32, box BoundingBox) error

	// SetThumbnail records the thumbnail artifact reference for an identity.
	SetThumbnail(ctx context.Context, namespace, id, ref string) error

	// SetDisplayName records the human-assigned name for an identity.
	SetDisplayName(ctx context.Context, namespace, id, name string) error
}
