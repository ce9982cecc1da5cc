// Package photometa reports per-photo face results to the photo
// application's own database. The photo record (and its schema) belongs to
// the surrounding application; this package only writes the face association.
package photometa

import (
	"context"
	"log"

	"github.com/kozaktomas/photo-faces/internal/identity"
)

// Sink persists {faceIds, mainFaceId, boxes} against a photo record after
// all faces of the photo have been processed.
type Sink interface {
	SavePhotoFaces(ctx context.Context, photoUID string, result *identity.PhotoResult) error
}

// LogSink is the sink used when no photo database is configured. It logs the
// result instead of dropping it silently.
type LogSink struct{}

// SavePhotoFaces logs the photo-face association.
func (LogSink) SavePhotoFaces(ctx context.Context, photoUID string, result *identity.PhotoResult) error {
	log.Printf("photo %s: faces=%v main_face=%s (no photo database configured)",
		photoUID, result.FaceIDs, result.MainFaceID)
	return nil
}
