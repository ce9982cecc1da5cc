// Package pipeline runs the per-photo face processing cycle: detection,
// identity matching, and committed store writes, one face at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/kozaktomas/photo-faces/internal/artifact"
	"github.com/kozaktomas/photo-faces/internal/constants"
	"github.com/kozaktomas/photo-faces/internal/detect"
	"github.com/kozaktomas/photo-faces/internal/identity"
	"github.com/kozaktomas/photo-faces/internal/photometa"
	"github.com/kozaktomas/photo-faces/internal/thumbnail"
)

// FaceDetector produces the ordered face list for a photo.
type FaceDetector interface {
	DetectFaces(ctx context.Context, imageData []byte) ([]detect.Detection, error)
}

// Processor wires the face-identity engine together for one photo at a time.
type Processor struct {
	detector   FaceDetector
	store      identity.Store
	matcher    *identity.Matcher
	thumbnails *thumbnail.Extractor
	artifacts  artifact.Store
	sink       photometa.Sink
}

// NewProcessor creates a processor. artifacts may be nil to disable
// thumbnail generation.
func NewProcessor(
	detector FaceDetector,
	store identity.Store,
	matcher *identity.Matcher,
	thumbnails *thumbnail.Extractor,
	artifacts artifact.Store,
	sink photometa.Sink,
) *Processor {
	return &Processor{
		detector:   detector,
		store:      store,
		matcher:    matcher,
		thumbnails: thumbnails,
		artifacts:  artifacts,
		sink:       sink,
	}
}

// ProcessPhoto runs the full per-photo cycle and reports the result to the
// photo metadata sink.
//
// Faces are processed strictly one at a time, largest first: each face's
// match, allocate-if-new, and store write complete (including the store
// round trip) before the next face's comparison begins. Without that
// ordering, two faces of the same photo matched against one stale snapshot
// of the store could both allocate "new" identities or collapse onto the
// same one. Do not parallelize this loop.
//
// A store failure on one face loses only that face's decision: the loop
// logs and continues, and the photo stays reprocessable. There is no atomic
// all-or-nothing commit per photo.
func (p *Processor) ProcessPhoto(ctx context.Context, photoUID string, imageData []byte, namespace string) (*identity.PhotoResult, error) {
	detections, err := p.detector.DetectFaces(ctx, imageData)
	if err != nil {
		return nil, fmt.Errorf("detect faces in %s: %w", photoUID, err)
	}

	result := &identity.PhotoResult{}

	for i, det := range detections {
		id, isNew, ok := p.commitFace(ctx, photoUID, i, det, namespace)
		if !ok {
			continue
		}
		result.FaceIDs = append(result.FaceIDs, id)
		result.Boxes = append(result.Boxes, det.Box)

		if isNew {
			p.attachThumbnail(ctx, namespace, id, imageData, det.Box)
		}
	}

	// Detections arrive sorted by box area descending, so the first
	// committed face is the photo's main face.
	if len(result.FaceIDs) > 0 {
		result.MainFaceID = result.FaceIDs[0]
	} else {
		result.MainFaceID = constants.UnknownIdentityID
	}

	if err := p.sink.SavePhotoFaces(ctx, photoUID, result); err != nil {
		// The identity store already holds every committed decision; a
		// sink failure is recovered by reprocessing the photo.
		log.Printf("photo %s: failed to save face metadata: %v", photoUID, err)
	}

	return result, nil
}

// commitFace matches one embedding and persists the decision. It returns the
// assigned identity ID, whether the identity was newly introduced, and
// whether the face made it into the photo result.
func (p *Processor) commitFace(ctx context.Context, photoUID string, index int, det detect.Detection, namespace string) (string, bool, bool) {
	decision, err := p.matcher.Match(ctx, det.Embedding, namespace)
	if errors.Is(err, identity.ErrMalformedEmbedding) {
		// Deterministic pseudo-identity for embeddings that cannot be
		// matched. The malformed vector is not persisted as a sample.
		id := identity.FallbackID(det.Embedding, namespace)
		log.Printf("photo %s face %d: malformed embedding, assigned fallback %s", photoUID, index, id)
		return id, false, true
	}
	if err != nil {
		log.Printf("photo %s face %d: match failed: %v", photoUID, index, err)
		return "", false, false
	}

	if !decision.IsNew {
		if err := p.store.AppendSample(ctx, namespace, decision.IdentityID, det.Embedding, det.Box); err != nil {
			log.Printf("photo %s face %d: append sample to %s failed: %v", photoUID, index, decision.IdentityID, err)
			return "", false, false
		}
		return decision.IdentityID, false, true
	}

	existing, err := p.store.ListIdentities(ctx, namespace)
	if err != nil {
		log.Printf("photo %s face %d: list identities failed: %v", photoUID, index, err)
		return "", false, false
	}
	ids := make([]string, len(existing))
	for i := range existing {
		ids[i] = existing[i].ID
	}

	id := identity.NextID(ids, namespace)
	if err := p.store.CreateIdentity(ctx, namespace, id, det.Embedding, det.Box); err != nil {
		log.Printf("photo %s face %d: create identity %s failed: %v", photoUID, index, id, err)
		return "", false, false
	}
	return id, true, true
}

// attachThumbnail crops a preview for a newly-introduced identity and
// records the artifact reference. Failures are logged, never fatal:
// re-matched identities are never re-thumbnailed, so the identity simply
// stays without a preview until the photo is reprocessed.
func (p *Processor) attachThumbnail(ctx context.Context, namespace, id string, imageData []byte, box identity.BoundingBox) {
	if p.thumbnails == nil || p.artifacts == nil {
		return
	}

	data, err := p.thumbnails.Extract(imageData, box)
	if err != nil {
		log.Printf("identity %s: thumbnail extraction failed: %v", id, err)
		return
	}

	ref, err := p.artifacts.Put(ctx, data)
	if err != nil {
		log.Printf("identity %s: thumbnail upload failed: %v", id, err)
		return
	}

	if err := p.store.SetThumbnail(ctx, namespace, id, ref); err != nil {
		log.Printf("identity %s: recording thumbnail ref failed: %v", id, err)
	}
}
