package detect

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/kozaktomas/photo-faces/internal/config"
	"github.com/kozaktomas/photo-faces/internal/constants"
)

// ErrNotReady is returned when detection is attempted before Init succeeded.
var ErrNotReady = errors.New("detection orchestrator not initialized")

// Orchestrator applies the two-tier detection strategy: the fast,
// lower-recall detector first, then the slower, higher-recall detector when
// the fast tier finds nothing. Results are ordered by bounding-box area
// descending, so the first face is the photo's main face.
//
// Readiness is explicit lifecycle state: Init runs once, DetectFaces refuses
// to run before it. There is no implicit re-initialization.
type Orchestrator struct {
	fast     Detector
	accurate Detector
	health   func(ctx context.Context) error

	mu          sync.Mutex
	initialized bool
}

// NewOrchestrator builds an orchestrator from the detector service config.
func NewOrchestrator(cfg *config.DetectorConfig) *Orchestrator {
	fast := NewClient(cfg.URL, cfg.FastEndpoint, constants.FastMinConfidence)
	accurate := NewClient(cfg.URL, cfg.AccurateEndpoint, constants.AccurateMinConfidence)
	return &Orchestrator{
		fast:     fast,
		accurate: accurate,
		health:   fast.Healthy,
	}
}

// NewOrchestratorWith builds an orchestrator over explicit detectors.
// A nil health func makes Init succeed unconditionally.
func NewOrchestratorWith(fast, accurate Detector, health func(ctx context.Context) error) *Orchestrator {
	return &Orchestrator{fast: fast, accurate: accurate, health: health}
}

// Init checks the detection service once and marks the orchestrator ready.
// Calling Init again after success is a no-op.
func (o *Orchestrator) Init(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.initialized {
		return nil
	}
	if o.health != nil {
		if err := o.health(ctx); err != nil {
			return fmt.Errorf("detector health check: %w", err)
		}
	}
	o.initialized = true
	return nil
}

// Ready reports whether Init has completed successfully.
func (o *Orchestrator) Ready() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.initialized
}

// DetectFaces produces the ordered face list for a photo. An empty result is
// not an error: it means neither tier found a face and the caller marks the
// photo with the unknown sentinel.
func (o *Orchestrator) DetectFaces(ctx context.Context, imageData []byte) ([]Detection, error) {
	if !o.Ready() {
		return nil, ErrNotReady
	}

	detections, err := o.fast.DetectFaces(ctx, imageData)
	if err != nil {
		return nil, fmt.Errorf("fast detector: %w", err)
	}

	if len(detections) == 0 {
		detections, err = o.accurate.DetectFaces(ctx, imageData)
		if err != nil {
			return nil, fmt.Errorf("accurate detector: %w", err)
		}
	}

	sortByAreaDesc(detections)
	return detections, nil
}

// sortByAreaDesc orders detections largest bounding box first. The sort is
// stable so equal-area faces keep detector order.
func sortByAreaDesc(detections []Detection) {
	sort.SliceStable(detections, func(i, j int) bool {
		return detections[i].Box.Area() > detections[j].Box.Area()
	})
}
