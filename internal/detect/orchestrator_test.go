package detect

import (
	"context"
	"errors"
	"testing"

	"github.com/kozaktomas/photo-faces/internal/identity"
)

// stubDetector returns canned detections or an error.
type stubDetector struct {
	detections []Detection
	err        error
	calls      int
}

func (s *stubDetector) DetectFaces(ctx context.Context, imageData []byte) ([]Detection, error) {
	s.calls++
	return s.detections, s.err
}

func boxDetection(w, h int) Detection {
	return Detection{Box: identity.BoundingBox{Width: w, Height: h}, Score: 0.9}
}

func readyOrchestrator(t *testing.T, fast, accurate Detector) *Orchestrator {
	t.Helper()
	o := NewOrchestratorWith(fast, accurate, nil)
	if err := o.Init(context.Background()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return o
}

func TestDetectFaces_FastTierWins(t *testing.T) {
	fast := &stubDetector{detections: []Detection{boxDetection(10, 10)}}
	accurate := &stubDetector{detections: []Detection{boxDetection(99, 99)}}

	o := readyOrchestrator(t, fast, accurate)
	detections, err := o.DetectFaces(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("DetectFaces failed: %v", err)
	}

	if len(detections) != 1 || detections[0].Box.Width != 10 {
		t.Errorf("expected fast tier result, got %+v", detections)
	}
	if accurate.calls != 0 {
		t.Error("accurate tier must not run when the fast tier finds faces")
	}
}

func TestDetectFaces_FallbackToAccurateTier(t *testing.T) {
	fast := &stubDetector{}
	accurate := &stubDetector{detections: []Detection{boxDetection(20, 20)}}

	o := readyOrchestrator(t, fast, accurate)
	detections, err := o.DetectFaces(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("DetectFaces failed: %v", err)
	}

	if len(detections) != 1 || detections[0].Box.Width != 20 {
		t.Errorf("expected accurate tier result, got %+v", detections)
	}
	if fast.calls != 1 || accurate.calls != 1 {
		t.Errorf("expected both tiers tried once, got fast=%d accurate=%d", fast.calls, accurate.calls)
	}
}

func TestDetectFaces_BothTiersEmpty(t *testing.T) {
	o := readyOrchestrator(t, &stubDetector{}, &stubDetector{})

	detections, err := o.DetectFaces(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("no faces is not an error, got %v", err)
	}
	if len(detections) != 0 {
		t.Errorf("expected empty result, got %+v", detections)
	}
}

func TestDetectFaces_SortedByAreaDescending(t *testing.T) {
	fast := &stubDetector{detections: []Detection{
		boxDetection(10, 10), // area 100
		boxDetection(20, 20), // area 400
		boxDetection(15, 15), // area 225
	}}

	o := readyOrchestrator(t, fast, &stubDetector{})
	detections, err := o.DetectFaces(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("DetectFaces failed: %v", err)
	}

	areas := []int{detections[0].Box.Area(), detections[1].Box.Area(), detections[2].Box.Area()}
	if areas[0] != 400 || areas[1] != 225 || areas[2] != 100 {
		t.Errorf("expected areas [400 225 100], got %v", areas)
	}
}

func TestDetectFaces_RequiresInit(t *testing.T) {
	o := NewOrchestratorWith(&stubDetector{}, &stubDetector{}, nil)

	_, err := o.DetectFaces(context.Background(), []byte("img"))
	if !errors.Is(err, ErrNotReady) {
		t.Errorf("expected ErrNotReady before Init, got %v", err)
	}
}

func TestInit_HealthFailure(t *testing.T) {
	healthErr := errors.New("detector down")
	o := NewOrchestratorWith(&stubDetector{}, &stubDetector{}, func(ctx context.Context) error {
		return healthErr
	})

	if err := o.Init(context.Background()); !errors.Is(err, healthErr) {
		t.Errorf("expected health error, got %v", err)
	}
	if o.Ready() {
		t.Error("orchestrator must not be ready after failed Init")
	}
}

func TestInit_Idempotent(t *testing.T) {
	calls := 0
	o := NewOrchestratorWith(&stubDetector{}, &stubDetector{}, func(ctx context.Context) error {
		calls++
		return nil
	})

	for i := 0; i < 3; i++ {
		if err := o.Init(context.Background()); err != nil {
			t.Fatalf("Init failed: %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("health check ran %d times, want 1", calls)
	}
}

func TestDetectFaces_FastTierError(t *testing.T) {
	fast := &stubDetector{err: errors.New("timeout")}
	accurate := &stubDetector{detections: []Detection{boxDetection(5, 5)}}

	o := readyOrchestrator(t, fast, accurate)
	if _, err := o.DetectFaces(context.Background(), []byte("img")); err == nil {
		t.Error("expected fast tier error to propagate")
	}
}
