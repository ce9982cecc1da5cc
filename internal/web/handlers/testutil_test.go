package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/photo-faces/internal/identity"
	"github.com/kozaktomas/photo-faces/internal/store"
)

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}

// stubProcessor is a PhotoProcessor that records calls and returns a canned
// result per call.
type stubProcessor struct {
	mu      sync.Mutex
	calls   []string
	result  *identity.PhotoResult
	err     error
	onCall  func(photoUID string)
	lastNS  string
	lastImg []byte
}

func (s *stubProcessor) ProcessPhoto(ctx context.Context, photoUID string, imageData []byte, namespace string) (*identity.PhotoResult, error) {
	s.mu.Lock()
	s.calls = append(s.calls, photoUID)
	s.lastNS = namespace
	s.lastImg = imageData
	onCall := s.onCall
	s.mu.Unlock()

	if onCall != nil {
		onCall(photoUID)
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &identity.PhotoResult{MainFaceID: "unknown"}, nil
}

func (s *stubProcessor) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// seededStore creates a memory store with a few named identities.
func seededStore(t *testing.T) *store.Memory {
	t.Helper()
	ctx := context.Background()
	m := store.NewMemory()

	emb := func(x float32) []float32 {
		e := make([]float32, 128)
		e[0] = x
		return e
	}

	if err := m.CreateIdentity(ctx, "", "person_1", emb(0.1), identity.BoundingBox{Width: 10, Height: 10}); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	if err := m.CreateIdentity(ctx, "", "person_2", emb(0.8), identity.BoundingBox{Width: 20, Height: 20}); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	if err := m.AppendSample(ctx, "", "person_2", emb(0.9), identity.BoundingBox{Width: 20, Height: 20}); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	if err := m.SetDisplayName(ctx, "", "person_1", "Jan Novák"); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return m
}
