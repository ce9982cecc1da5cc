// Package store provides identity store implementations and the ANN index
// used by the similar-identities API.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/kozaktomas/photo-faces/internal/identity"
)

// record is the in-memory representation of one identity.
type record struct {
	id           string
	displayName  string
	samples      [][]float32
	boxes        []identity.BoundingBox
	thumbnailRef string
}

// Memory is an in-memory, namespace-scoped identity store. It backs tests
// and the no-database development mode.
type Memory struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]*record
	order      map[string][]string // per-namespace insertion order

	// Error injection for tests
	ListError   error
	CreateError error
	AppendError error
	ThumbError  error
}

// NewMemory creates an empty in-memory identity store.
func NewMemory() *Memory {
	return &Memory{
		namespaces: make(map[string]map[string]*record),
		order:      make(map[string][]string),
	}
}

// ListIdentities returns all identities in the namespace in insertion order.
func (m *Memory) ListIdentities(ctx context.Context, namespace string) ([]identity.Identity, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []identity.Identity
	for _, id := range m.order[namespace] {
		rec := m.namespaces[namespace][id]
		samples := make([][]float32, len(rec.samples))
		copy(samples, rec.samples)
		out = append(out, identity.Identity{
			ID:           rec.id,
			DisplayName:  rec.displayName,
			Samples:      samples,
			ThumbnailRef: rec.thumbnailRef,
		})
	}
	return out, nil
}

// CreateIdentity creates a new identity with its first sample.
func (m *Memory) CreateIdentity(ctx context.Context, namespace, id string, embedding []float32, box identity.BoundingBox) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	ns := m.namespaces[namespace]
	if ns == nil {
		ns = make(map[string]*record)
		m.namespaces[namespace] = ns
	}
	if _, exists := ns[id]; exists {
		return fmt.Errorf("identity %q already exists in namespace %q", id, namespace)
	}

	ns[id] = &record{
		id:      id,
		samples: [][]float32{cloneVector(embedding)},
		boxes:   []identity.BoundingBox{box},
	}
	m.order[namespace] = append(m.order[namespace], id)
	return nil
}

// AppendSample appends a sample to an existing identity.
func (m *Memory) AppendSample(ctx context.Context, namespace, id string, embedding []float32, box identity.BoundingBox) error {
	if m.AppendError != nil {
		return m.AppendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.namespaces[namespace][id]
	if !ok {
		return fmt.Errorf("identity %q not found in namespace %q", id, namespace)
	}
	rec.samples = append(rec.samples, cloneVector(embedding))
	rec.boxes = append(rec.boxes, box)
	return nil
}

// SetThumbnail records the thumbnail artifact reference for an identity.
func (m *Memory) SetThumbnail(ctx context.Context, namespace, id, ref string) error {
	if m.ThumbError != nil {
		return m.ThumbError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.namespaces[namespace][id]
	if !ok {
		return fmt.Errorf("identity %q not found in namespace %q", id, namespace)
	}
	rec.thumbnailRef = ref
	return nil
}

// SetDisplayName records the human-assigned name for an identity.
func (m *Memory) SetDisplayName(ctx context.Context, namespace, id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.namespaces[namespace][id]
	if !ok {
		return fmt.Errorf("identity %q not found in namespace %q", id, namespace)
	}
	rec.displayName = name
	return nil
}

// Count returns the number of identities in the namespace.
func (m *Memory) Count(namespace string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.namespaces[namespace])
}

func cloneVector(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
