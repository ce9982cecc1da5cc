package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/coder/hnsw"
	"github.com/kozaktomas/photo-faces/internal/identity"
)

// HNSWMaxNeighbors is the M parameter of the HNSW graph.
const HNSWMaxNeighbors = 16

// RepresentativeIndex is an in-memory HNSW graph over per-identity
// representative embeddings, keyed by identity ID. It serves the read-only
// similar-identities API; the matcher never consults it, since the matcher's
// exact linear scan is the correctness contract.
type RepresentativeIndex struct {
	mu         sync.RWMutex
	graph      *hnsw.Graph[string]
	idToSample map[string]int // identity ID -> sample count at build time
}

// NewRepresentativeIndex creates an empty index.
func NewRepresentativeIndex() *RepresentativeIndex {
	return &RepresentativeIndex{
		idToSample: make(map[string]int),
	}
}

// Rebuild replaces the index contents with the current representatives of
// every identity in the namespace.
func (x *RepresentativeIndex) Rebuild(ctx context.Context, store identity.Store, namespace string) error {
	identities, err := store.ListIdentities(ctx, namespace)
	if err != nil {
		return fmt.Errorf("list identities: %w", err)
	}

	g := hnsw.NewGraph[string]()
	g.M = HNSWMaxNeighbors
	g.Ml = 1.0 / float64(HNSWMaxNeighbors) // Standard HNSW formula
	g.Distance = hnsw.EuclideanDistance

	idToSample := make(map[string]int, len(identities))
	for i := range identities {
		rep := identity.Representative(identities[i].Samples)
		if rep == nil {
			continue
		}
		g.Add(hnsw.MakeNode(identities[i].ID, rep))
		idToSample[identities[i].ID] = len(identities[i].Samples)
	}

	x.mu.Lock()
	x.graph = g
	x.idToSample = idToSample
	x.mu.Unlock()
	return nil
}

// Neighbor is one similar-identity result.
type Neighbor struct {
	IdentityID  string  `json:"identity_id"`
	Distance    float64 `json:"distance"`
	SampleCount int     `json:"sample_count"`
}

// Search returns up to k identities whose representatives are nearest to the
// query embedding, excluding the identity named by exclude.
func (x *RepresentativeIndex) Search(query []float32, k int, exclude string) ([]Neighbor, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.graph == nil {
		return nil, errors.New("index not initialized")
	}

	// Ask for one extra node so excluding the query identity still yields k.
	nodes := x.graph.Search(query, k+1)
	neighbors := make([]Neighbor, 0, k)
	for _, n := range nodes {
		if n.Key == exclude {
			continue
		}
		neighbors = append(neighbors, Neighbor{
			IdentityID:  n.Key,
			Distance:    identity.EuclideanDistance(query, n.Value),
			SampleCount: x.idToSample[n.Key],
		})
		if len(neighbors) >= k {
			break
		}
	}
	return neighbors, nil
}

// Len returns the number of indexed identities.
func (x *RepresentativeIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.idToSample)
}
