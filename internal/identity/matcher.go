package identity

import (
	"context"
	"fmt"
	"math"
)

// Thresholds holds the adaptive acceptance radii of the matcher, selected by
// how many samples the best-matching identity has accumulated. A fixed
// threshold either over-merges distinct people or over-splits one person
// across lighting and angle variation; the radius only widens once the
// representative embedding is backed by enough evidence.
type Thresholds struct {
	SingleSample  float64 // best match has exactly 1 sample
	FewSamples    float64 // 2 to ManySamplesAt-1 samples
	ManySamples   float64 // ManySamplesAt or more samples
	ManySamplesAt int
}

// DefaultThresholds returns the production thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SingleSample:  0.45,
		FewSamples:    0.50,
		ManySamples:   0.55,
		ManySamplesAt: 4,
	}
}

// ForSampleCount selects the threshold for an identity with the given number
// of stored samples.
func (t Thresholds) ForSampleCount(n int) float64 {
	switch {
	case n <= 1:
		return t.SingleSample
	case n >= t.ManySamplesAt:
		return t.ManySamples
	default:
		return t.FewSamples
	}
}

// Matcher decides whether an embedding belongs to a known identity in a
// namespace or represents a new one.
type Matcher struct {
	store      Store
	thresholds Thresholds
}

// NewMatcher creates a matcher over the given identity store.
func NewMatcher(store Store, thresholds Thresholds) *Matcher {
	return &Matcher{store: store, thresholds: thresholds}
}

// Match compares an embedding against every identity currently stored in the
// namespace and returns the decision. The scan is exact and linear over the
// representative embeddings; per-namespace populations are small by design.
func (m *Matcher) Match(ctx context.Context, embedding []float32, namespace string) (MatchDecision, error) {
	if err := ValidateEmbedding(embedding); err != nil {
		return MatchDecision{}, err
	}

	identities, err := m.store.ListIdentities(ctx, namespace)
	if err != nil {
		return MatchDecision{}, fmt.Errorf("list identities: %w", err)
	}

	if len(identities) == 0 {
		return MatchDecision{IsNew: true}, nil
	}

	minDistance := math.Inf(1)
	var best *Identity
	for i := range identities {
		rep := Representative(identities[i].Samples)
		if rep == nil {
			continue
		}
		d := EuclideanDistance(embedding, rep)
		if d < minDistance {
			minDistance = d
			best = &identities[i]
		}
	}

	if best == nil {
		return MatchDecision{IsNew: true}, nil
	}

	threshold := m.thresholds.ForSampleCount(len(best.Samples))
	if minDistance < threshold {
		return MatchDecision{IdentityID: best.ID, Distance: minDistance}, nil
	}
	return MatchDecision{Distance: minDistance, IsNew: true}, nil
}
