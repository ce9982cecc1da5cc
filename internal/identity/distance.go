package identity

import (
	"math"

	"github.com/kozaktomas/photo-faces/internal/constants"
)

// EuclideanDistance computes the L2 distance between two vectors.
// Returns +Inf for mismatched or empty inputs.
func EuclideanDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// ValidateEmbedding checks that an embedding has the expected dimension and
// contains only finite values.
func ValidateEmbedding(embedding []float32) error {
	if len(embedding) != constants.EmbeddingDim {
		return ErrMalformedEmbedding
	}
	for _, v := range embedding {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return ErrMalformedEmbedding
		}
	}
	return nil
}
