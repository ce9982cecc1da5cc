package identity

// Representative returns the embedding used to compare a new face against an
// identity. A single sample is returned unchanged; otherwise the elementwise
// arithmetic mean across the full sample history is recomputed on demand.
//
// No incremental running average is persisted. Recomputing from history
// avoids floating-point drift and the per-namespace population is small
// (tens of identities per event), so the O(samples) cost is deliberate.
func Representative(samples [][]float32) []float32 {
	if len(samples) == 0 {
		return nil
	}
	if len(samples) == 1 {
		return samples[0]
	}

	// All samples share one dimension; the store validates on write.
	dim := len(samples[0])
	sums := make([]float64, dim)
	for _, s := range samples {
		for i, v := range s {
			sums[i] += float64(v)
		}
	}

	mean := make([]float32, dim)
	n := float64(len(samples))
	for i, v := range sums {
		mean[i] = float32(v / n)
	}
	return mean
}
