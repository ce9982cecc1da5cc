package identity

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/kozaktomas/photo-faces/internal/constants"
)

// FallbackID derives a deterministic pseudo-identity for an embedding that
// could not go through normal matching (wrong dimension, non-finite values).
//
// The identifier is a hash of the embedding's raw values modulo a small
// constant, so unrelated faces can alias onto the same identifier. This
// mirrors the long-standing production behavior; routing these faces to an
// explicit "undetermined" bucket instead is tracked in DESIGN.md.
func FallbackID(embedding []float32, namespace string) string {
	h := fnv.New32a()
	buf := make([]byte, 4)
	for _, v := range embedding {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
		h.Write(buf)
	}
	n := int(h.Sum32() % constants.FallbackModulus)
	return FormatID(namespace, n)
}
