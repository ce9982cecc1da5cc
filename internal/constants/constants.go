// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Embedding constants
const (
	// EmbeddingDim is the fixed length of face embedding vectors
	EmbeddingDim = 128
)

// Identity constants
const (
	// UnknownIdentityID is the sentinel identity assigned to photos where
	// both detection tiers found no faces
	UnknownIdentityID = "unknown"

	// IdentityPrefix is the prefix of allocated identity identifiers
	IdentityPrefix = "person_"

	// FallbackModulus bounds the hash-based pseudo-identity numbering used
	// when an embedding cannot be matched normally
	FallbackModulus = 1000
)

// Detection constants
const (
	// FastMinConfidence is the minimum detection score accepted from the fast tier
	FastMinConfidence = 0.70

	// AccurateMinConfidence is the minimum detection score accepted from the
	// accurate (fallback) tier
	AccurateMinConfidence = 0.50
)

// Thumbnail constants
const (
	// ThumbnailPaddingRatio is the padding added around a face box on all
	// sides, as a fraction of max(width, height)
	ThumbnailPaddingRatio = 0.20

	// ThumbnailMaxSize is the maximum dimension (width or height) of an
	// encoded face thumbnail
	ThumbnailMaxSize = 256

	// ThumbnailJPEGQuality is the JPEG quality used for face thumbnails
	ThumbnailJPEGQuality = 85
)

// Processing constants
const (
	// DefaultProcessCooldown is the default delay between photos during
	// batch reprocessing, in milliseconds
	DefaultProcessCooldown = 250
)

// Handler constants
const (
	// MaxUploadSize is the maximum photo upload size in bytes (100MB)
	MaxUploadSize = 100 << 20

	// DefaultSimilarLimit is the default limit for similar identity results
	DefaultSimilarLimit = 10

	// EventChannelBuffer is the buffer size for job event channels
	EventChannelBuffer = 100
)
