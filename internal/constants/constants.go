// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Matching constants
const (
	// DefaultRecognitionThreshold is the minimum similarity (1 - Euclidean distance)
	// required to declare a recognition match
	DefaultRecognitionThreshold = 0.6

	// DefaultDuplicateThreshold is the minimum similarity at which an enrollment
	// is rejected as a duplicate of an existing face. Stricter than recognition.
	DefaultDuplicateThreshold = 0.7

	// DefaultDescriptorDim is the expected descriptor length produced by the extractor
	DefaultDescriptorDim = 128
)

// Validation constants
const (
	// MinNameLength is the minimum length of an enrolled face name
	MinNameLength = 3

	// MaxNameLength is the maximum length of an enrolled face name
	MaxNameLength = 50

	// MinFaceSize is the minimum face bounding box dimension (pixels) accepted for enrollment
	MinFaceSize = 50

	// MaxUploadBytes is the maximum accepted image upload size
	MaxUploadBytes = 10 << 20
)

// Cache constants
const (
	// CacheKeyPrefix namespaces recognition cache entries in the backend
	CacheKeyPrefix = "facegate:recognition:"

	// UnmatchedSetKey is the backend key holding hashes of unrecognized images
	UnmatchedSetKey = "facegate:unmatched_keys"

	// DefaultCacheTTLSeconds is the recognition cache expiry window
	DefaultCacheTTLSeconds = 3600
)

// Image processing constants
const (
	// MaxImageSize is the maximum dimension (width or height) for stored images;
	// larger uploads are downscaled before being written to disk
	MaxImageSize = 1920
)

// Live stream constants
const (
	// DefaultCaptureIntervalSeconds is the frame sampling interval for the watch loop
	DefaultCaptureIntervalSeconds = 1

	// DefaultOverlayRefreshMillis is the overlay redraw interval while capture is paused
	DefaultOverlayRefreshMillis = 100
)
