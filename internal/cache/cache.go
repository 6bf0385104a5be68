// Package cache implements the content-addressed recognition result cache.
// Keys are digests of raw image bytes, so pixel-identical submissions hit the
// same entry while any cosmetic difference misses. Keys whose outcome was
// "not recognized" are tracked in a set and invalidated in bulk whenever a
// new face is enrolled.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Store is the recognition result cache. All write operations are best-effort
// from the orchestrator's point of view: callers log failures and proceed.
type Store interface {
	// Get returns the cached payload for a key. Absence is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a payload under the key with the given TTL. The write is
	// atomic from the caller's perspective; entries are never partially
	// visible.
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error

	// TrackUnmatched adds the key to the unmatched set. Used only when the
	// outcome was "not recognized."
	TrackUnmatched(ctx context.Context, key string) error

	// InvalidateUnmatched deletes every tracked unmatched entry and clears
	// the set, returning the number of entries removed. An empty set is a
	// no-op.
	InvalidateUnmatched(ctx context.Context) (int, error)

	// Close releases backend resources.
	Close() error
}

// Key computes the content hash for raw image bytes.
func Key(imageData []byte) string {
	sum := sha256.Sum256(imageData)
	return hex.EncodeToString(sum[:])
}
