// Package descriptor implements face descriptor comparison and best-match
// selection over the enrolled set.
package descriptor

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch is returned when two descriptors of different lengths are compared.
var ErrDimensionMismatch = errors.New("descriptor dimensions do not match")

// ErrEmptyDescriptor is returned when a descriptor has no components.
var ErrEmptyDescriptor = errors.New("empty descriptor")

// Descriptor is a fixed-length face embedding. Immutable once produced;
// two descriptors are comparable only when their lengths match.
type Descriptor []float32

// MatchResult is the outcome of a single pairwise comparison.
type MatchResult struct {
	Distance   float64
	Similarity float64
	IsMatch    bool
	Threshold  float64
}

// Candidate is an enrolled descriptor with its stable identity.
type Candidate struct {
	ID         int64
	Name       string
	Descriptor Descriptor
}

// Match is the result of scanning a candidate set. Confidence always carries
// the best similarity seen, even when it is below the threshold, so a
// near-miss stays observable.
type Match struct {
	Matched    bool
	ID         int64
	Name       string
	Similarity float64
	Confidence float64
}

// EuclideanDistance computes the Euclidean distance between two equal-length
// descriptors.
func EuclideanDistance(a, b Descriptor) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, ErrEmptyDescriptor
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// Compare computes distance and similarity between two descriptors.
// Similarity is 1 - distance and is deliberately not clamped: very dissimilar
// descriptors produce negative similarity, and callers rely on the raw value.
func Compare(a, b Descriptor, threshold float64) (MatchResult, error) {
	distance, err := EuclideanDistance(a, b)
	if err != nil {
		return MatchResult{}, err
	}

	similarity := 1 - distance
	return MatchResult{
		Distance:   distance,
		Similarity: similarity,
		IsMatch:    similarity >= threshold,
		Threshold:  threshold,
	}, nil
}

// BestMatch scans every candidate linearly and keeps the maximum similarity.
// Ties keep the first-seen maximum. The returned Match is only Matched when
// the best similarity reaches the threshold; Confidence is always the best
// similarity found (0 for an empty candidate set).
func BestMatch(query Descriptor, candidates []Candidate, threshold float64) (Match, error) {
	if len(candidates) == 0 {
		return Match{}, nil
	}

	best := Match{Similarity: math.Inf(-1)}
	for _, c := range candidates {
		result, err := Compare(query, c.Descriptor, threshold)
		if err != nil {
			return Match{}, fmt.Errorf("comparing against face %d: %w", c.ID, err)
		}
		if result.Similarity > best.Similarity {
			best.ID = c.ID
			best.Name = c.Name
			best.Similarity = result.Similarity
		}
	}

	best.Confidence = best.Similarity
	best.Matched = best.Similarity >= threshold
	if !best.Matched {
		best.ID = 0
		best.Name = ""
	}
	return best, nil
}
