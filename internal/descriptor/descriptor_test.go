package descriptor

import (
	"errors"
	"math"
	"testing"
)

func TestEuclideanDistance_Identical(t *testing.T) {
	a := Descriptor{0.1, 0.2, 0.3}

	d, err := EuclideanDistance(a, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d != 0 {
		t.Errorf("expected distance 0 for identical descriptors, got %f", d)
	}
}

func TestEuclideanDistance_KnownValue(t *testing.T) {
	a := Descriptor{0, 0}
	b := Descriptor{3, 4}

	d, err := EuclideanDistance(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(d-5.0) > 1e-9 {
		t.Errorf("expected distance 5.0, got %f", d)
	}
}

func TestEuclideanDistance_DimensionMismatch(t *testing.T) {
	a := Descriptor{0.1, 0.2}
	b := Descriptor{0.1, 0.2, 0.3}

	_, err := EuclideanDistance(a, b)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestEuclideanDistance_Empty(t *testing.T) {
	_, err := EuclideanDistance(Descriptor{}, Descriptor{})
	if !errors.Is(err, ErrEmptyDescriptor) {
		t.Errorf("expected ErrEmptyDescriptor, got %v", err)
	}
}

func TestCompare_SelfSimilarityIsOne(t *testing.T) {
	a := Descriptor{0.5, -0.25, 0.75, 0.1}

	result, err := Compare(a, a, 0.6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Similarity != 1.0 {
		t.Errorf("expected similarity 1.0 for self-compare, got %f", result.Similarity)
	}

	if !result.IsMatch {
		t.Error("expected self-compare to be a match")
	}
}

func TestCompare_NegativeSimilarityPreserved(t *testing.T) {
	// Distance between these is 2, so similarity is -1. The raw negative
	// value must come through unclamped.
	a := Descriptor{0, 0}
	b := Descriptor{2, 0}

	result, err := Compare(a, b, 0.6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Similarity != -1.0 {
		t.Errorf("expected similarity -1.0, got %f", result.Similarity)
	}

	if result.IsMatch {
		t.Error("expected no match for negative similarity")
	}
}

func TestCompare_ThresholdBoundary(t *testing.T) {
	tests := []struct {
		name      string
		b         Descriptor
		threshold float64
		isMatch   bool
	}{
		{"exactly at threshold", Descriptor{0.4, 0}, 0.6, true},
		{"just below threshold", Descriptor{0.41, 0}, 0.6, false},
		{"well above threshold", Descriptor{0.1, 0}, 0.6, true},
	}

	a := Descriptor{0, 0}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Compare(a, tt.b, tt.threshold)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.IsMatch != tt.isMatch {
				t.Errorf("expected isMatch=%v at similarity %f, got %v",
					tt.isMatch, result.Similarity, result.IsMatch)
			}
		})
	}
}

func TestBestMatch_EmptyCandidates(t *testing.T) {
	match, err := BestMatch(Descriptor{0.1, 0.2}, nil, 0.6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if match.Matched {
		t.Error("expected no match for empty candidate set")
	}

	if match.Confidence != 0 {
		t.Errorf("expected confidence 0 for empty candidate set, got %f", match.Confidence)
	}
}

func TestBestMatch_SelectsHighestSimilarity(t *testing.T) {
	query := Descriptor{0, 0}
	candidates := []Candidate{
		{ID: 1, Name: "far", Descriptor: Descriptor{1, 0}},
		{ID: 2, Name: "close", Descriptor: Descriptor{0.1, 0}},
		{ID: 3, Name: "medium", Descriptor: Descriptor{0.5, 0}},
	}

	match, err := BestMatch(query, candidates, 0.6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !match.Matched {
		t.Fatal("expected a match")
	}

	if match.ID != 2 || match.Name != "close" {
		t.Errorf("expected candidate 2 'close', got %d '%s'", match.ID, match.Name)
	}

	if math.Abs(match.Similarity-0.9) > 1e-9 {
		t.Errorf("expected similarity 0.9, got %f", match.Similarity)
	}
}

func TestBestMatch_FirstWinsOnTie(t *testing.T) {
	query := Descriptor{0, 0}
	candidates := []Candidate{
		{ID: 7, Name: "first", Descriptor: Descriptor{0.2, 0}},
		{ID: 8, Name: "second", Descriptor: Descriptor{0.2, 0}},
	}

	match, err := BestMatch(query, candidates, 0.6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if match.ID != 7 {
		t.Errorf("expected first-seen candidate 7 to win the tie, got %d", match.ID)
	}
}

func TestBestMatch_BelowThresholdReportsConfidence(t *testing.T) {
	query := Descriptor{0, 0}
	candidates := []Candidate{
		{ID: 1, Name: "near miss", Descriptor: Descriptor{0.5, 0}},
	}

	match, err := BestMatch(query, candidates, 0.6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if match.Matched {
		t.Error("expected no match below threshold")
	}

	if match.ID != 0 || match.Name != "" {
		t.Errorf("expected identity cleared when unmatched, got %d '%s'", match.ID, match.Name)
	}

	// Near-miss confidence stays observable.
	if math.Abs(match.Confidence-0.5) > 1e-9 {
		t.Errorf("expected confidence 0.5, got %f", match.Confidence)
	}
}

func TestBestMatch_ConfidenceEqualsMaxPairwise(t *testing.T) {
	query := Descriptor{0.3, 0.1, 0.7}
	candidates := []Candidate{
		{ID: 1, Descriptor: Descriptor{0.9, 0.2, 0.1}},
		{ID: 2, Descriptor: Descriptor{0.35, 0.15, 0.68}},
		{ID: 3, Descriptor: Descriptor{0.1, 0.9, 0.4}},
	}

	match, err := BestMatch(query, candidates, 0.6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	maxSim := math.Inf(-1)
	for _, c := range candidates {
		result, err := Compare(query, c.Descriptor, 0.6)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Similarity > maxSim {
			maxSim = result.Similarity
		}
	}

	if match.Confidence != maxSim {
		t.Errorf("expected confidence %f to equal max pairwise similarity, got %f", maxSim, match.Confidence)
	}
}

func TestBestMatch_DimensionMismatchFails(t *testing.T) {
	query := Descriptor{0.1, 0.2}
	candidates := []Candidate{
		{ID: 1, Descriptor: Descriptor{0.1, 0.2, 0.3}},
	}

	_, err := BestMatch(query, candidates, 0.6)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}
