package recognition

import (
	"errors"
	"fmt"
)

// ErrNoEnrolledFaces is returned when recognition runs against an empty store.
// Distinct from a negative recognition outcome.
var ErrNoEnrolledFaces = errors.New("no faces found in database, please enroll faces first")

// ErrFaceNotFound is returned for operations on an unknown face id.
var ErrFaceNotFound = errors.New("face not found")

// ValidationError reports bad input shape (name length, missing file,
// unsupported format).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ConflictError reports a duplicate enrollment, carrying the conflicting
// identity and the observed similarity.
type ConflictError struct {
	ExistingID   int64
	ExistingName string
	Similarity   float64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("face already enrolled as %q (id %d, similarity %.2f)",
		e.ExistingName, e.ExistingID, e.Similarity)
}
