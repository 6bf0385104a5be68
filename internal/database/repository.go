package database

import (
	"context"
)

// FaceReader provides read-only access to enrolled faces
type FaceReader interface {
	// Get retrieves an enrolled face by id, returns nil if not found
	Get(ctx context.Context, id int64) (*EnrolledFace, error)
	// List retrieves all enrolled faces ordered by id.
	// Recognition fetches the full set fresh on every request; there is no
	// long-lived in-memory index.
	List(ctx context.Context) ([]EnrolledFace, error)
	// Count returns the total number of enrolled faces
	Count(ctx context.Context) (int, error)
}

// FaceWriter provides write access to enrolled faces
type FaceWriter interface {
	FaceReader

	// Save stores a new enrolled face and assigns its ID and timestamps
	Save(ctx context.Context, face *EnrolledFace) error

	// Delete removes a face by id. Returns false if no such face existed.
	// Recognition logs keep their face_id reference set to NULL.
	Delete(ctx context.Context, id int64) (bool, error)
}

// LogReader provides read-only access to recognition logs
type LogReader interface {
	// Recent returns the most recent recognition logs, newest first
	Recent(ctx context.Context, limit int) ([]RecognitionLog, error)
	// Count returns the total number of recognition logs
	Count(ctx context.Context) (int, error)
}

// LogWriter provides write access to recognition logs
type LogWriter interface {
	LogReader

	// Add records a successful recognition of the given face
	Add(ctx context.Context, faceID int64, confidence float64, imagePath string) error
}
