package database

import (
	"time"
)

// EnrolledFace represents an enrolled face record stored in the database.
type EnrolledFace struct {
	ID         int64
	Name       string
	Descriptor []float32
	Dim        int
	ImagePath  string
	BBox       []float64 // [x1, y1, x2, y2] in raw pixel coordinates
	DetScore   float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RecognitionLog records one successful recognition. FaceID is nil when the
// matched face was deleted after the recognition happened.
type RecognitionLog struct {
	ID         int64
	FaceID     *int64
	FaceName   string // joined from faces at read time; empty when the face is gone
	Confidence float64
	ImagePath  string
	CreatedAt  time.Time
}

// Stats aggregates enrollment and recognition counters for the dashboard.
type Stats struct {
	TotalFaces         int
	TotalRecognitions  int
	RecentRecognitions []RecognitionLog
}
