// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/kozaktomas/facegate/internal/database"
)

// MockFaceRepository is an in-memory implementation of database.FaceWriter
type MockFaceRepository struct {
	mu     sync.RWMutex
	faces  map[int64]*database.EnrolledFace
	nextID int64

	// Error injection
	GetError    error
	ListError   error
	CountError  error
	SaveError   error
	DeleteError error

	// Call tracking
	SaveCalls   int
	DeleteCalls int
}

// NewMockFaceRepository creates a new mock face repository
func NewMockFaceRepository() *MockFaceRepository {
	return &MockFaceRepository{
		faces:  make(map[int64]*database.EnrolledFace),
		nextID: 1,
	}
}

// Compile-time interface compliance check.
var _ database.FaceWriter = (*MockFaceRepository)(nil)

// AddFace seeds the mock store with a face, assigning an id if missing
func (m *MockFaceRepository) AddFace(face database.EnrolledFace) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if face.ID == 0 {
		face.ID = m.nextID
	}
	if face.ID >= m.nextID {
		m.nextID = face.ID + 1
	}
	if face.CreatedAt.IsZero() {
		face.CreatedAt = time.Now()
	}
	m.faces[face.ID] = &face
	return face.ID
}

// Get retrieves a face by id, nil if not found
func (m *MockFaceRepository) Get(ctx context.Context, id int64) (*database.EnrolledFace, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	face, ok := m.faces[id]
	if !ok {
		return nil, nil
	}
	copied := *face
	return &copied, nil
}

// List returns all faces ordered by id
func (m *MockFaceRepository) List(ctx context.Context) ([]database.EnrolledFace, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var faces []database.EnrolledFace
	for id := int64(1); id < m.nextID; id++ {
		if face, ok := m.faces[id]; ok {
			faces = append(faces, *face)
		}
	}
	return faces, nil
}

// Count returns the number of stored faces
func (m *MockFaceRepository) Count(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.faces), nil
}

// Save stores a new face and assigns id and timestamps
func (m *MockFaceRepository) Save(ctx context.Context, face *database.EnrolledFace) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.SaveError != nil {
		return m.SaveError
	}

	face.ID = m.nextID
	m.nextID++
	face.CreatedAt = time.Now()
	face.UpdatedAt = face.CreatedAt
	copied := *face
	m.faces[face.ID] = &copied
	return nil
}

// Delete removes a face by id
func (m *MockFaceRepository) Delete(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++
	if m.DeleteError != nil {
		return false, m.DeleteError
	}

	if _, ok := m.faces[id]; !ok {
		return false, nil
	}
	delete(m.faces, id)
	return true, nil
}

// MockLogRepository is an in-memory implementation of database.LogWriter
type MockLogRepository struct {
	mu     sync.RWMutex
	logs   []database.RecognitionLog
	nextID int64

	// Error injection
	AddError    error
	RecentError error
	CountError  error

	// Call tracking
	AddCalls int
}

// NewMockLogRepository creates a new mock recognition log repository
func NewMockLogRepository() *MockLogRepository {
	return &MockLogRepository{nextID: 1}
}

// Compile-time interface compliance check.
var _ database.LogWriter = (*MockLogRepository)(nil)

// Add records a recognition
func (m *MockLogRepository) Add(ctx context.Context, faceID int64, confidence float64, imagePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddCalls++
	if m.AddError != nil {
		return m.AddError
	}

	id := faceID
	m.logs = append(m.logs, database.RecognitionLog{
		ID:         m.nextID,
		FaceID:     &id,
		Confidence: confidence,
		ImagePath:  imagePath,
		CreatedAt:  time.Now(),
	})
	m.nextID++
	return nil
}

// Recent returns the most recent logs, newest first
func (m *MockLogRepository) Recent(ctx context.Context, limit int) ([]database.RecognitionLog, error) {
	if m.RecentError != nil {
		return nil, m.RecentError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var logs []database.RecognitionLog
	for i := len(m.logs) - 1; i >= 0 && len(logs) < limit; i-- {
		logs = append(logs, m.logs[i])
	}
	return logs, nil
}

// Count returns the total number of logs
func (m *MockLogRepository) Count(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.logs), nil
}
