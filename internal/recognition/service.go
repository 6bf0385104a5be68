// Package recognition implements the enrollment and recognition orchestration
// on top of the descriptor matcher, the result cache, and the face store.
package recognition

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kozaktomas/facegate/internal/cache"
	"github.com/kozaktomas/facegate/internal/config"
	"github.com/kozaktomas/facegate/internal/constants"
	"github.com/kozaktomas/facegate/internal/database"
	"github.com/kozaktomas/facegate/internal/descriptor"
	"github.com/kozaktomas/facegate/internal/extractor"
	"github.com/kozaktomas/facegate/internal/imaging"
)

// Outcome sources reported to clients.
const (
	SourceCache = "cache"
	SourceLive  = "live"
)

// DescriptorExtractor computes face descriptors for raw image bytes.
type DescriptorExtractor interface {
	ExtractDescriptor(ctx context.Context, imageData []byte) (*extractor.Result, error)
}

// PersonMatch identifies the recognized face.
type PersonMatch struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Confidence float64   `json:"confidence"`
	Similarity float64   `json:"similarity"`
	Box        []float64 `json:"box,omitempty"`
}

// Outcome is the result of one recognition request. Confidence always carries
// the best similarity observed, even on a negative outcome.
type Outcome struct {
	Recognized bool         `json:"recognized"`
	Person     *PersonMatch `json:"person,omitempty"`
	Confidence float64      `json:"confidence"`
	Source     string       `json:"source,omitempty"`
}

// Input is one recognition request. Ephemeral inputs (live-stream frames)
// bypass the cache and are never logged or written to disk.
type Input struct {
	Bytes     []byte
	Ephemeral bool
}

// EnrollResult is the created record plus the extraction confidence.
type EnrollResult struct {
	Face       *database.EnrolledFace
	Confidence float64
}

// Service owns the recognition pipeline and its collaborators. It is
// constructed explicitly and passed by reference to request handlers; there
// is no package-level state.
type Service struct {
	extractor DescriptorExtractor
	faces     database.FaceWriter
	logs      database.LogWriter
	cache     cache.Store

	recognitionThreshold float64
	duplicateThreshold   float64
	cacheTTL             time.Duration
	uploadDir            string
	maxImageSize         int
}

// NewService creates a recognition service with explicit dependencies.
func NewService(
	ext DescriptorExtractor,
	faces database.FaceWriter,
	logs database.LogWriter,
	store cache.Store,
	cfg *config.Config,
) *Service {
	return &Service{
		extractor:            ext,
		faces:                faces,
		logs:                 logs,
		cache:                store,
		recognitionThreshold: cfg.Recognition.Threshold,
		duplicateThreshold:   cfg.Recognition.DuplicateThreshold,
		cacheTTL:             time.Duration(cfg.Cache.TTLSeconds) * time.Second,
		uploadDir:            cfg.Storage.UploadDir,
		maxImageSize:         constants.MaxImageSize,
	}
}

// Close releases the service's cache backend.
func (s *Service) Close() error {
	return s.cache.Close()
}

// Recognize runs one recognition request. Cache and log failures never fail
// the request; extraction and matching failures abort it with no cache write.
func (s *Service) Recognize(ctx context.Context, input Input) (*Outcome, error) {
	if len(input.Bytes) == 0 {
		return nil, &ValidationError{Message: "no image provided"}
	}

	key := cache.Key(input.Bytes)

	// Only durable submissions consult the cache; live frames are one-shot.
	if !input.Ephemeral {
		if outcome := s.cacheLookup(ctx, key); outcome != nil {
			return outcome, nil
		}
	}

	if err := imaging.ValidateFormat(input.Bytes); err != nil {
		return nil, &ValidationError{Message: "unsupported image format"}
	}

	result, err := s.extractor.ExtractDescriptor(ctx, input.Bytes)
	if err != nil {
		return nil, err
	}

	faces, err := s.faces.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading enrolled faces: %w", err)
	}
	if len(faces) == 0 {
		return nil, ErrNoEnrolledFaces
	}

	match, err := descriptor.BestMatch(result.Descriptor, candidates(faces), s.recognitionThreshold)
	if err != nil {
		return nil, fmt.Errorf("matching descriptor: %w", err)
	}

	outcome := &Outcome{
		Recognized: match.Matched,
		Confidence: match.Confidence,
		Source:     SourceLive,
	}
	if match.Matched {
		outcome.Person = &PersonMatch{
			ID:         match.ID,
			Name:       match.Name,
			Confidence: match.Confidence,
			Similarity: match.Similarity,
			Box:        result.BBox,
		}
	}

	if !input.Ephemeral {
		imagePath := s.storeSubmission(input.Bytes)
		if match.Matched {
			if err := s.logs.Add(ctx, match.ID, match.Confidence, imagePath); err != nil {
				log.Printf("Warning: failed to write recognition log: %v", err)
			}
		}
		s.cacheWrite(ctx, key, outcome)
	}

	return outcome, nil
}

// Enroll validates and stores a new face. The duplicate check and the insert
// are not transactional; two concurrent enrollments of the same face can both
// pass the check. See the repository design notes.
func (s *Service) Enroll(ctx context.Context, name string, imageBytes []byte) (*EnrollResult, error) {
	name = strings.TrimSpace(name)
	if len(name) < constants.MinNameLength || len(name) > constants.MaxNameLength {
		return nil, &ValidationError{
			Message: fmt.Sprintf("name must be between %d and %d characters",
				constants.MinNameLength, constants.MaxNameLength),
		}
	}
	if len(imageBytes) == 0 {
		return nil, &ValidationError{Message: "no image provided"}
	}
	if err := imaging.ValidateFormat(imageBytes); err != nil {
		return nil, &ValidationError{Message: "unsupported image format"}
	}

	normalized, err := imaging.Normalize(imageBytes, s.maxImageSize)
	if err != nil {
		return nil, &ValidationError{Message: "could not decode image"}
	}

	result, err := s.extractor.ExtractDescriptor(ctx, normalized)
	if err != nil {
		return nil, err
	}

	existing, err := s.faces.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading enrolled faces: %w", err)
	}

	if len(existing) > 0 {
		match, err := descriptor.BestMatch(result.Descriptor, candidates(existing), s.duplicateThreshold)
		if err != nil {
			return nil, fmt.Errorf("duplicate check: %w", err)
		}
		if match.Matched {
			return nil, &ConflictError{
				ExistingID:   match.ID,
				ExistingName: match.Name,
				Similarity:   match.Similarity,
			}
		}
	}

	imagePath, err := imaging.SaveUpload(s.uploadDir, normalized)
	if err != nil {
		return nil, fmt.Errorf("storing enrollment image: %w", err)
	}

	face := &database.EnrolledFace{
		Name:       name,
		Descriptor: result.Descriptor,
		Dim:        len(result.Descriptor),
		ImagePath:  imagePath,
		BBox:       result.BBox,
		DetScore:   result.DetScore,
	}
	if err := s.faces.Save(ctx, face); err != nil {
		return nil, fmt.Errorf("saving face: %w", err)
	}

	// A previously unmatched image might now match the new identity. The new
	// record is never rolled back when invalidation fails.
	if removed, err := s.cache.InvalidateUnmatched(ctx); err != nil {
		log.Printf("Warning: failed to invalidate unmatched cache entries: %v", err)
	} else if removed > 0 {
		log.Printf("Invalidated %d unmatched cache entries after enrolling %q", removed, name)
	}

	return &EnrollResult{Face: face, Confidence: result.DetScore}, nil
}

// GetFace returns an enrolled face by id.
func (s *Service) GetFace(ctx context.Context, id int64) (*database.EnrolledFace, error) {
	face, err := s.faces.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading face: %w", err)
	}
	if face == nil {
		return nil, ErrFaceNotFound
	}
	return face, nil
}

// ListFaces returns enrolled faces, optionally filtered by a
// diacritics-insensitive name query.
func (s *Service) ListFaces(ctx context.Context, query string) ([]database.EnrolledFace, error) {
	faces, err := s.faces.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading faces: %w", err)
	}

	if query == "" {
		return faces, nil
	}

	normalized := NormalizeName(query)
	var filtered []database.EnrolledFace
	for _, face := range faces {
		if strings.Contains(NormalizeName(face.Name), normalized) {
			filtered = append(filtered, face)
		}
	}
	return filtered, nil
}

// DeleteFace removes an enrolled face. Its recognition logs survive with a
// NULL face reference.
func (s *Service) DeleteFace(ctx context.Context, id int64) error {
	deleted, err := s.faces.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting face: %w", err)
	}
	if !deleted {
		return ErrFaceNotFound
	}
	return nil
}

// RecentLogs returns the most recent recognition logs.
func (s *Service) RecentLogs(ctx context.Context, limit int) ([]database.RecognitionLog, error) {
	logs, err := s.logs.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("loading recognition logs: %w", err)
	}
	return logs, nil
}

// Stats aggregates dashboard counters.
func (s *Service) Stats(ctx context.Context) (*database.Stats, error) {
	totalFaces, err := s.faces.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting faces: %w", err)
	}

	totalLogs, err := s.logs.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting recognition logs: %w", err)
	}

	recent, err := s.logs.Recent(ctx, 10)
	if err != nil {
		return nil, fmt.Errorf("loading recent recognitions: %w", err)
	}

	return &database.Stats{
		TotalFaces:         totalFaces,
		TotalRecognitions:  totalLogs,
		RecentRecognitions: recent,
	}, nil
}

// cacheLookup returns a cached outcome or nil. Failures degrade to a miss.
func (s *Service) cacheLookup(ctx context.Context, key string) *Outcome {
	payload, found, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Printf("Warning: cache lookup failed: %v", err)
		return nil
	}
	if !found {
		return nil
	}

	var outcome Outcome
	if err := json.Unmarshal(payload, &outcome); err != nil {
		log.Printf("Warning: discarding malformed cache entry: %v", err)
		return nil
	}
	outcome.Source = SourceCache
	return &outcome
}

// cacheWrite stores the outcome and tracks unmatched keys. Fire-and-forget.
func (s *Service) cacheWrite(ctx context.Context, key string, outcome *Outcome) {
	stored := *outcome
	stored.Source = ""

	payload, err := json.Marshal(&stored)
	if err != nil {
		log.Printf("Warning: failed to serialize outcome for cache: %v", err)
		return
	}

	if err := s.cache.Set(ctx, key, payload, s.cacheTTL); err != nil {
		log.Printf("Warning: cache write failed: %v", err)
		return
	}

	if !outcome.Recognized {
		if err := s.cache.TrackUnmatched(ctx, key); err != nil {
			log.Printf("Warning: failed to track unmatched key: %v", err)
		}
	}
}

// storeSubmission writes the submitted image to disk for the recognition log.
// Best-effort; an empty path is recorded when storage fails.
func (s *Service) storeSubmission(imageBytes []byte) string {
	path, err := imaging.SaveUpload(s.uploadDir, imageBytes)
	if err != nil {
		log.Printf("Warning: failed to store submitted image: %v", err)
		return ""
	}
	return path
}

func candidates(faces []database.EnrolledFace) []descriptor.Candidate {
	out := make([]descriptor.Candidate, len(faces))
	for i, face := range faces {
		out[i] = descriptor.Candidate{
			ID:         face.ID,
			Name:       face.Name,
			Descriptor: descriptor.Descriptor(face.Descriptor),
		}
	}
	return out
}
