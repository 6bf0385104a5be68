package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/facegate/internal/database"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// FaceRepository provides PostgreSQL-backed storage for enrolled faces.
type FaceRepository struct {
	pool *Pool
}

// NewFaceRepository creates a new PostgreSQL face repository.
func NewFaceRepository(pool *Pool) *FaceRepository {
	return &FaceRepository{pool: pool}
}

// Compile-time interface compliance check.
var _ database.FaceWriter = (*FaceRepository)(nil)

const faceColumns = `id, name, descriptor, dim, image_path, bbox, det_score, created_at, updated_at`

// scanFace scans a single face row.
func scanFace(row interface{ Scan(...any) error }) (*database.EnrolledFace, error) {
	var face database.EnrolledFace
	var vec pgvector.Vector
	var bbox pq.Float64Array

	err := row.Scan(
		&face.ID, &face.Name, &vec, &face.Dim, &face.ImagePath,
		&bbox, &face.DetScore, &face.CreatedAt, &face.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	face.Descriptor = vec.Slice()
	face.BBox = []float64(bbox)
	return &face, nil
}

// Get retrieves an enrolled face by id. Returns nil if not found.
func (r *FaceRepository) Get(ctx context.Context, id int64) (*database.EnrolledFace, error) {
	query := fmt.Sprintf("SELECT %s FROM faces WHERE id = $1", faceColumns)

	face, err := scanFace(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query face: %w", err)
	}
	return face, nil
}

// List retrieves all enrolled faces ordered by id. The full set is fetched
// fresh per call; matching iterates it in Go.
func (r *FaceRepository) List(ctx context.Context) ([]database.EnrolledFace, error) {
	query := fmt.Sprintf("SELECT %s FROM faces ORDER BY id", faceColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query faces: %w", err)
	}
	defer rows.Close()

	var faces []database.EnrolledFace
	for rows.Next() {
		face, err := scanFace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan face: %w", err)
		}
		faces = append(faces, *face)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate faces: %w", err)
	}
	return faces, nil
}

// Count returns the total number of enrolled faces.
func (r *FaceRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM faces").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count faces: %w", err)
	}
	return count, nil
}

// Save stores a new enrolled face and fills in its ID and timestamps.
func (r *FaceRepository) Save(ctx context.Context, face *database.EnrolledFace) error {
	query := `
		INSERT INTO faces (name, descriptor, dim, image_path, bbox, det_score)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	vec := pgvector.NewVector(face.Descriptor)
	bbox := pq.Array(face.BBox)

	err := r.pool.QueryRow(
		ctx, query,
		face.Name, vec, face.Dim, face.ImagePath, bbox, face.DetScore,
	).Scan(&face.ID, &face.CreatedAt, &face.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert face: %w", err)
	}
	return nil
}

// Delete removes a face by id. Recognition logs referencing the face keep
// their rows with face_id set to NULL by the FK.
func (r *FaceRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.pool.Exec(ctx, "DELETE FROM faces WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete face: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete face rows affected: %w", err)
	}
	return affected > 0, nil
}
