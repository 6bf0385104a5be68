package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kozaktomas/facegate/internal/database"
)

// LogRepository provides PostgreSQL-backed storage for recognition logs.
type LogRepository struct {
	pool *Pool
}

// NewLogRepository creates a new PostgreSQL recognition log repository.
func NewLogRepository(pool *Pool) *LogRepository {
	return &LogRepository{pool: pool}
}

// Compile-time interface compliance check.
var _ database.LogWriter = (*LogRepository)(nil)

// Add records a successful recognition of the given face.
func (r *LogRepository) Add(ctx context.Context, faceID int64, confidence float64, imagePath string) error {
	_, err := r.pool.Exec(
		ctx,
		"INSERT INTO recognition_logs (face_id, confidence, image_path) VALUES ($1, $2, $3)",
		faceID, confidence, imagePath,
	)
	if err != nil {
		return fmt.Errorf("insert recognition log: %w", err)
	}
	return nil
}

// Recent returns the most recent recognition logs, newest first. The face
// name is joined in; deleted faces show up with an empty name.
func (r *LogRepository) Recent(ctx context.Context, limit int) ([]database.RecognitionLog, error) {
	query := `
		SELECT l.id, l.face_id, COALESCE(f.name, ''), l.confidence, l.image_path, l.created_at
		FROM recognition_logs l
		LEFT JOIN faces f ON f.id = l.face_id
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recognition logs: %w", err)
	}
	defer rows.Close()

	var logs []database.RecognitionLog
	for rows.Next() {
		var entry database.RecognitionLog
		var faceID sql.NullInt64
		if err := rows.Scan(&entry.ID, &faceID, &entry.FaceName, &entry.Confidence, &entry.ImagePath, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recognition log: %w", err)
		}
		if faceID.Valid {
			id := faceID.Int64
			entry.FaceID = &id
		}
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recognition logs: %w", err)
	}
	return logs, nil
}

// Count returns the total number of recognition logs.
func (r *LogRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM recognition_logs").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count recognition logs: %w", err)
	}
	return count, nil
}
