//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kozaktomas/facegate/internal/config"
	"github.com/kozaktomas/facegate/internal/database"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}
	if container == nil {
		t.Skip("Docker not available, skipping integration test")
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dbURL := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	cfg := &config.DatabaseConfig{
		URL:          dbURL,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	pool, err := NewPool(cfg)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	// Run migrations
	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}

	return pool, cleanup
}

func testDescriptor(dim int, offset float32) []float32 {
	d := make([]float32, dim)
	for i := range d {
		d[i] = (float32(i) + offset) / float32(dim)
	}
	return d
}

func TestFaceRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	repo := NewFaceRepository(pool)

	t.Run("SaveAndGet", func(t *testing.T) {
		face := &database.EnrolledFace{
			Name:       "Alice Example",
			Descriptor: testDescriptor(128, 0),
			Dim:        128,
			ImagePath:  "uploads/alice.jpg",
			BBox:       []float64{10, 20, 110, 150},
			DetScore:   0.95,
		}

		if err := repo.Save(ctx, face); err != nil {
			t.Fatalf("Failed to save face: %v", err)
		}
		if face.ID == 0 {
			t.Fatal("Expected assigned ID after save")
		}
		if face.CreatedAt.IsZero() {
			t.Error("Expected CreatedAt to be set")
		}

		got, err := repo.Get(ctx, face.ID)
		if err != nil {
			t.Fatalf("Failed to get face: %v", err)
		}
		if got == nil {
			t.Fatal("Expected face, got nil")
		}
		if got.Name != "Alice Example" {
			t.Errorf("Expected name 'Alice Example', got '%s'", got.Name)
		}
		if len(got.Descriptor) != 128 {
			t.Errorf("Expected 128 dimensions, got %d", len(got.Descriptor))
		}
		if len(got.BBox) != 4 || got.BBox[2] != 110 {
			t.Errorf("Unexpected bbox %v", got.BBox)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		got, err := repo.Get(ctx, 999999)
		if err != nil {
			t.Fatalf("Failed to get missing face: %v", err)
		}
		if got != nil {
			t.Error("Expected nil for missing face")
		}
	})

	t.Run("ListAndCount", func(t *testing.T) {
		second := &database.EnrolledFace{
			Name:       "Bob Example",
			Descriptor: testDescriptor(128, 5),
			Dim:        128,
			ImagePath:  "uploads/bob.jpg",
		}
		if err := repo.Save(ctx, second); err != nil {
			t.Fatalf("Failed to save second face: %v", err)
		}

		faces, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("Failed to list faces: %v", err)
		}
		if len(faces) != 2 {
			t.Fatalf("Expected 2 faces, got %d", len(faces))
		}
		// Ordered by id
		if faces[0].ID > faces[1].ID {
			t.Error("Expected faces ordered by id")
		}

		count, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("Failed to count faces: %v", err)
		}
		if count != 2 {
			t.Errorf("Expected count 2, got %d", count)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		face := &database.EnrolledFace{
			Name:       "Temp Person",
			Descriptor: testDescriptor(128, 9),
			Dim:        128,
		}
		if err := repo.Save(ctx, face); err != nil {
			t.Fatalf("Failed to save face: %v", err)
		}

		deleted, err := repo.Delete(ctx, face.ID)
		if err != nil {
			t.Fatalf("Failed to delete face: %v", err)
		}
		if !deleted {
			t.Error("Expected delete to report true")
		}

		got, err := repo.Get(ctx, face.ID)
		if err != nil {
			t.Fatalf("Failed to get deleted face: %v", err)
		}
		if got != nil {
			t.Error("Expected nil after delete")
		}

		deleted, err = repo.Delete(ctx, face.ID)
		if err != nil {
			t.Fatalf("Failed to re-delete face: %v", err)
		}
		if deleted {
			t.Error("Expected delete of missing face to report false")
		}
	})
}

func TestLogRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	faceRepo := NewFaceRepository(pool)
	logRepo := NewLogRepository(pool)

	face := &database.EnrolledFace{
		Name:       "Carol Example",
		Descriptor: testDescriptor(128, 0),
		Dim:        128,
	}
	if err := faceRepo.Save(ctx, face); err != nil {
		t.Fatalf("Failed to save face: %v", err)
	}

	t.Run("AddAndRecent", func(t *testing.T) {
		if err := logRepo.Add(ctx, face.ID, 0.87, "uploads/recognized.jpg"); err != nil {
			t.Fatalf("Failed to add log: %v", err)
		}

		logs, err := logRepo.Recent(ctx, 10)
		if err != nil {
			t.Fatalf("Failed to read logs: %v", err)
		}
		if len(logs) != 1 {
			t.Fatalf("Expected 1 log, got %d", len(logs))
		}
		if logs[0].FaceID == nil || *logs[0].FaceID != face.ID {
			t.Error("Expected log to reference the recognized face")
		}
		if logs[0].FaceName != "Carol Example" {
			t.Errorf("Expected joined face name, got '%s'", logs[0].FaceName)
		}
		if logs[0].Confidence != 0.87 {
			t.Errorf("Expected confidence 0.87, got %f", logs[0].Confidence)
		}
	})

	t.Run("FaceDeletionKeepsLog", func(t *testing.T) {
		if _, err := faceRepo.Delete(ctx, face.ID); err != nil {
			t.Fatalf("Failed to delete face: %v", err)
		}

		logs, err := logRepo.Recent(ctx, 10)
		if err != nil {
			t.Fatalf("Failed to read logs: %v", err)
		}
		if len(logs) != 1 {
			t.Fatalf("Expected log to survive face deletion, got %d logs", len(logs))
		}
		if logs[0].FaceID != nil {
			t.Error("Expected face_id to be NULL after face deletion")
		}
		if logs[0].FaceName != "" {
			t.Errorf("Expected empty face name after deletion, got '%s'", logs[0].FaceName)
		}
	})

	t.Run("Count", func(t *testing.T) {
		count, err := logRepo.Count(ctx)
		if err != nil {
			t.Fatalf("Failed to count logs: %v", err)
		}
		if count != 1 {
			t.Errorf("Expected 1 log, got %d", count)
		}
	})
}

func TestMigrations(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()

	applied, err := pool.MigrationsApplied(ctx)
	if err != nil {
		t.Fatalf("Failed to get applied migrations: %v", err)
	}

	expectedMigrations := []string{
		"001_create_faces.sql",
		"002_create_recognition_logs.sql",
	}

	if len(applied) != len(expectedMigrations) {
		t.Errorf("Expected %d migrations, got %d", len(expectedMigrations), len(applied))
	}

	for i, expected := range expectedMigrations {
		if i < len(applied) && applied[i] != expected {
			t.Errorf("Migration %d: expected '%s', got '%s'", i, expected, applied[i])
		}
	}
}
