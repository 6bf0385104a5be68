package cmd

import (
	"errors"
	"fmt"

	"github.com/kozaktomas/facegate/internal/cache"
	"github.com/kozaktomas/facegate/internal/config"
	"github.com/kozaktomas/facegate/internal/database/postgres"
	"github.com/kozaktomas/facegate/internal/extractor"
	"github.com/kozaktomas/facegate/internal/recognition"
)

// buildService constructs a fully wired recognition service: PostgreSQL
// repositories, descriptor-service client, and the Redis cache (falling
// back to an in-process cache when REDIS_URL is unset).
func buildService(cfg *config.Config) (*recognition.Service, *extractor.Client, error) {
	if cfg.Database.URL == "" {
		return nil, nil, errors.New("DATABASE_URL environment variable is required")
	}

	fmt.Printf("Connecting to PostgreSQL database...\n")
	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}

	faceRepo := postgres.NewFaceRepository(pool)
	logRepo := postgres.NewLogRepository(pool)
	client := extractor.NewClient(cfg.Extractor.URL, cfg.Extractor.MinFaceSize)

	var store cache.Store
	if cfg.Redis.URL != "" {
		redisStore, err := cache.NewRedisStore(cfg.Redis.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		store = redisStore
		fmt.Printf("Recognition cache enabled (Redis)\n")
	} else {
		store = cache.NewMemoryStore()
		fmt.Printf("REDIS_URL not set, using in-process recognition cache\n")
	}

	return recognition.NewService(client, faceRepo, logRepo, store, cfg), client, nil
}
