package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var profilesYAML []byte

type Config struct {
	Extractor   ExtractorConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Cache       CacheConfig
	Recognition RecognitionConfig
	Storage     StorageConfig
	Profiles    ProfilesConfig
}

type ExtractorConfig struct {
	URL         string // face descriptor service base URL (defaults to http://localhost:8000)
	Dim         int    // descriptor dimension (defaults to 128)
	MinFaceSize int    // minimum face bounding box size in pixels (defaults to 50)
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type RedisConfig struct {
	URL string // Redis connection URL; empty falls back to the in-memory cache
}

type CacheConfig struct {
	TTLSeconds int // recognition cache expiry window (default 3600)
}

type RecognitionConfig struct {
	Threshold          float64 // minimum similarity to declare a match (default 0.6)
	DuplicateThreshold float64 // similarity at which enrollment is rejected (default 0.7)
	Profile            string  // named threshold profile from profiles.yaml (overrides defaults)
}

type StorageConfig struct {
	UploadDir string // directory for stored enrollment/recognition images (default ./uploads)
}

type ProfilesConfig struct {
	Profiles map[string]ThresholdProfile `yaml:"profiles"`
}

// ThresholdProfile is a named pair of matching thresholds.
type ThresholdProfile struct {
	Recognition float64 `yaml:"recognition"`
	Duplicate   float64 `yaml:"duplicate"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var profiles ProfilesConfig
	if err := yaml.Unmarshal(profilesYAML, &profiles); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded profiles.yaml: " + err.Error())
	}

	cfg := &Config{
		Extractor: ExtractorConfig{
			URL:         envString("EXTRACTOR_URL", "http://localhost:8000"),
			Dim:         envInt("EXTRACTOR_DIM", 128),
			MinFaceSize: envInt("MIN_FACE_SIZE", 50),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Cache: CacheConfig{
			TTLSeconds: envInt("CACHE_TTL_SECONDS", 3600),
		},
		Recognition: RecognitionConfig{
			Threshold:          envFloat("RECOGNITION_THRESHOLD", 0.6),
			DuplicateThreshold: envFloat("DUPLICATE_THRESHOLD", 0.7),
			Profile:            os.Getenv("RECOGNITION_PROFILE"),
		},
		Storage: StorageConfig{
			UploadDir: envString("UPLOAD_DIR", "./uploads"),
		},
		Profiles: profiles,
	}

	// A named profile overrides the individual threshold env vars.
	if p, ok := cfg.Profiles.Profiles[cfg.Recognition.Profile]; ok {
		cfg.Recognition.Threshold = p.Recognition
		cfg.Recognition.DuplicateThreshold = p.Duplicate
	}

	return cfg
}

// GetProfile returns a named threshold profile, with fallback to the loaded thresholds.
func (c *Config) GetProfile(name string) ThresholdProfile {
	if p, ok := c.Profiles.Profiles[name]; ok {
		return p
	}
	return ThresholdProfile{
		Recognition: c.Recognition.Threshold,
		Duplicate:   c.Recognition.DuplicateThreshold,
	}
}
