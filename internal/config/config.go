package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed matching.yaml
var matchingYAML []byte

type Config struct {
	Detector DetectorConfig
	Database DatabaseConfig
	PhotoDB  PhotoDBConfig
	Artifact ArtifactConfig
	Library  LibraryConfig
	Matching MatchingConfig
}

type DetectorConfig struct {
	URL              string // base URL of the face detection service (defaults to http://localhost:8000)
	FastEndpoint     string // fast, lower-recall detector endpoint (defaults to /detect/fast)
	AccurateEndpoint string // slower, higher-recall detector endpoint (defaults to /detect/accurate)
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL for the identity store
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type PhotoDBConfig struct {
	DSN string // MariaDB DSN of the photo application database (e.g. app:app@tcp(db:3306)/photoapp)
}

type ArtifactConfig struct {
	Dir string // directory for thumbnail artifacts (defaults to ./data/thumbnails)
}

type LibraryConfig struct {
	Dir string // directory holding original photos for batch reprocessing
}

// MatchingConfig holds the adaptive matcher thresholds, loaded from the
// embedded matching.yaml.
type MatchingConfig struct {
	Thresholds struct {
		SingleSample float64 `yaml:"single_sample"`
		FewSamples   float64 `yaml:"few_samples"`
		ManySamples  float64 `yaml:"many_samples"`
	} `yaml:"thresholds"`
	ManySamplesAt int `yaml:"many_samples_at"`
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

// envStr reads an environment variable, falling back to a default when unset.
func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func Load() *Config {
	var matching MatchingConfig
	if err := yaml.Unmarshal(matchingYAML, &matching); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded matching.yaml: " + err.Error())
	}

	return &Config{
		Detector: DetectorConfig{
			URL:              envStr("DETECTOR_URL", "http://localhost:8000"),
			FastEndpoint:     envStr("DETECTOR_FAST_ENDPOINT", "/detect/fast"),
			AccurateEndpoint: envStr("DETECTOR_ACCURATE_ENDPOINT", "/detect/accurate"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		PhotoDB: PhotoDBConfig{
			DSN: os.Getenv("PHOTO_DATABASE_URL"),
		},
		Artifact: ArtifactConfig{
			Dir: envStr("ARTIFACT_DIR", "data/thumbnails"),
		},
		Library: LibraryConfig{
			Dir: os.Getenv("LIBRARY_DIR"),
		},
		Matching: matching,
	}
}
