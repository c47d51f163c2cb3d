package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Auth
	SpliceAPIKey string

	// Local include search path, in order
	IncludeDirs []string

	// Pathstore remote sources (disabled when URL is empty)
	PathstoreURL    string
	PathstoreAPIKey string
	PathstorePrefix string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Request limits
	MaxRequestBytes int64

	// Resolver defaults
	MaxIncludeDepth int
	PragmaOnce      bool

	// Job state
	JobTTL time.Duration
}

// LoadDotenv reads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotenv(files ...string) error {
	for _, f := range files {
		err := godotenv.Load(f)
		if err == nil || errors.Is(err, os.ErrNotExist) {
			continue
		}
		return fmt.Errorf("load %s: %w", f, err)
	}
	return nil
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		SpliceAPIKey: os.Getenv("SPLICE_API_KEY"),

		IncludeDirs: envList("INCLUDE_DIRS"),

		PathstoreURL:    os.Getenv("PATHSTORE_URL"),
		PathstoreAPIKey: os.Getenv("PATHSTORE_API_KEY"),
		PathstorePrefix: envOr("PATHSTORE_PREFIX", "sources"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxRequestBytes: envInt64("MAX_REQUEST_BYTES", 10485760), // 10MB

		MaxIncludeDepth: envInt("MAX_INCLUDE_DEPTH", 64),
		PragmaOnce:      envBool("PRAGMA_ONCE", false),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxRequestBytes <= 0 {
		cfg.MaxRequestBytes = 10485760
	}
	if cfg.MaxIncludeDepth < 0 {
		cfg.MaxIncludeDepth = 64
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.SpliceAPIKey == "" {
		return fmt.Errorf("SPLICE_API_KEY is required")
	}
	for _, dir := range c.IncludeDirs {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("INCLUDE_DIRS: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("INCLUDE_DIRS: %s is not a directory", dir)
		}
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
