package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the server settings. The CLI conversion path needs none of
// this; only `markdoc serve` loads it.
type Config struct {
	Port string

	// Optional bearer token; auth is disabled when empty.
	APIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration
}

func defaults() Config {
	return Config{
		Port:           "8090",
		WorkerCount:    4,
		MaxQueueSize:   100,
		MaxUploadBytes: 8 << 20, // source files, not scanned books
		JobTTL:         1 * time.Hour,
	}
}

// Load reads configuration from the environment, after loading .env if one
// is present.
func Load() Config {
	_ = godotenv.Load()
	cfg := defaults()
	applyEnv(&cfg)
	return cfg
}

// fileConfig is the YAML shape; durations are written as Go duration
// strings ("30m", "1h").
type fileConfig struct {
	Port           string `yaml:"port"`
	APIKey         string `yaml:"api_key"`
	Workers        int    `yaml:"workers"`
	MaxQueue       int    `yaml:"max_queue"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
	JobTTL         string `yaml:"job_ttl"`
}

// LoadFile layers a YAML config file over the defaults, with environment
// variables taking precedence over both.
func LoadFile(path string) (Config, error) {
	_ = godotenv.Load()
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if fc.Port != "" {
		cfg.Port = fc.Port
	}
	if fc.APIKey != "" {
		cfg.APIKey = fc.APIKey
	}
	if fc.Workers > 0 {
		cfg.WorkerCount = fc.Workers
	}
	if fc.MaxQueue > 0 {
		cfg.MaxQueueSize = fc.MaxQueue
	}
	if fc.MaxUploadBytes > 0 {
		cfg.MaxUploadBytes = fc.MaxUploadBytes
	}
	if fc.JobTTL != "" {
		d, err := time.ParseDuration(fc.JobTTL)
		if err != nil {
			return cfg, fmt.Errorf("parse config job_ttl: %w", err)
		}
		cfg.JobTTL = d
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("MARKDOC_API_KEY", cfg.APIKey)
	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)
	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.JobTTL = envDuration("JOB_TTL", cfg.JobTTL)
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port must not be empty")
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("worker count must be positive")
	}
	if c.MaxQueueSize <= 0 {
		return fmt.Errorf("max queue size must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}
	if c.JobTTL <= 0 {
		return fmt.Errorf("job TTL must be positive")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
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

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
