package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level      string
	Pretty     bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// AxiomConfig holds Axiom logging configuration.
type AxiomConfig struct {
	Send          bool
	APIKey        string
	OrgID         string
	Dataset       string
	FlushInterval time.Duration
}

// JobConfig defines one chunking run.
type JobConfig struct {
	InputPath           string
	TargetBytes         int64
	CodecID             string
	OutputDir           string // empty: <input dir>/<base>_chunks
	VerifyChunks        bool
	MinReductionPercent float64
	S3UploadURL         string // optional s3://bucket/prefix for final artifacts
	ArtifactPassword    string // optional passphrase for encrypted upload
}

// OptimizeConfig controls the optional pre-pass.
type OptimizeConfig struct {
	Enabled         bool
	CompressImages  bool
	ImageQuality    string // high|medium|low|screen
	RemoveMetadata  bool
	CompressStreams bool
}

// MetricsConfig controls the optional Prometheus listener.
type MetricsConfig struct {
	Addr string // empty: no listener
}

// Config is the top-level configuration.
type Config struct {
	Logging  LoggingConfig
	Axiom    AxiomConfig
	Job      JobConfig
	Optimize OptimizeConfig
	Metrics  MetricsConfig
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
	cfg := Config{}

	// Logging defaults
	cfg.Logging = LoggingConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		Pretty:     parseBool(getEnv("LOG_PRETTY", devDefaultPretty())),
		File:       getEnv("LOG_FILE", "logs/pdfchunker.log"),
		MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
		MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "10"), 10),
		MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
		Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
	}

	// Axiom defaults
	baseDataset := getEnv("AXIOM_DATASET", "dev")
	cfg.Axiom = AxiomConfig{
		Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
		APIKey:        getEnv("AXIOM_API_KEY", ""),
		OrgID:         getEnv("AXIOM_ORG_ID", ""),
		Dataset:       baseDataset + "_pdfchunker",
		FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
	}

	// Job defaults
	targetMB := parseFloat(getEnv("TARGET_CHUNK_MB", "5"), 5)
	cfg.Job = JobConfig{
		InputPath:           getEnv("INPUT_PDF", ""),
		TargetBytes:         int64(targetMB * 1024 * 1024),
		CodecID:             getEnv("CODEC", "zip"),
		OutputDir:           getEnv("OUTPUT_DIR", ""),
		VerifyChunks:        parseBool(getEnv("VERIFY_CHUNKS", "0")),
		MinReductionPercent: parseFloat(getEnv("MIN_REDUCTION_PERCENT", "1.0"), 1.0),
		S3UploadURL:         getEnv("S3_UPLOAD_URL", ""),
		ArtifactPassword:    getEnv("ARTIFACT_PASSWORD", ""),
	}

	// Optimization defaults
	cfg.Optimize = OptimizeConfig{
		Enabled:         parseBool(getEnv("OPTIMIZE", "0")),
		CompressImages:  parseBool(getEnv("OPTIMIZE_COMPRESS_IMAGES", "0")),
		ImageQuality:    getEnv("OPTIMIZE_IMAGE_QUALITY", "medium"),
		RemoveMetadata:  parseBool(getEnv("OPTIMIZE_REMOVE_METADATA", "0")),
		CompressStreams: parseBool(getEnv("OPTIMIZE_COMPRESS_STREAMS", "1")),
	}

	cfg.Metrics = MetricsConfig{
		Addr: getEnv("METRICS_ADDR", ""),
	}

	return cfg
}

// Helpers
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func parseFloat(s string, def float64) float64 {
	if s == "" {
		return def
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return def
}

func parseBool(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}

func devDefaultPretty() string {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))
	if env == "dev" || env == "development" || env == "local" {
		return "true"
	}
	return "false"
}
