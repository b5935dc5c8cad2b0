package config

import "testing"

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	if cfg.Job.TargetBytes != 5*1024*1024 {
		t.Errorf("TargetBytes = %d, want %d", cfg.Job.TargetBytes, 5*1024*1024)
	}
	if cfg.Job.CodecID != "zip" {
		t.Errorf("CodecID = %q, want zip", cfg.Job.CodecID)
	}
	if cfg.Job.MinReductionPercent != 1.0 {
		t.Errorf("MinReductionPercent = %f, want 1.0", cfg.Job.MinReductionPercent)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Optimize.Enabled {
		t.Error("optimization should be off by default")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("INPUT_PDF", "/data/report.pdf")
	t.Setenv("TARGET_CHUNK_MB", "2.5")
	t.Setenv("CODEC", "zstd")
	t.Setenv("OPTIMIZE", "true")
	t.Setenv("OPTIMIZE_IMAGE_QUALITY", "screen")
	t.Setenv("MIN_REDUCTION_PERCENT", "0.5")
	t.Setenv("VERIFY_CHUNKS", "yes")
	t.Setenv("METRICS_ADDR", ":9090")

	cfg := FromEnv()

	if cfg.Job.InputPath != "/data/report.pdf" {
		t.Errorf("InputPath = %q", cfg.Job.InputPath)
	}
	if want := int64(2.5 * 1024 * 1024); cfg.Job.TargetBytes != want {
		t.Errorf("TargetBytes = %d, want %d", cfg.Job.TargetBytes, want)
	}
	if cfg.Job.CodecID != "zstd" {
		t.Errorf("CodecID = %q, want zstd", cfg.Job.CodecID)
	}
	if !cfg.Optimize.Enabled || cfg.Optimize.ImageQuality != "screen" {
		t.Errorf("Optimize = %+v", cfg.Optimize)
	}
	if cfg.Job.MinReductionPercent != 0.5 {
		t.Errorf("MinReductionPercent = %f", cfg.Job.MinReductionPercent)
	}
	if !cfg.Job.VerifyChunks {
		t.Error("VerifyChunks should parse 'yes' as true")
	}
	if cfg.Metrics.Addr != ":9090" {
		t.Errorf("Metrics.Addr = %q", cfg.Metrics.Addr)
	}
}

func TestParseHelpersFallBackOnGarbage(t *testing.T) {
	if got := parseInt("not-a-number", 7); got != 7 {
		t.Errorf("parseInt = %d, want 7", got)
	}
	if got := parseFloat("x", 1.5); got != 1.5 {
		t.Errorf("parseFloat = %f, want 1.5", got)
	}
	if parseBool("maybe") {
		t.Error("parseBool should reject unknown values")
	}
}
