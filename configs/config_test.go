package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "MODEL_PROVIDER", "RESOLVE_CONCURRENCY", "VIDEO_POLL_TIMEOUT", "ORCHESTRATE_MODE"} {
		t.Setenv(key, "")
	}
	cfg := LoadConfig()
	if cfg.Port != "3000" || cfg.Model.Provider != "gemini" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Pipeline.ResolveConcurrency != 1 || cfg.Pipeline.VideoPollTimeout != 5*time.Minute || cfg.Pipeline.Mode != "resolved" {
		t.Errorf("pipeline = %+v", cfg.Pipeline)
	}
	if cfg.Pipeline.ScratchDir == "" && os.Getenv("SCRATCH_DIR") == "" {
		t.Error("scratch dir should default to the temp dir")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("RESOLVE_CONCURRENCY", "4")
	t.Setenv("VIDEO_POLL_INTERVAL", "500ms")
	t.Setenv("TEXT_SOURCE_MAX_CHARS", "not-a-number")
	cfg := LoadConfig()
	if cfg.Pipeline.ResolveConcurrency != 4 || cfg.Pipeline.VideoPollInterval != 500*time.Millisecond {
		t.Errorf("pipeline = %+v", cfg.Pipeline)
	}
	if cfg.Pipeline.TextMaxChars != 12000 {
		t.Errorf("invalid number should fall back to default, got %d", cfg.Pipeline.TextMaxChars)
	}
}

func TestR2Enabled(t *testing.T) {
	if (R2{}).Enabled() {
		t.Error("empty config should be disabled")
	}
	if !(R2{AccountID: "a", AccessKey: "k", SecretKey: "s", BucketName: "b"}).Enabled() {
		t.Error("full config should be enabled")
	}
}
