package app

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AppAddr != ":8080" {
		t.Fatalf("unexpected addr: %q", cfg.AppAddr)
	}
	if cfg.ResultTTL != time.Hour {
		t.Fatalf("unexpected result ttl: %v", cfg.ResultTTL)
	}
	if cfg.MaxUploadBytes != 20*1024*1024 {
		t.Fatalf("unexpected upload cap: %d", cfg.MaxUploadBytes)
	}
	if cfg.IsProduction() {
		t.Fatalf("development config must not report production")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("RESULT_TTL", "30m")
	t.Setenv("INLINE_ROW_LIMIT", "10")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production mode")
	}
	if cfg.ResultTTL != 30*time.Minute {
		t.Fatalf("unexpected result ttl: %v", cfg.ResultTTL)
	}
	if cfg.InlineRowLimit != 10 {
		t.Fatalf("unexpected inline row limit: %d", cfg.InlineRowLimit)
	}
}
