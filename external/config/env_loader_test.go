package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/voicecap")
	t.Setenv("OPENAI_API_KEY", "sk-test")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.PipelineTimeout != 60*time.Second || cfg.MaxUploadBytes != 25<<20 {
		t.Fatalf("unexpected server defaults: %+v", cfg)
	}
	if cfg.DefaultTimezone != "UTC" || cfg.DefaultTranscribeLanguage != "auto" {
		t.Fatalf("unexpected locale defaults: %+v", cfg)
	}
	if cfg.TranscriberProvider != "openai" || cfg.DatabaseDriver != "postgres" || cfg.CaptureWebhookMaxAttempts != 3 {
		t.Fatalf("unexpected provider defaults: %+v", cfg)
	}
	if cfg.IsDevelopment() {
		t.Fatal("expected production by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENV", "development")
	t.Setenv("PIPELINE_TIMEOUT", "15s")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DEFAULT_TIMEZONE", "Asia/Tokyo")
	t.Setenv("CAPTURE_WEBHOOK_URL", "https://hooks.example.com/capture")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.IsDevelopment() || cfg.PipelineTimeout != 15*time.Second || cfg.DatabaseDriver != "sqlite" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.DefaultTimezone != "Asia/Tokyo" || cfg.CaptureWebhookURL != "https://hooks.example.com/capture" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when required variables are missing")
	}
}

func TestLoad_InvalidValueFailsValidation(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DEFAULT_TIMEZONE", "Mars/Olympus")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}
