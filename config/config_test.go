package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Workers != 4 || cfg.FailurePolicy != "skip" {
		t.Errorf("analysis defaults = %+v", cfg.AnalysisConfig)
	}
	if cfg.HuggingFace.Timeout != 60*time.Second {
		t.Errorf("HF timeout = %v, want 60s", cfg.HuggingFace.Timeout)
	}
	if cfg.Valkey.Enabled || cfg.Kafka.Enabled {
		t.Error("cache and results stream should be off by default")
	}
	if cfg.API.Addr != ":8000" {
		t.Errorf("API addr = %q", cfg.API.Addr)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("CLASSIFIER_WORKERS", "16")
	t.Setenv("GENERAL_CLASSIFIER", "vader")
	t.Setenv("HF_API_TOKEN", "hf_secret")
	t.Setenv("VALKEY_TTL", "2h")
	t.Setenv("KAFKA_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Workers != 16 || cfg.GeneralClassifier != "vader" {
		t.Errorf("analysis config = %+v", cfg.AnalysisConfig)
	}
	if cfg.HuggingFace.APIToken != "hf_secret" {
		t.Errorf("HF token = %q", cfg.HuggingFace.APIToken)
	}
	if cfg.Valkey.TTL != 2*time.Hour || !cfg.Kafka.Enabled {
		t.Errorf("valkey/kafka = %+v / %+v", cfg.Valkey, cfg.Kafka)
	}
}

func TestLoad_BadValue(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("CLASSIFIER_WORKERS", "many")

	if _, err := Load(); err == nil {
		t.Error("Load() with non-numeric workers should fail")
	}
}
