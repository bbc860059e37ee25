package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "LLM_MODEL_NAME", "LLM_TEMPERATURE", "LLM_MAX_TOKENS",
		"REWRITE_REDACT_PHI", "KAFKA_ENABLED", "GUIDELINE_CACHE_ENABLED", "GUIDELINE_PROFILES_ENABLED"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.ServerPort != "8090" {
		t.Fatalf("expected default port 8090, got %s", cfg.ServerPort)
	}
	if cfg.LLMModelName != "llama-3.3-70b-versatile" || cfg.LLMTemperature != 0.2 || cfg.LLMMaxTokens != 1000 {
		t.Fatalf("unexpected rewriter defaults %+v", cfg)
	}
	if cfg.RedactPHI || cfg.KafkaEnabled || cfg.GuidelineCacheEnabled || cfg.GuidelineProfilesEnabled {
		t.Fatal("optional integrations must default to disabled")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("LLM_TEMPERATURE", "0.5")
	t.Setenv("GUIDELINE_CACHE_TTL", "2h")
	t.Setenv("RATE_LIMIT_RPS", "not-a-number")

	cfg := Load()
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "kafka-2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if !cfg.KafkaEnabled {
		t.Fatal("expected kafka enabled")
	}
	if cfg.LLMTemperature != 0.5 {
		t.Fatalf("expected temperature 0.5, got %v", cfg.LLMTemperature)
	}
	if cfg.GuidelineCacheTTL != 2*time.Hour {
		t.Fatalf("expected 2h ttl, got %v", cfg.GuidelineCacheTTL)
	}
	if cfg.RateLimitRPS != 20 {
		t.Fatalf("invalid value should fall back to default, got %d", cfg.RateLimitRPS)
	}
}
