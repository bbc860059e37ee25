package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64
	RateLimitRPS   int
	RateLimitBurst int

	// Rules
	RulesConfigPath string

	// Narrative rewriter
	LLMAPIKey      string
	LLMBaseURL     string
	LLMModelName   string
	LLMTemperature float64
	LLMMaxTokens   int
	LLMTimeout     time.Duration

	// PHI redaction before rewriting
	RedactPHI    bool
	DLPRulesPath string

	// Guideline documents
	UnidocLicenseKey         string
	GuidelineCacheEnabled    bool
	GuidelineCacheTTL        time.Duration
	GuidelineProfilesEnabled bool

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Kafka
	KafkaEnabled      bool
	KafkaBrokers      []string
	KafkaGroupID      string
	KafkaNotesTopic   string
	KafkaResultsTopic string
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8090"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 60*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 10*1024*1024)),
		RateLimitRPS:   getIntEnv("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 40),

		RulesConfigPath: getEnv("RULES_CONFIG_PATH", ""),

		LLMAPIKey:      getEnv("LLM_API_KEY", ""),
		LLMBaseURL:     getEnv("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
		LLMModelName:   getEnv("LLM_MODEL_NAME", "llama-3.3-70b-versatile"),
		LLMTemperature: getFloatEnv("LLM_TEMPERATURE", 0.2),
		LLMMaxTokens:   getIntEnv("LLM_MAX_TOKENS", 1000),
		LLMTimeout:     getDuration("LLM_TIMEOUT", 30*time.Second),

		RedactPHI:    getBoolEnv("REWRITE_REDACT_PHI", false),
		DLPRulesPath: getEnv("DLP_RULES_PATH", ""),

		UnidocLicenseKey:         getEnv("UNIDOC_LICENSE_API_KEY", ""),
		GuidelineCacheEnabled:    getBoolEnv("GUIDELINE_CACHE_ENABLED", false),
		GuidelineCacheTTL:        getDuration("GUIDELINE_CACHE_TTL", 24*time.Hour),
		GuidelineProfilesEnabled: getBoolEnv("GUIDELINE_PROFILES_ENABLED", false),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "synaptica"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "synaptica123"),
		PostgresDB:       getEnv("POSTGRES_DB", "synaptica"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		KafkaEnabled:      getBoolEnv("KAFKA_ENABLED", false),
		KafkaBrokers:      getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:      getEnv("KAFKA_GROUP_ID", "admission-review"),
		KafkaNotesTopic:   getEnv("KAFKA_NOTES_TOPIC", "clinical-notes"),
		KafkaResultsTopic: getEnv("KAFKA_RESULTS_TOPIC", "admission-reviews"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getStringSliceEnv splits a comma-separated value.
func getStringSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
