package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Library  LibraryConfig
	Metadata MetadataConfig
	Ai       AIConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	LogLevel           string
	WsLogFilePath      string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection      string // postgres DSN, or sqlite://<path>; empty disables persistent mode
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	SlowQuery       time.Duration
}

type AuthConfig struct {
	JwtSecret string
}

type LibraryConfig struct {
	CacheTTL       time.Duration
	CacheCleanup   time.Duration
	LocalStorePath string // empty means in-memory
	LocalStoreGC   time.Duration
	EnrichTopic    string
	ChangesChannel string
	EnrichOnSave   bool
}

type MetadataConfig struct {
	FetchTimeout  time.Duration
	MaxBodyBytes  int64
	RatePerSecond float64
	Burst         int
	ResultTTL     time.Duration
	UserAgent     string
	AllowPrivate  bool
}

type AIConfig struct {
	LLMProvider        string // "ollama" or "huggingface"
	LLMModel           string // e.g. "llama3", "qwen2.5"
	OllamaBaseURL      string
	HuggingFaceKey     string
	HuggingFaceBaseURL string
	NarrativeMaxTokens int
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	SampleRatio float64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			LogLevel:           getEnv("LOG_LEVEL", "info"),
			WsLogFilePath:      getEnv("WS_LOG_FILE_PATH", "logs/library-changes.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection:      getEnv("DB_CONNECTION_STRING", ""),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			SlowQuery:       getEnvAsDuration("DB_SLOW_QUERY", time.Second),
		},
		Auth: AuthConfig{
			JwtSecret: getEnv("JWT_SECRET", ""),
		},
		Library: LibraryConfig{
			CacheTTL:       getEnvAsDuration("LIBRARY_CACHE_TTL", 5*time.Minute),
			CacheCleanup:   getEnvAsDuration("LIBRARY_CACHE_CLEANUP", 10*time.Minute),
			LocalStorePath: getEnv("LIBRARY_LOCAL_STORE_PATH", "data/guest"),
			LocalStoreGC:   getEnvAsDuration("LIBRARY_LOCAL_STORE_GC", 10*time.Minute),
			EnrichTopic:    getEnv("LIBRARY_ENRICH_TOPIC", "ENRICH_SOURCE_METADATA"),
			ChangesChannel: getEnv("LIBRARY_CHANGES_CHANNEL", "library:changes"),
			EnrichOnSave:   getEnvAsBool("LIBRARY_ENRICH_ON_SAVE", true),
		},
		Metadata: MetadataConfig{
			FetchTimeout:  getEnvAsDuration("METADATA_FETCH_TIMEOUT", 15*time.Second),
			MaxBodyBytes:  int64(getEnvAsInt("METADATA_MAX_BODY_BYTES", 5*1024*1024)),
			RatePerSecond: getEnvAsFloat("METADATA_RATE_PER_SECOND", 2),
			Burst:         getEnvAsInt("METADATA_BURST", 4),
			ResultTTL:     getEnvAsDuration("METADATA_RESULT_TTL", 30*time.Minute),
			UserAgent:     getEnv("METADATA_USER_AGENT", "research-library/1.0 (+metadata)"),
			AllowPrivate:  getEnvAsBool("METADATA_ALLOW_PRIVATE", false),
		},
		Ai: AIConfig{
			LLMProvider:        getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:           getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			HuggingFaceKey:     getEnv("HUGGINGFACE_API_KEY", ""),
			HuggingFaceBaseURL: getEnv("HUGGINGFACE_BASE_URL", ""),
			NarrativeMaxTokens: getEnvAsInt("NARRATIVE_MAX_TOKENS", 1200),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "research-library-backend"),
			SampleRatio: getEnvAsFloat("OTEL_SAMPLE_RATIO", 1),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go duration strings ("90s", "5m").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil && value > 0 {
		return value
	}
	return fallback
}
