package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Ai        AIConfig
	Events    EventsConfig
	RateLimit RateLimitConfig
	Telemetry TelemetryConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	GroqAPIKey     string // empty means the reply generator answers with a placeholder
	GroqBaseURL    string
	LLMModel       string
	Temperature    float64
	MaxTokens      int
	TimeoutSeconds int
}

type EventsConfig struct {
	Topic   string // in-process watermill topic
	NatsURL string // empty disables the NATS relay
}

type RateLimitConfig struct {
	ChatPerMinute int // 0 disables limiting
	RedisURL      string
}

type TelemetryConfig struct {
	OtelEnabled  bool
	OtelEndpoint string
	ServiceName  string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			GroqAPIKey:     getEnv("GROQ_API_KEY", ""),
			GroqBaseURL:    getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
			LLMModel:       getEnv("LLM_MODEL", "llama3-8b-8192"),
			Temperature:    getEnvAsFloat("LLM_TEMPERATURE", 0.5),
			MaxTokens:      getEnvAsInt("LLM_MAX_TOKENS", 512),
			TimeoutSeconds: getEnvAsInt("LLM_TIMEOUT_SECONDS", 30),
		},
		Events: EventsConfig{
			Topic:   getEnv("EVENTS_TOPIC", "CHAT_TURN_COMPLETED"),
			NatsURL: getEnv("NATS_URL", ""),
		},
		RateLimit: RateLimitConfig{
			ChatPerMinute: getEnvAsInt("CHAT_RATE_LIMIT_PER_MINUTE", 20),
			RedisURL:      getEnv("REDIS_URL", ""),
		},
		Telemetry: TelemetryConfig{
			OtelEnabled:  getEnv("OTEL_ENABLED", "false") == "true",
			OtelEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "support-chat-backend"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
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
