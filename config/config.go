package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Port  string `validate:"required,numeric"`
	DBUrl string
	// Gemini structured extraction
	GeminiAPIKey string `validate:"required"` // startup fails without it
	GeminiModel  string `validate:"required"`
	// Hashing of sensitive identifiers (id numbers). Empty salt is allowed
	// but weakens the hash; it must never prevent startup.
	IDHashSalt string
	// WhatsApp Cloud API
	WhatsAppVerifyToken   string // GET handshake token
	WhatsAppAccessToken   string // bearer for media metadata/download and outbound messages
	WhatsAppPhoneNumberID string // sender identity for outbound replies
	GraphAPIBaseURL       string `validate:"required,url"`
	// Scratch directory for downloaded attachments
	UploadDir string `validate:"required"`
	// Redis Configuration (rate limiting)
	RedisURL      string
	RedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds    int
	RateLimitWebhookThreshold int
	RateLimitGlobalThreshold  int
}

func LoadConfig() (*Config, error) {
	// .env is only effective locally; ignored in production when the file is absent.
	_ = godotenv.Load()

	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		DBUrl: getEnv("DATABASE_URL", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		IDHashSalt: getEnv("ID_HASH_SALT", ""),

		WhatsAppVerifyToken:   getEnv("WHATSAPP_VERIFY_TOKEN", ""),
		WhatsAppAccessToken:   getEnv("WHATSAPP_ACCESS_TOKEN", ""),
		WhatsAppPhoneNumberID: getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
		GraphAPIBaseURL:       strings.TrimRight(getEnv("GRAPH_API_BASE_URL", "https://graph.facebook.com/v20.0"), "/"),

		UploadDir: getEnv("UPLOAD_DIR", "data/uploads"),

		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		RateLimitWindowSeconds:    getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitWebhookThreshold: getEnvInt("RATE_LIMIT_WEBHOOK_THRESHOLD", 30),
		RateLimitGlobalThreshold:  getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
	}

	// The extraction backend is the one credential the service cannot run without.
	if cfg.GeminiAPIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}
