package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port            string
	DatabaseURL     string
	DefaultLanguage string

	GatewayBaseURL    string
	GatewayAccountSID string
	GatewayAuthToken  string
	GatewayFrom       string
	GatewayTimeout    time.Duration

	PollInterval time.Duration
	PollBatch    int
	PollWorkers  int
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("no .env file found, using environment only")
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		DatabaseURL:     getEnv("DATABASE_URL", "./restobot.db"),
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "en"),

		GatewayBaseURL:    getEnv("GATEWAY_BASE_URL", "https://api.twilio.com"),
		GatewayAccountSID: getEnv("GATEWAY_ACCOUNT_SID", ""),
		GatewayAuthToken:  getEnv("GATEWAY_AUTH_TOKEN", ""),
		GatewayFrom:       getEnv("GATEWAY_FROM", ""),
		GatewayTimeout:    getEnvSeconds("GATEWAY_TIMEOUT_SECONDS", 15),

		PollInterval: getEnvSeconds("POLL_INTERVAL_SECONDS", 60),
		PollBatch:    getEnvInt("POLL_BATCH", 50),
		PollWorkers:  getEnvInt("POLL_WORKERS", 4),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvSeconds(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Second
}
