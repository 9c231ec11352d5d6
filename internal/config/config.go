package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr            string
	MongoURI            string
	MongoDB             string
	JWTSecret           string
	JWTIssuer           string
	AllowedOrigins      []string
	Environment         string
	SessionTTL          time.Duration
	ExpirySweepEnabled  bool
	ExpirySweepInterval time.Duration
}

func Load() Config {
	return Config{
		HTTPAddr:            getenv("HTTP_ADDR", ":8080"),
		MongoURI:            getenv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:             getenv("MONGO_DB", "rollmark"),
		JWTSecret:           getenv("JWT_SECRET", "dev-secret"),
		JWTIssuer:           getenv("JWT_ISSUER", "rollmark-identity"),
		AllowedOrigins:      getenvList("ALLOWED_ORIGINS", "*"),
		Environment:         getenv("ENVIRONMENT", "development"),
		SessionTTL:          getenvDuration("SESSION_TTL", 2*time.Minute),
		ExpirySweepEnabled:  getenvBool("EXPIRY_SWEEP_ENABLED", true),
		ExpirySweepInterval: getenvDuration("EXPIRY_SWEEP_INTERVAL", time.Minute),
	}
}

func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvList(key, fallback string) []string {
	raw := getenv(key, fallback)
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func getenvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	if val := os.Getenv(key + "_SECONDS"); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
