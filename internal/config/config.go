package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultBaseURL is the production API endpoint used when neither the
// secrets file nor the environment provides one.
const DefaultBaseURL = "https://ticket-management-api-production-62d3.up.railway.app"

// Config aggregates runtime configuration for the console.
type Config struct {
	API    APIConfig
	Logger LoggerConfig
	Admin  AdminConfig
}

// APIConfig holds remote API connection values.
type APIConfig struct {
	BaseURL               string
	RequestTimeoutSeconds int
	HealthTimeoutSeconds  int
}

// LoggerConfig configures logging behavior. Format is "console" or
// "json"; a terminal tool defaults to the readable encoder.
type LoggerConfig struct {
	Level  string
	Format string
}

// AdminConfig defines the shared admin credential gate.
type AdminConfig struct {
	Username     string
	PasswordHash string
	BcryptCost   int
}

// secretsFile mirrors the hosted deployment's secrets store: a small JSON
// document consulted before the environment.
type secretsFile struct {
	APIBaseURL string `json:"API_BASE_URL"`
}

// Load reads configuration, resolving the API base URL from the secrets
// file first, then the environment, then the hardcoded default.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		API: APIConfig{
			BaseURL:               resolveBaseURL(),
			RequestTimeoutSeconds: getEnvAsInt("API_REQUEST_TIMEOUT_SECONDS", 30),
			HealthTimeoutSeconds:  getEnvAsInt("API_HEALTH_TIMEOUT_SECONDS", 10),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Admin: AdminConfig{
			Username:     getEnv("ADMIN_USERNAME", "admin"),
			PasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
			BcryptCost:   getEnvAsInt("ADMIN_BCRYPT_COST", 12),
		},
	}

	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("empty API base URL")
	}
	return cfg, nil
}

// resolveBaseURL applies the layered lookup order: secrets file, then
// environment, then default.
func resolveBaseURL() string {
	if url := readSecretsBaseURL(getEnv("SECRETS_FILE", ".secrets.json")); url != "" {
		return url
	}
	if url := os.Getenv("API_BASE_URL"); url != "" {
		return url
	}
	return DefaultBaseURL
}

func readSecretsBaseURL(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var secrets secretsFile
	if err := json.Unmarshal(data, &secrets); err != nil {
		return ""
	}
	return secrets.APIBaseURL
}

// RequestTimeout returns the transport-level default timeout.
func (a APIConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// HealthTimeout returns the bounded wait for the connectivity probe.
func (a APIConfig) HealthTimeout() time.Duration {
	if a.HealthTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(a.HealthTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
