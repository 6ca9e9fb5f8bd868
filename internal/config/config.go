package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage drivers understood by the composition root.
const (
	StorageFile     = "file"
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config holds client runtime configuration sourced from env vars.
type Config struct {
	APIBaseURL     string
	AuthPrefix     string
	RequestTimeout time.Duration
	Storage        StorageConfig
	LogLevel       string
	LogFormat      string
}

// StorageConfig selects and parameterizes the durable local storage driver.
type StorageConfig struct {
	Driver        string
	Path          string
	RedisAddr     string
	RedisUsername string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
	DatabaseURL   string
}

// Load reads client configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		APIBaseURL: fallback(os.Getenv("STOREFRONT_API_URL"), "https://localhost:7158/"),
		AuthPrefix: fallback(os.Getenv("STOREFRONT_AUTH_PREFIX"), "user"),
		LogLevel:   fallback(os.Getenv("LOG_LEVEL"), "info"),
		LogFormat:  fallback(os.Getenv("LOG_FORMAT"), "text"),
		Storage: StorageConfig{
			Driver:        strings.ToLower(fallback(os.Getenv("STOREFRONT_STORAGE"), StorageFile)),
			Path:          fallback(os.Getenv("STOREFRONT_STORAGE_PATH"), defaultStoragePath()),
			RedisAddr:     fallback(os.Getenv("REDIS_ADDR"), "localhost:6379"),
			RedisUsername: strings.TrimSpace(os.Getenv("REDIS_USERNAME")),
			RedisPassword: strings.TrimSpace(os.Getenv("REDIS_PASSWORD")),
			KeyPrefix:     fallback(os.Getenv("STOREFRONT_KEY_PREFIX"), "storefront:"),
			DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		},
	}

	cfg.RequestTimeout = positiveDuration(os.Getenv("STOREFRONT_TIMEOUT_SECONDS"), time.Second, 30*time.Second)

	if db, err := strconv.Atoi(fallback(os.Getenv("REDIS_DB"), "0")); err == nil && db >= 0 {
		cfg.Storage.RedisDB = db
	}

	switch cfg.AuthPrefix {
	case "user", "auth":
	default:
		return Config{}, fmt.Errorf("STOREFRONT_AUTH_PREFIX must be user or auth, got %q", cfg.AuthPrefix)
	}

	switch cfg.Storage.Driver {
	case StorageFile, StorageMemory, StorageRedis:
	case StoragePostgres:
		if cfg.Storage.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required for postgres storage")
		}
	default:
		return Config{}, fmt.Errorf("unknown STOREFRONT_STORAGE driver %q", cfg.Storage.Driver)
	}

	return cfg, nil
}

// FakeAPIConfig configures the local test backend.
type FakeAPIConfig struct {
	Port           string
	JWTSecret      string
	JWTIssuer      string
	JWTTTL         time.Duration
	CORSOrigins    []string
	RateLimitRPS   int
	RateLimitBurst int
	MenuSeedPath   string
	LogLevel       string
	LogFormat      string
}

// LoadFakeAPI reads the test backend configuration from the environment.
func LoadFakeAPI() (FakeAPIConfig, error) {
	cfg := FakeAPIConfig{
		Port:         fallback(os.Getenv("PORT"), "7158"),
		JWTSecret:    strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:    fallback(os.Getenv("JWT_ISSUER"), "storefront-fakeapi"),
		CORSOrigins:  parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		MenuSeedPath: strings.TrimSpace(os.Getenv("MENU_SEED_PATH")),
		LogLevel:     fallback(os.Getenv("LOG_LEVEL"), "info"),
		LogFormat:    fallback(os.Getenv("LOG_FORMAT"), "text"),
	}

	cfg.JWTTTL = positiveDuration(os.Getenv("JWT_TTL_MINUTES"), time.Minute, 60*time.Minute)
	cfg.RateLimitRPS = positiveInt(os.Getenv("RATE_LIMIT_RPS"), 50)
	cfg.RateLimitBurst = positiveInt(os.Getenv("RATE_LIMIT_BURST"), 100)

	if cfg.JWTSecret == "" {
		return FakeAPIConfig{}, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c FakeAPIConfig) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".storefront.json"
	}
	return dir + string(os.PathSeparator) + "storefront" + string(os.PathSeparator) + "local.json"
}

func positiveDuration(value string, unit, def time.Duration) time.Duration {
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n > 0 {
		return time.Duration(n) * unit
	}
	return def
}

func positiveInt(value string, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n > 0 {
		return n
	}
	return def
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
