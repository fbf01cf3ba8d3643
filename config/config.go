package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Remote   RemoteConfig
	Fallback FallbackConfig
	App      AppConfig
}

type ServerConfig struct {
	Port        string
	CORSOrigins string
}

type RemoteConfig struct {
	BaseURL        string
	CRUDTimeout    time.Duration
	ExecuteTimeout time.Duration
}

// FallbackConfig selects and configures the snapshot mirror backend.
// Backend is "file" or "redis".
type FallbackConfig struct {
	Backend     string
	DataDir     string
	RedisAddr   string
	RefreshCron string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:5173"),
		},
		Remote: RemoteConfig{
			BaseURL:        getEnv("REMOTE_API_URL", "http://localhost:8000/api"),
			CRUDTimeout:    getEnvAsDuration("CRUD_TIMEOUT", 15*time.Second),
			ExecuteTimeout: getEnvAsDuration("EXECUTE_TIMEOUT", 10*time.Minute),
		},
		Fallback: FallbackConfig{
			Backend:     getEnv("FALLBACK_BACKEND", "file"),
			DataDir:     getEnv("DATA_DIR", "data"),
			RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
			RefreshCron: getEnv("MIRROR_REFRESH_CRON", "0 */5 * * * *"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Remote.BaseURL == "" {
		return fmt.Errorf("REMOTE_API_URL is required")
	}

	switch c.Fallback.Backend {
	case "file", "redis":
	default:
		return fmt.Errorf("FALLBACK_BACKEND must be file or redis, got %q", c.Fallback.Backend)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}
