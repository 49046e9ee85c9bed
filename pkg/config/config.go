package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type LogConfig struct {
	Level string
	JSON  bool
	Color bool
}

type SessionConfig struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration
}

type AppConfig struct {
	AppName         string
	ListenAddress   string
	DebugAddress    string
	DataDir         string
	CatalogFile     string
	DatabaseURL     string
	RabbitURL       string
	EnableProfiling bool
	AllowedOrigins  []string
	Redis           RedisConfig
	Log             LogConfig
	Session         SessionConfig
}

// Load reads an optional .env file (or the given paths) and then the
// environment. A missing .env file is not an error.
func Load(envPath ...string) (*AppConfig, error) {
	if err := godotenv.Load(envPath...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("could not load env file %v: %w", envPath, err)
	}

	cfg := &AppConfig{
		AppName:         getEnvAsString("APP_NAME", "casa-finder"),
		ListenAddress:   getEnvAsString("LISTEN_ADDRESS", ":8080"),
		DebugAddress:    getEnvAsString("DEBUG_ADDRESS", ":8081"),
		DataDir:         getEnvAsString("DATA_DIR", "data"),
		CatalogFile:     getEnvAsString("CATALOG_FILE", "properties.json"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RabbitURL:       os.Getenv("RABBIT_URL"),
		EnableProfiling: getEnvAsBool("ENABLE_PROFILING", false),
		AllowedOrigins:  getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_URL"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Log: LogConfig{
			Level: getEnvAsString("LOG_LEVEL", "info"),
			JSON:  getEnvAsBool("LOG_JSON", false),
			Color: getEnvAsBool("LOG_COLOR", true),
		},
		Session: SessionConfig{
			IdleTimeout:   getEnvAsDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
			SweepInterval: getEnvAsDuration("SESSION_SWEEP_INTERVAL", time.Minute),
		},
	}
	if cfg.CatalogFile == "" && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("either CATALOG_FILE or DATABASE_URL is required")
	}
	if cfg.Session.IdleTimeout <= 0 || cfg.Session.SweepInterval <= 0 {
		return nil, fmt.Errorf("SESSION_IDLE_TIMEOUT and SESSION_SWEEP_INTERVAL must be positive")
	}
	return cfg, nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnvAsString(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnvAsString(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnvAsString(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnvAsString(key, "")
	if valueStr == "" {
		return defaultValue
	}
	ret := make([]string, 0)
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			ret = append(ret, v)
		}
	}
	return ret
}
