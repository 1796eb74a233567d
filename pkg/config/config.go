package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the dashboard
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Backend API
	Backend BackendConfig

	// Dashboard behaviour
	Dashboard DashboardConfig

	// Redis
	Redis RedisConfig

	// Logging
	LogLevel  string
	LogFormat string
	LogFile   LogFileConfig

	// Monitoring
	MetricsEnabled bool
}

// BackendConfig holds the family brokerage backend origins
type BackendConfig struct {
	// PublicBaseURL is the API base including the /v1 prefix (브라우저/CLI 요청용)
	PublicBaseURL string
	// InternalURL is the origin the proxy rewrites to (외부에 노출하지 않음)
	InternalURL string
	Timeout     time.Duration
	RateLimit   int // requests per second, 0 = unlimited
}

// DashboardConfig holds presentation-tier timings
type DashboardConfig struct {
	PollInterval  time.Duration // 배치 상태 폴링 주기
	GridStepDelay time.Duration // 분할 주문 간 대기
	StockCacheTTL time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// LogFileConfig holds rotating log file configuration
type LogFileConfig struct {
	Path       string // empty = stdout only
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit env file. Empty path → .env discovery.
func LoadFile(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", path, err)
		}
	} else {
		loadEnvFile()
	}

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Backend: BackendConfig{
			PublicBaseURL: getEnv("NEXT_PUBLIC_API_BASE_URL", getEnv("API_BASE_URL", "http://127.0.0.1:8000/v1")),
			InternalURL:   getEnv("BACKEND_INTERNAL_URL", "http://backend:8000"),
			Timeout:       getEnvAsDuration("API_TIMEOUT", "30s"),
			RateLimit:     getEnvAsInt("API_RATE_LIMIT", 10),
		},

		Dashboard: DashboardConfig{
			PollInterval:  getEnvAsDuration("POLL_INTERVAL", "10s"),
			GridStepDelay: getEnvAsDuration("GRID_STEP_DELAY", "200ms"),
			StockCacheTTL: getEnvAsDuration("STOCK_CACHE_TTL", "1h"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		LogFile: LogFileConfig{
			Path:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  getEnvAsInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvAsInt("LOG_MAX_AGE_DAYS", 30),
		},

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if err := validateURL("API_BASE_URL", c.Backend.PublicBaseURL); err != nil {
		return err
	}
	if err := validateURL("BACKEND_INTERNAL_URL", c.Backend.InternalURL); err != nil {
		return err
	}

	if c.Dashboard.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}
	if c.Dashboard.GridStepDelay < 0 {
		return fmt.Errorf("GRID_STEP_DELAY must not be negative")
	}

	return nil
}

func validateURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", key, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must include scheme and host", key)
	}
	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
		"dashboard/.env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
