package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/triage-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

const defaultEmergencyKeywordsFile = "internal/config/emergency_keywords.json"

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr     string        `env:"SERVER_ADDR,notEmpty"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// Request validation limits
	ValidatorCfg ValidatorConfig

	// Database configuration. Sessions are kept in memory only when DATABASE_URL is empty.
	DatabaseURL         string        `env:"DATABASE_URL"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// Session cache configuration
	SessionCacheCfg SessionCacheConfig `envPrefix:"SESSION_CACHE_"`

	// External service configurations
	DiagnosisConnectorCfg DiagnosisConnectorConfig `envPrefix:"DIAGNOSIS_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL,notEmpty"`

	// Extra emergency keywords registered at startup (loaded from JSON file)
	EmergencyKeywordsFile string `env:"EMERGENCY_KEYWORDS_FILE" envDefault:"internal/config/emergency_keywords.json"`
	EmergencyKeywords     []EmergencyKeyword

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Telegram bot configuration (optional)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Environment (set from flag, not from env var)
	Environment string
}

// SessionCacheConfig controls the in-process session cache
type SessionCacheConfig struct {
	TTL             time.Duration `env:"TTL" envDefault:"24h"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10m"`
}

// ValidatorConfig limits free-text input accepted from clients
type ValidatorConfig struct {
	MaxAnswerLength  int `env:"MAX_ANSWER_LENGTH" envDefault:"2000"`
	MaxKeywordLength int `env:"MAX_KEYWORD_LENGTH" envDefault:"100"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string `env:"BOT_TOKEN"`
	UpdateTimeout      int    `env:"UPDATE_TIMEOUT" envDefault:"60"`
	MaxConcurrentUsers int    `env:"MAX_CONCURRENT_USERS" envDefault:"100"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	RateLimitBurst     int    `env:"RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownTimeout    int    `env:"SHUTDOWN_TIMEOUT" envDefault:"30"` // seconds
	Debug              bool   `env:"DEBUG" envDefault:"false"`
}

type DiagnosisConnectorConfig struct {
	HTTPClientConfig
	DiagnoseEndpoint string               `env:"DIAGNOSE_ENDPOINT" envDefault:"/api/diagnose"`
	HealthEndpoint   string               `env:"HEALTH_ENDPOINT" envDefault:"/health"`
	APIKey           string               `env:"OPENAI_API_KEY"`
	Retry            pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"45s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"45s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

// EmergencyKeyword is one entry of emergency_keywords.json
type EmergencyKeyword struct {
	Category string `json:"category"`
	Keyword  string `json:"keyword"`
	Type     string `json:"type,omitempty"`
	Message  string `json:"message,omitempty"`
	Priority int    `json:"priority,omitempty"`
}

// emergencyKeywords represents the structure of emergency_keywords.json
type emergencyKeywords struct {
	Keywords []EmergencyKeyword `json:"keywords"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	return Load(*envFlag)
}

// Load reads .env.<environment> if present, then the process environment
func Load(environment string) (*Config, error) {
	envFile := getEnvFile(environment)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = environment

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := loadEmergencyKeywords(cfg); err != nil {
		return nil, fmt.Errorf("load emergency keywords: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	// Validate diagnosis backend configuration
	if !cfg.EnableMocks && cfg.DiagnosisConnectorCfg.Url == "" {
		errors = append(errors, "DIAGNOSIS_SERVICE_URL is required unless ENABLE_MOCKS is set")
	}

	retryCfg := cfg.DiagnosisConnectorCfg.Retry
	if retryCfg.Attempts < 1 || retryCfg.Attempts > 10 {
		errors = append(errors, fmt.Sprintf("DIAGNOSIS_RETRY_ATTEMPTS must be between 1 and 10, got %d", retryCfg.Attempts))
	}

	if retryCfg.Delay > retryCfg.MaxDelay {
		errors = append(errors, fmt.Sprintf("DIAGNOSIS_RETRY_DELAY (%s) must not exceed DIAGNOSIS_RETRY_MAX_DELAY (%s)", retryCfg.Delay, retryCfg.MaxDelay))
	}

	// Validate session cache configuration
	if cfg.SessionCacheCfg.TTL <= 0 {
		errors = append(errors, fmt.Sprintf("SESSION_CACHE_TTL must be positive, got %s", cfg.SessionCacheCfg.TTL))
	}

	if cfg.ValidatorCfg.MaxAnswerLength < 1 || cfg.ValidatorCfg.MaxKeywordLength < 1 {
		errors = append(errors, "MAX_ANSWER_LENGTH and MAX_KEYWORD_LENGTH must be positive")
	}

	// Validate Telegram configuration
	if cfg.TelegramCfg.RateLimitPerMinute < 1 || cfg.TelegramCfg.RateLimitPerMinute > 60 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", cfg.TelegramCfg.RateLimitPerMinute))
	}

	if cfg.TelegramCfg.RateLimitBurst < 1 || cfg.TelegramCfg.RateLimitBurst > 20 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_BURST must be between 1 and 20, got %d", cfg.TelegramCfg.RateLimitBurst))
	}

	if cfg.TelegramCfg.ShutdownTimeout < 1 || cfg.TelegramCfg.ShutdownTimeout > 300 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_SHUTDOWN_TIMEOUT must be between 1 and 300 seconds, got %d", cfg.TelegramCfg.ShutdownTimeout))
	}

	// Validate Database configuration
	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func loadEmergencyKeywords(cfg *Config) error {
	path := cfg.EmergencyKeywordsFile
	if path == "" {
		path = defaultEmergencyKeywordsFile
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("Warning: emergency keywords file not found at %s, using built-in categories only\n", path)
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read emergency keywords file: %w", err)
	}

	if len(data) == 0 {
		return fmt.Errorf("emergency keywords file is empty: %s", path)
	}

	var parsed emergencyKeywords
	if err := json.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parse emergency keywords JSON: %w", err)
	}

	for i, kw := range parsed.Keywords {
		if strings.TrimSpace(kw.Category) == "" || strings.TrimSpace(kw.Keyword) == "" {
			return fmt.Errorf("emergency keyword #%d: category and keyword are required", i+1)
		}
		if kw.Priority < 0 {
			return fmt.Errorf("emergency keyword #%d: priority must not be negative", i+1)
		}
	}

	cfg.EmergencyKeywords = parsed.Keywords

	fmt.Printf("Loaded %d emergency keywords from %s\n", len(cfg.EmergencyKeywords), path)
	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
