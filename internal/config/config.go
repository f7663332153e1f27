package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Reports   ReportsConfig   `yaml:"reports"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// Addr returns host:port for the listener.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.GetHost(), c.Port)
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	URL                     string `yaml:"url"`
	MaxOpenConns            int    `yaml:"max_open_conns"`
	MaxIdleConns            int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes  int    `yaml:"conn_max_lifetime_minutes"`
	StatementTimeoutSeconds int    `yaml:"statement_timeout_seconds"`
}

// ConnMaxLifetime returns the configured connection lifetime as a duration
func (c DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeMinutes) * time.Minute
}

// RedisConfig holds the optional Redis connection used for caching and locks.
// An empty URL disables Redis.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// Enabled reports whether a Redis URL was configured.
func (c RedisConfig) Enabled() bool { return c.URL != "" }

// AnalyticsConfig holds settings for the insights engine
type AnalyticsConfig struct {
	Timezone        string `yaml:"timezone"`          // IANA name periods are aligned in
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"` // 0 disables the response cache
	DefaultPageSize int    `yaml:"default_page_size"`
	MaxPageSize     int    `yaml:"max_page_size"`
}

// Location resolves the configured timezone.
func (c AnalyticsConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("analytics timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// CacheTTL returns the configured cache TTL as a duration
func (c AnalyticsConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// ReportsConfig holds report export storage settings
type ReportsConfig struct {
	Type           string `yaml:"type"` // "local" or "s3"
	LocalPath      string `yaml:"local_path"`
	S3Bucket       string `yaml:"s3_bucket"`
	S3Region       string `yaml:"s3_region"`
	S3Prefix       string `yaml:"s3_prefix"`
	AWSProfile     string `yaml:"aws_profile"`
	LockTTLSeconds int    `yaml:"lock_ttl_seconds"`
}

// GetAWSProfile returns the AWS profile, skipping it on ECS where the task role applies
func (c ReportsConfig) GetAWSProfile() string {
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return ""
	}
	if profile := os.Getenv("AWS_PROFILE"); profile != "" {
		return profile
	}
	return c.AWSProfile
}

// LockTTL returns the export lock TTL as a duration
func (c ReportsConfig) LockTTL() time.Duration {
	return time.Duration(c.LockTTLSeconds) * time.Second
}

// LoggingConfig holds structured logger settings
type LoggingConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// Load reads configuration from a YAML file and applies defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeMinutes == 0 {
		cfg.Database.ConnMaxLifetimeMinutes = 30
	}
	if cfg.Database.StatementTimeoutSeconds == 0 {
		cfg.Database.StatementTimeoutSeconds = 15
	}
	if cfg.Analytics.Timezone == "" {
		cfg.Analytics.Timezone = "UTC"
	}
	if cfg.Analytics.DefaultPageSize == 0 {
		cfg.Analytics.DefaultPageSize = 50
	}
	if cfg.Analytics.MaxPageSize == 0 {
		cfg.Analytics.MaxPageSize = 500
	}
	if cfg.Reports.Type == "" {
		cfg.Reports.Type = "local"
	}
	if cfg.Reports.LocalPath == "" {
		cfg.Reports.LocalPath = "./reports"
	}
	if cfg.Reports.S3Region == "" {
		cfg.Reports.S3Region = "us-east-1"
	}
	if cfg.Reports.S3Prefix == "" {
		cfg.Reports.S3Prefix = "reports"
	}
	if cfg.Reports.LockTTLSeconds == 0 {
		cfg.Reports.LockTTLSeconds = 120
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("ANALYTICS_TIMEZONE"); v != "" {
		cfg.Analytics.Timezone = v
	}
	if v := os.Getenv("ANALYTICS_CACHE_TTL_SECONDS"); v != "" {
		ttl, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("ANALYTICS_CACHE_TTL_SECONDS %q: %w", v, err)
		}
		cfg.Analytics.CacheTTLSeconds = ttl
	}
	if v := os.Getenv("REPORTS_S3_BUCKET"); v != "" {
		cfg.Reports.S3Bucket = v
		cfg.Reports.Type = "s3"
	}
	if v := os.Getenv("REPORTS_S3_REGION"); v != "" {
		cfg.Reports.S3Region = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	return cfg, nil
}
