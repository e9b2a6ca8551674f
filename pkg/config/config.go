// Package config loads service configuration from the environment, with an
// optional YAML file providing defaults that environment variables override.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coursehq/courseapi/pkg/store"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database store.Config   `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Cache    CacheConfig    `yaml:"cache"`
	Auth     AuthConfig     `yaml:"auth"`
	LogLevel string         `yaml:"log_level"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	HealthPort      string        `yaml:"health_port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// RedisConfig holds redis connection settings; an empty Addr selects the
// in-memory cache backend
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// CacheConfig holds query-cache tuning
type CacheConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	MemorySize    int           `yaml:"memory_size"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// AuthConfig holds credential settings
type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost"`
}

// Load builds configuration from defaults, an optional YAML file named by
// COURSEAPI_CONFIG_FILE, and environment variables, in increasing
// precedence.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("COURSEAPI_CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			HealthPort:      "9090",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: store.DefaultConfig(),
		Redis: RedisConfig{
			DB:       0,
			PoolSize: 10,
		},
		Cache: CacheConfig{
			TTL:           1 * time.Hour,
			MemorySize:    1024,
			SweepInterval: 10 * time.Minute,
		},
		Auth: AuthConfig{
			TokenTTL:   1 * time.Hour,
			BcryptCost: 12,
		},
		LogLevel: "info",
	}
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Host, "COURSEAPI_HOST")
	setString(&cfg.Server.Port, "COURSEAPI_PORT")
	setString(&cfg.Server.HealthPort, "COURSEAPI_HEALTH_PORT")
	setDuration(&cfg.Server.ReadTimeout, "COURSEAPI_READ_TIMEOUT")
	setDuration(&cfg.Server.WriteTimeout, "COURSEAPI_WRITE_TIMEOUT")
	setDuration(&cfg.Server.IdleTimeout, "COURSEAPI_IDLE_TIMEOUT")
	setDuration(&cfg.Server.ShutdownTimeout, "COURSEAPI_SHUTDOWN_TIMEOUT")

	setString(&cfg.Database.Driver, "COURSEAPI_DB_DRIVER")
	setString(&cfg.Database.DSN, "COURSEAPI_DB_DSN")
	setInt(&cfg.Database.MaxOpenConns, "COURSEAPI_DB_MAX_CONNS")
	setInt(&cfg.Database.MaxIdleConns, "COURSEAPI_DB_IDLE_CONNS")
	setDuration(&cfg.Database.ConnTimeout, "COURSEAPI_DB_TIMEOUT")

	setString(&cfg.Redis.Addr, "COURSEAPI_REDIS_ADDR")
	setString(&cfg.Redis.Password, "COURSEAPI_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "COURSEAPI_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "COURSEAPI_REDIS_POOL_SIZE")

	setDuration(&cfg.Cache.TTL, "COURSEAPI_CACHE_TTL")
	setInt(&cfg.Cache.MemorySize, "COURSEAPI_CACHE_MEMORY_SIZE")
	setDuration(&cfg.Cache.SweepInterval, "COURSEAPI_CACHE_SWEEP_INTERVAL")

	setString(&cfg.Auth.JWTSecret, "COURSEAPI_JWT_SECRET")
	setDuration(&cfg.Auth.TokenTTL, "COURSEAPI_TOKEN_TTL")
	setInt(&cfg.Auth.BcryptCost, "COURSEAPI_BCRYPT_COST")

	setString(&cfg.LogLevel, "COURSEAPI_LOG_LEVEL")
}

// Validate checks the configuration is usable
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	switch c.Database.Driver {
	case store.DriverPostgres, store.DriverSQLite:
	default:
		return fmt.Errorf("invalid database driver: %s (must be %s or %s)",
			c.Database.Driver, store.DriverPostgres, store.DriverSQLite)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database DSN is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}
	return nil
}

func setString(dest *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dest = value
	}
}

func setInt(dest *int, key string) {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			*dest = parsed
		}
	}
}

func setDuration(dest *time.Duration, key string) {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			*dest = parsed
		}
	}
}
