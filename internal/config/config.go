// Package config loads the demo server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jmgilman/go/errors"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/goliatone/go-collection-cache/cache"
)

// Config holds all server configuration.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Cache    CacheConfig
	Database DatabaseConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
	AllowedOrigins  []string      `envconfig:"SERVER_ALLOWED_ORIGINS" default:"*"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// CacheConfig selects and sizes the backing store.
type CacheConfig struct {
	// Type is "memory" or "redis".
	Type string `envconfig:"CACHE_TYPE" default:"memory"`

	Capacity           int           `envconfig:"CACHE_CAPACITY" default:"10000"`
	Shards             int           `envconfig:"CACHE_SHARDS" default:"64"`
	TTL                time.Duration `envconfig:"CACHE_TTL" default:"1h"`
	EvictionPercentage int           `envconfig:"CACHE_EVICTION_PERCENTAGE" default:"10"`

	// ExpiresIn is the default lifetime of entries written by the demo blueprints.
	ExpiresIn time.Duration `envconfig:"CACHE_EXPIRES_IN" default:"5m"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// DatabaseConfig holds the demo database connection and seed sizes.
type DatabaseConfig struct {
	// Driver is "sqlite", "mysql" or "postgres".
	Driver string `envconfig:"DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"DB_DSN" default:"file::memory:"`

	// SeedCompanies > 0 creates the schema and inserts sample rows on start.
	SeedCompanies int `envconfig:"DB_SEED_COMPANIES" default:"5"`
	SeedEmployees int `envconfig:"DB_SEED_EMPLOYEES" default:"40"`
}

// Address returns the server address in host:port format.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// UsesRedis reports whether entries go to redis.
func (c CacheConfig) UsesRedis() bool {
	return c.Type == "redis"
}

// StoreConfig converts the memory store settings.
func (c CacheConfig) StoreConfig() cache.Config {
	return cache.Config{
		Capacity:           c.Capacity,
		NumShards:          c.Shards,
		TTL:                c.TTL,
		EvictionPercentage: c.EvictionPercentage,
	}
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	err := validation.Errors{
		"SERVER_PORT":      validation.Validate(c.Server.Port, validation.Min(1), validation.Max(65535)),
		"CACHE_TYPE":       validation.Validate(c.Cache.Type, validation.In("memory", "redis")),
		"CACHE_EXPIRES_IN": validation.Validate(c.Cache.ExpiresIn, validation.Min(time.Duration(0))),
		"DB_DRIVER":        validation.Validate(c.Database.Driver, validation.In("sqlite", "mysql", "postgres")),
		"DB_DSN":           validation.Validate(c.Database.DSN, validation.Required),
	}.Filter()
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidConfig, "invalid configuration")
	}
	return nil
}

// Load reads env files (missing files are skipped, defaulting to .env) and
// then the environment. Variables already set in the environment win over
// the files.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return nil, errors.Wrapf(err, errors.CodeInvalidConfig, "failed to read %s", file)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad(files ...string) *Config {
	cfg, err := Load(files...)
	if err != nil {
		panic(err)
	}
	return cfg
}
