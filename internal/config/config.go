// Package config loads process configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage drivers.
const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverS3       = "s3"
)

// Config is the full process configuration.
type Config struct {
	Addr            string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	Storage         StorageConfig
}

// StorageConfig selects and parameterizes the document backend.
type StorageConfig struct {
	Driver          string
	Key             string // document name: table row, redis key or s3 object key
	CreateIfMissing bool

	FilePath string

	PostgresDriver string
	DatabaseURL    string

	SQLitePath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3PathStyle       bool
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration through getenv and validates it.
func LoadFrom(getenv func(string) string) (Config, error) {
	env := func(key, fallback string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		Addr:      env("ADDR", ":8080"),
		LogLevel:  env("LOG_LEVEL", "info"),
		LogFormat: env("LOG_FORMAT", "json"),
		Storage: StorageConfig{
			Driver:            strings.ToLower(env("STORAGE_DRIVER", DriverFile)),
			Key:               env("STORAGE_KEY", "patients"),
			FilePath:          env("PATIENTS_FILE", "patients.json"),
			PostgresDriver:    env("PG_DRIVER", "postgres"),
			DatabaseURL:       getenv("DATABASE_URL"),
			SQLitePath:        env("SQLITE_PATH", "patients.db"),
			RedisAddr:         env("REDIS_ADDR", "localhost:6379"),
			RedisPassword:     getenv("REDIS_PASSWORD"),
			S3Bucket:          getenv("S3_BUCKET"),
			S3Region:          env("S3_REGION", "us-east-1"),
			S3Endpoint:        getenv("S3_ENDPOINT"),
			S3AccessKeyID:     getenv("S3_ACCESS_KEY_ID"),
			S3SecretAccessKey: getenv("S3_SECRET_ACCESS_KEY"),
		},
	}

	var err error
	if cfg.ShutdownTimeout, err = time.ParseDuration(env("SHUTDOWN_TIMEOUT", "10s")); err != nil {
		return Config{}, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
	}
	if cfg.Storage.CreateIfMissing, err = strconv.ParseBool(env("CREATE_IF_MISSING", "true")); err != nil {
		return Config{}, fmt.Errorf("CREATE_IF_MISSING: %w", err)
	}
	if cfg.Storage.S3PathStyle, err = strconv.ParseBool(env("S3_PATH_STYLE", "false")); err != nil {
		return Config{}, fmt.Errorf("S3_PATH_STYLE: %w", err)
	}
	if cfg.Storage.RedisDB, err = strconv.Atoi(env("REDIS_DB", "0")); err != nil {
		return Config{}, fmt.Errorf("REDIS_DB: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks driver-specific requirements.
func (c Config) Validate() error {
	s := c.Storage
	switch s.Driver {
	case DriverFile, DriverMemory, DriverSQLite, DriverRedis:
	case DriverPostgres:
		if s.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
		if s.PostgresDriver != "postgres" && s.PostgresDriver != "pgx" {
			return fmt.Errorf("PG_DRIVER must be \"postgres\" or \"pgx\", got %q", s.PostgresDriver)
		}
	case DriverS3:
		if s.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", s.Driver)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}
