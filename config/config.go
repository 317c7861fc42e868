package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StorageExternal = "external"
	StorageMemory   = "memory"
)

type Config struct {
	Port     string `env:"PORT"      envDefault:"8080"`
	GinMode  string `env:"GIN_MODE"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// StorageDriver selects Mongo/Postgres/Redis ("external") or the
	// in-process stores ("memory").
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"external"`

	PostgresURI string `env:"POSTGRES_URI"`
	MongoURI    string `env:"MONGO_URI"`
	MongoDB     string `env:"MONGO_DB" envDefault:"mockmate"`
	RedisAddr   string `env:"REDIS_ADDR"`

	JWT JWTConfig

	MatchDefaultRadiusKm float64       `env:"MATCH_DEFAULT_RADIUS_KM" envDefault:"5"`
	MatchMaxRadiusKm     float64       `env:"MATCH_MAX_RADIUS_KM"     envDefault:"0"`
	WorkloadCacheTTL     time.Duration `env:"WORKLOAD_CACHE_TTL"      envDefault:"30s"`
	DirectoryCacheTTL    time.Duration `env:"DIRECTORY_CACHE_TTL"     envDefault:"5m"`
	NoteMaxBytes         int           `env:"NOTE_MAX_BYTES"          envDefault:"65536"`

	SessionEventStream  string        `env:"SESSION_EVENT_STREAM"  envDefault:"session:events"`
	SessionEventWorkers int           `env:"SESSION_EVENT_WORKERS" envDefault:"2"`
	ShutdownTimeout     time.Duration `env:"SHUTDOWN_TIMEOUT"      envDefault:"10s"`
}

type JWTConfig struct {
	Secret   string `env:"SUPABASE_JWT_SECRET"`
	Issuer   string `env:"SUPABASE_JWT_ISSUER"`
	Audience string `env:"SUPABASE_JWT_AUDIENCE"`
}

// Load reads the process environment. Call godotenv first to pick up a
// local .env file.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("SUPABASE_JWT_SECRET environment variable is not set")
	}
	switch c.StorageDriver {
	case StorageMemory:
	case StorageExternal:
		if c.PostgresURI == "" {
			return errors.New("POSTGRES_URI environment variable is not set")
		}
		if c.MongoURI == "" {
			return errors.New("MONGO_URI environment variable is not set")
		}
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR environment variable is not set")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.MatchDefaultRadiusKm <= 0 {
		return errors.New("MATCH_DEFAULT_RADIUS_KM must be positive")
	}
	if c.MatchMaxRadiusKm > 0 && c.MatchDefaultRadiusKm > c.MatchMaxRadiusKm {
		return errors.New("MATCH_DEFAULT_RADIUS_KM exceeds MATCH_MAX_RADIUS_KM")
	}
	if c.SessionEventWorkers < 1 {
		return errors.New("SESSION_EVENT_WORKERS must be at least 1")
	}
	return nil
}

func (c Config) Addr() string { return ":" + c.Port }
