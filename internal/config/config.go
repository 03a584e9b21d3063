// Package config loads runtime settings from the environment, with an
// optional .env file underneath.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/oops"
)

const CodeConfigInvalid = "CONFIG_INVALID"

// Config holds everything the API server needs at startup.
type Config struct {
	DatabaseURL    string
	Port           string
	JWTSecret      string
	TokenTTL       time.Duration
	LogFormat      string
	LogLevel       string
	AllowedOrigins []string
}

// Load reads .env files (a missing file is fine) and then the environment.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, oops.In("config").Code(CodeConfigInvalid).With("file", f).Wrap(err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv and validates it.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DatabaseURL: getenv("DATABASE_URL"),
		Port:        orDefault(getenv("APP_PORT"), "8080"),
		JWTSecret:   getenv("JWT_SECRET"),
		TokenTTL:    24 * time.Hour,
		LogFormat:   strings.ToLower(orDefault(getenv("LOG_FORMAT"), "json")),
		LogLevel:    strings.ToLower(orDefault(getenv("LOG_LEVEL"), "info")),
	}
	if v := getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl <= 0 {
			return nil, invalid("TOKEN_TTL", "must be a positive duration such as 24h")
		}
		cfg.TokenTTL = ttl
	}
	for _, o := range strings.Split(getenv("ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	switch {
	case cfg.DatabaseURL == "":
		return nil, invalid("DATABASE_URL", "is required")
	case cfg.JWTSecret == "":
		return nil, invalid("JWT_SECRET", "is required")
	case cfg.LogFormat != "json" && cfg.LogFormat != "text":
		return nil, invalid("LOG_FORMAT", "must be json or text")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, invalid("LOG_LEVEL", "must be debug, info, warn or error")
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string { return ":" + c.Port }

func invalid(key, msg string) error {
	return oops.In("config").
		Code(CodeConfigInvalid).
		With("key", key).
		Errorf("%s %s", key, msg)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
