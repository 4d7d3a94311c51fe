// Package config loads the server configuration from the environment.
//
// WHY ENV VARS?
// They're the twelve-factor default: the same binary runs locally, in CI and
// in a container, and only the environment changes. For local development a
// .env file in the working directory is loaded first (github.com/joho/godotenv);
// variables already set in the real environment win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported DB_DRIVER values.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds every setting the server reads at startup.
// Using one struct (instead of individual parameters) lets new options be
// added without changing function signatures.
type Config struct {
	Port int

	DBDriver    string
	DBPath      string // sqlite file, used when DBDriver is sqlite
	DatabaseURL string // postgres:// DSN, used when DBDriver is postgres

	JWTSecret string

	YouTubeAPIKey      string
	YouTubeAccessToken string
	YouTubeBaseURL     string
	YouTubeTimeout     time.Duration

	CORSOrigins        []string
	RateLimitPerMinute int

	LogLevel  string
	LogFormat string
	LogFile   string
}

// Load reads .env (if present) and then the environment.
//
// Every problem is collected, so a misconfigured deployment reports all of
// them at once rather than one per restart.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function. Tests pass a map-backed one.
func FromEnv(getenv func(string) string) (*Config, error) {
	p := parser{getenv: getenv}

	cfg := &Config{
		Port:               p.int("PORT", 8080),
		DBDriver:           strings.ToLower(p.str("DB_DRIVER", DriverSQLite)),
		DBPath:             p.str("DB_PATH", "data/videoshare.db"),
		DatabaseURL:        p.str("DATABASE_URL", ""),
		JWTSecret:          p.str("JWT_SECRET", ""),
		YouTubeAPIKey:      p.str("YOUTUBE_API_KEY", ""),
		YouTubeAccessToken: p.str("YOUTUBE_ACCESS_TOKEN", ""),
		YouTubeBaseURL:     p.str("YOUTUBE_API_V3_URL", ""),
		YouTubeTimeout:     p.duration("YOUTUBE_TIMEOUT", 5*time.Second),
		CORSOrigins:        p.list("CORS_ORIGINS", []string{"*"}),
		RateLimitPerMinute: p.int("RATE_LIMIT_PER_MINUTE", 60),
		LogLevel:           strings.ToLower(p.str("LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(p.str("LOG_FORMAT", "text")),
		LogFile:            p.str("LOG_FILE", ""),
	}

	errs := p.errs
	errs = append(errs, cfg.validate()...)
	if len(errs) > 0 {
		return nil, fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// Addr is the listen address for http.Server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) validate() []error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			errs = append(errs, errors.New("DB_PATH is required for sqlite"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not one of sqlite, postgres", c.DBDriver))
	}
	if len(c.JWTSecret) < 16 {
		errs = append(errs, errors.New("JWT_SECRET is required and must be at least 16 characters"))
	}
	if c.YouTubeAPIKey == "" && c.YouTubeAccessToken == "" {
		errs = append(errs, errors.New("one of YOUTUBE_API_KEY or YOUTUBE_ACCESS_TOKEN is required"))
	}
	if c.YouTubeTimeout <= 0 {
		errs = append(errs, errors.New("YOUTUBE_TIMEOUT must be positive"))
	}
	if c.RateLimitPerMinute < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must be at least 1"))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q is not one of text, json", c.LogFormat))
	}

	return errs
}

// parser reads typed values and remembers what failed to parse.
type parser struct {
	getenv func(string) string
	errs   []error
}

func (p *parser) str(key, def string) string {
	if v := strings.TrimSpace(p.getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *parser) int(key string, def int) int {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not an integer", key, v))
		return def
	}
	return n
}

// duration accepts Go durations ("5s", "1500ms") or a bare number of seconds.
func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a duration", key, v))
		return def
	}
	return d
}

func (p *parser) list(key string, def []string) []string {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
