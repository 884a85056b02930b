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

type Config struct {
	Port        string
	GinMode     string
	DBDriver    string
	DatabaseURL string
	Secret      string
	TokenTTL    time.Duration

	RedisURL      string
	RedisPassword string

	LogLevel string
	LogFile  string

	CORSOrigins []string
	UseHTTPS    bool
	TLSCertFile string
	TLSKeyFile  string

	LoginRateLimit  int
	LoginRateWindow time.Duration
	StatsRefresh    time.Duration
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getenv("PORT", "3001"),
		GinMode:       os.Getenv("GIN_MODE"),
		DBDriver:      strings.ToLower(getenv("DB_DRIVER", "postgres")),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Secret:        os.Getenv("SECRET"),
		RedisURL:      os.Getenv("REDIS_URL"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		LogFile:       os.Getenv("LOG_FILE"),
		CORSOrigins:   splitList(getenv("CORS_ORIGINS", "http://localhost:3000")),
		UseHTTPS:      os.Getenv("USE_HTTPS") == "true",
		TLSCertFile:   os.Getenv("TLS_CERT_FILE"),
		TLSKeyFile:    os.Getenv("TLS_KEY_FILE"),
	}

	var err error
	if cfg.TokenTTL, err = duration("TOKEN_TTL", 0); err != nil {
		return nil, err
	}
	if cfg.LoginRateWindow, err = duration("LOGIN_RATE_WINDOW", time.Minute); err != nil {
		return nil, err
	}
	if cfg.StatsRefresh, err = duration("STATS_REFRESH", time.Minute); err != nil {
		return nil, err
	}
	if cfg.LoginRateLimit, err = integer("LOGIN_RATE_LIMIT", 10); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		switch cfg.DBDriver {
		case "sqlite":
			cfg.DatabaseURL = "collection.db"
		default:
			cfg.DatabaseURL = "host=localhost port=5432 user=postgres dbname=collection sslmode=disable"
		}
	}
	return cfg, nil
}

// Validate checks what the HTTP server cannot run without.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return errors.New("SECRET must be set to sign tokens")
	}
	if c.DBDriver != "postgres" && c.DBDriver != "sqlite" {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.UseHTTPS && (c.TLSCertFile == "" || c.TLSKeyFile == "") {
		return errors.New("USE_HTTPS requires TLS_CERT_FILE and TLS_KEY_FILE")
	}
	return nil
}

func (c *Config) Release() bool { return c.GinMode == "release" }

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func duration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func integer(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
