package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "dev-secret-change-in-production"

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Session  SessionConfig
	Logging  LoggingConfig
	MCP      MCPConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

func (s ServerConfig) Production() bool {
	return s.Env == "production"
}

type DatabaseConfig struct {
	Driver       string
	DSN          string
	MaxOpenConns int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type SessionConfig struct {
	Backend       string
	RedisURL      string
	TTL           time.Duration
	CookieName    string
	SweepInterval time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

type MCPConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	// a missing .env file is fine
	godotenv.Load()

	var errs []error
	duration := func(key, def string) time.Duration {
		d, err := getEnvAsDuration(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return d
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("HOST", "0.0.0.0"),
			Port:         getEnv("PORT", "3000"),
			Env:          getEnv("ENV", "development"),
			ReadTimeout:  duration("SERVER_READ_TIMEOUT", "15s"),
			WriteTimeout: duration("SERVER_WRITE_TIMEOUT", "15s"),
		},
		Database: DatabaseConfig{
			Driver:       getEnv("DB_DRIVER", "sqlite3"),
			DSN:          getEnv("DATABASE_URL", "./notepad.db"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 20),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", defaultJWTSecret),
			Expiration: duration("JWT_EXPIRATION", "24h"),
		},
		Session: SessionConfig{
			Backend:       getEnv("SESSION_BACKEND", "memory"),
			RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379/0"),
			TTL:           duration("SESSION_TTL", "24h"),
			CookieName:    getEnv("SESSION_COOKIE", "sid"),
			SweepInterval: duration("SESSION_SWEEP_INTERVAL", "10m"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		MCP: MCPConfig{
			Enabled: getEnvAsBool("MCP_ENABLED", false),
		},
	}

	if cfg.Session.Backend != "memory" && cfg.Session.Backend != "redis" {
		errs = append(errs, fmt.Errorf("invalid SESSION_BACKEND %q: want memory or redis", cfg.Session.Backend))
	}
	if cfg.Server.Production() && cfg.JWT.Secret == defaultJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: %s must be positive", key, d)
	}
	return d, nil
}
