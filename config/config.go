// Package config loads runtime settings from the environment, optionally
// seeded from a .env file in the working directory.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DatabaseConfig selects and tunes the relational store.
type DatabaseConfig struct {
	Driver       string // "sqlite" or "postgres"
	Path         string // sqlite file
	DSN          string // postgres DSN, overrides the discrete fields below
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	Debug        bool
	MaxOpenConns int
	MaxIdleConns int
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	SecretKey string
	Issuer    string
	TTL       time.Duration
}

// PasswordConfig selects the credential hashing scheme.
type PasswordConfig struct {
	Scheme     string // "sha256" or "bcrypt"
	BcryptCost int
}

// RateLimitConfig bounds login attempts per client.
type RateLimitConfig struct {
	RedisAddr string
	Max       int
	Window    time.Duration
}

// Config is the full application configuration.
type Config struct {
	ServiceName     string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	DB              DatabaseConfig
	JWT             JWTConfig
	Password        PasswordConfig
	LoginLimit      RateLimitConfig
}

// Load reads the configuration. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServiceName:     getEnv("SERVICE_NAME", "task-tracker"),
		HTTPAddr:        getEnv("HTTP_ADDR", ":3000"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		DB: DatabaseConfig{
			Driver:       strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			Path:         getEnv("DB_PATH", "task_tracker.db"),
			DSN:          os.Getenv("DB_DSN"),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "tasks"),
			Password:     getEnv("DB_PASSWORD", "tasks"),
			Name:         getEnv("DB_NAME", "tasks"),
			Debug:        getBool("DB_DEBUG", false),
			MaxOpenConns: getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getInt("DB_MAX_IDLE_CONNS", 10),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET_KEY", "change-me-in-production"),
			Issuer:    getEnv("JWT_ISSUER", "task-tracker"),
			TTL:       getDuration("JWT_TTL", 24*time.Hour),
		},
		Password: PasswordConfig{
			Scheme:     strings.ToLower(getEnv("PASSWORD_SCHEME", "sha256")),
			BcryptCost: getInt("BCRYPT_COST", 12),
		},
		LoginLimit: RateLimitConfig{
			RedisAddr: os.Getenv("REDIS_ADDR"),
			Max:       getInt("LOGIN_RATE_LIMIT", 10),
			Window:    getDuration("LOGIN_RATE_WINDOW", time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the application cannot run with.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want sqlite or postgres)", c.DB.Driver)
	}
	switch c.Password.Scheme {
	case "sha256", "bcrypt":
	default:
		return fmt.Errorf("unsupported PASSWORD_SCHEME %q (want sha256 or bcrypt)", c.Password.Scheme)
	}
	if c.JWT.SecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY must not be empty")
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	return nil
}

// PostgresDSN returns the DSN for the postgres driver.
func (db *DatabaseConfig) PostgresDSN() string {
	if db.DSN != "" {
		return db.DSN
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		db.Host, db.Port, db.User, db.Password, db.Name)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}
