package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

const devJWTSecret = "dev_jwt_secret"

// Config holds application configuration loaded from environment variables.
// Defaults suit local development.
type Config struct {
	AppName  string
	Env      string // development, staging, production
	Port     string
	LogLevel string

	// Store
	StoreDriver   string
	DatabaseDSN   string
	SQLitePath    string
	MongoURI      string
	MongoDatabase string

	// JWT
	JWTSecret string
	JWTExpire time.Duration

	// Cookies
	CookieSecure bool

	// CORS
	CORSAllowedOrigins string // comma-separated

	// RabbitMQ, disabled when the URL is empty
	RabbitMQURL   string
	RabbitMQQueue string
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return nil
}

// Load reads the configuration from v, which should have AutomaticEnv set.
func Load(v *viper.Viper) (*Config, error) {
	v.SetDefault("APP_NAME", "blogapi")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", ":3001")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("STORE_DRIVER", DriverMemory)
	v.SetDefault("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=blog port=5432 sslmode=disable")
	v.SetDefault("SQLITE_PATH", "blog.db")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "blog")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRE", "24h")
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "blog_events")

	cfg := &Config{
		AppName:            v.GetString("APP_NAME"),
		Env:                v.GetString("APP_ENV"),
		Port:               v.GetString("APP_PORT"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		StoreDriver:        strings.ToLower(v.GetString("STORE_DRIVER")),
		DatabaseDSN:        v.GetString("DATABASE_DSN"),
		SQLitePath:         v.GetString("SQLITE_PATH"),
		MongoURI:           v.GetString("MONGO_URI"),
		MongoDatabase:      v.GetString("MONGO_DATABASE"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		JWTExpire:          v.GetDuration("JWT_EXPIRE"),
		CookieSecure:       v.GetBool("COOKIE_SECURE"),
		CORSAllowedOrigins: v.GetString("CORS_ALLOWED_ORIGINS"),
		RabbitMQURL:        v.GetString("RABBITMQ_URL"),
		RabbitMQQueue:      v.GetString("RABBITMQ_QUEUE"),
	}

	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, errors.New("JWT_SECRET is required outside development")
		}
		cfg.JWTSecret = devJWTSecret
	}
	if cfg.JWTExpire <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRE must be a positive duration, got %q", v.GetString("JWT_EXPIRE"))
	}
	switch cfg.StoreDriver {
	case DriverMemory, DriverSQLite, DriverPostgres, DriverMongo:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	return cfg, nil
}

// IsDevelopment reports whether the app runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// EventsEnabled reports whether a RabbitMQ URL is configured.
func (c *Config) EventsEnabled() bool {
	return c.RabbitMQURL != ""
}
